package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/geromendez199/AlfajorApp/pkg/models"
)

func newOrder(channel models.Channel) *models.Order {
	return &models.Order{
		Channel: channel,
		Status:  models.StatusPending,
		Total:   18000,
		Items: []models.OrderItem{
			{ProductID: "prod-cheese", Qty: 2, UnitPrice: 8000, Extras: []models.ExtraSelection{
				{ExtraID: "extra-bacon", Price: 1000, Qty: 1},
			}},
		},
	}
}

func TestMemoryCreateAssignsIdentity(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	first := newOrder(models.ChannelCounter)
	second := newOrder(models.ChannelPickup)
	if err := s.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := s.Create(ctx, second); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if first.ID == "" || second.ID == "" {
		t.Error("Create did not assign ids")
	}
	if first.Number != 1 || second.Number != 2 {
		t.Errorf("numbers = %d, %d, want 1, 2", first.Number, second.Number)
	}

	got, err := s.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Items) != 1 || len(got.Items[0].Extras) != 1 {
		t.Errorf("persisted order lost nested items: %+v", got.Items)
	}
}

func TestMemoryGetUnknown(t *testing.T) {
	s := NewMemory()
	if _, err := s.GetByID(context.Background(), "nope"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetByID(unknown) = %v, want ErrNotFound", err)
	}
}

func TestMemoryUpdateStatusConditional(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	order := newOrder(models.ChannelCounter)
	if err := s.Create(ctx, order); err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := s.UpdateStatus(ctx, order.ID, models.StatusPending, models.StatusInProgress)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != models.StatusInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", updated.Status)
	}

	// The expected current status is stale now; the write must be refused.
	if _, err := s.UpdateStatus(ctx, order.ID, models.StatusPending, models.StatusCancelled); !errors.Is(err, models.ErrInvalidTransition) {
		t.Errorf("stale UpdateStatus = %v, want ErrInvalidTransition", err)
	}

	if _, err := s.UpdateStatus(ctx, "nope", models.StatusPending, models.StatusInProgress); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("UpdateStatus(unknown) = %v, want ErrNotFound", err)
	}
}

func TestMemoryUpdateStatusConcurrent(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	order := newOrder(models.ChannelCounter)
	if err := s.Create(ctx, order); err != nil {
		t.Fatalf("Create: %v", err)
	}

	const racers = 20
	var wg sync.WaitGroup
	errs := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdateStatus(ctx, order.ID, models.StatusPending, models.StatusInProgress)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var wins int
	for err := range errs {
		if err == nil {
			wins++
		} else if !errors.Is(err, models.ErrInvalidTransition) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("%d conditional updates won, want exactly 1", wins)
	}
}

func TestMemoryListFilters(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	counter := newOrder(models.ChannelCounter)
	pickup := newOrder(models.ChannelPickup)
	delivery := newOrder(models.ChannelDelivery)
	for _, o := range []*models.Order{counter, pickup, delivery} {
		if err := s.Create(ctx, o); err != nil {
			t.Fatalf("Create: %v", err)
		}
		time.Sleep(time.Millisecond)
	}
	if _, err := s.UpdateStatus(ctx, pickup.ID, models.StatusPending, models.StatusInProgress); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	all, err := s.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List returned %d orders, want 3", len(all))
	}
	// Newest first.
	if all[0].ID != delivery.ID || all[2].ID != counter.ID {
		t.Errorf("List order wrong: got %s first, %s last", all[0].ID, all[2].ID)
	}

	pending := models.StatusPending
	byStatus, err := s.List(ctx, Filter{Status: &pending})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byStatus) != 2 {
		t.Errorf("List(status=PENDING) returned %d orders, want 2", len(byStatus))
	}

	ch := models.ChannelPickup
	inProgress := models.StatusInProgress
	both, err := s.List(ctx, Filter{Status: &inProgress, Channel: &ch})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(both) != 1 || both[0].ID != pickup.ID {
		t.Errorf("List(status,channel) = %v, want just the pickup order", both)
	}

	counterCh := models.ChannelCounter
	none, err := s.List(ctx, Filter{Status: &inProgress, Channel: &counterCh})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("List with non-matching AND filter returned %d orders, want 0", len(none))
	}
}

func TestMemoryHonorsDeadline(t *testing.T) {
	s := NewMemory()
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	if err := s.Create(ctx, newOrder(models.ChannelCounter)); !errors.Is(err, models.ErrTimeout) {
		t.Errorf("Create with expired deadline = %v, want ErrTimeout", err)
	}
}

// Mutating a returned order must not leak into the store.
func TestMemoryReturnsCopies(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	order := newOrder(models.ChannelCounter)
	if err := s.Create(ctx, order); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	got.Items[0].Qty = 99
	got.Status = models.StatusCancelled

	again, err := s.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if again.Items[0].Qty != 2 || again.Status != models.StatusPending {
		t.Error("mutation of a returned order leaked into the store")
	}
}
