package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/geromendez199/AlfajorApp/pkg/models"
)

func newTestRouter(t *testing.T) (*mux.Router, *Service) {
	t.Helper()
	svc, _ := newTestService(t)
	handler := NewHandler(svc, testLogger())

	router := mux.NewRouter()
	router.HandleFunc("/orders", handler.CreateOrder).Methods("POST")
	router.HandleFunc("/orders/{id}/status", handler.UpdateStatus).Methods("PATCH")
	router.HandleFunc("/orders", handler.ListOrders).Methods("GET")
	router.HandleFunc("/orders/{id}", handler.GetOrder).Methods("GET")
	return router, svc
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrderEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, "POST", "/orders", map[string]interface{}{
		"channel": "COUNTER",
		"items": []map[string]interface{}{
			{
				"product_id": "prod-cheese",
				"qty":        2,
				"unit_price": 8000,
				"extras": []map[string]interface{}{
					{"extra_id": "extra-bacon", "price": 1000, "qty": 1},
				},
			},
		},
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var order models.Order
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, int64(18000), order.Total)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, int64(1), order.Number)
}

func TestCreateOrderEndpointRejectsInvalidBody(t *testing.T) {
	router, _ := newTestRouter(t)

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing channel", map[string]interface{}{
			"items": []map[string]interface{}{{"product_id": "prod-cheese", "qty": 1, "unit_price": 100}},
		}},
		{"bad channel", map[string]interface{}{
			"channel": "DRIVE_THRU",
			"items":   []map[string]interface{}{{"product_id": "prod-cheese", "qty": 1, "unit_price": 100}},
		}},
		{"no items", map[string]interface{}{"channel": "COUNTER", "items": []map[string]interface{}{}}},
		{"zero qty", map[string]interface{}{
			"channel": "COUNTER",
			"items":   []map[string]interface{}{{"product_id": "prod-cheese", "qty": 0, "unit_price": 100}},
		}},
		{"negative price", map[string]interface{}{
			"channel": "COUNTER",
			"items":   []map[string]interface{}{{"product_id": "prod-cheese", "qty": 1, "unit_price": -100}},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, "POST", "/orders", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUpdateStatusEndpoint(t *testing.T) {
	router, svc := newTestRouter(t)
	order, err := svc.CreateOrder(context.Background(), models.ChannelCounter, cheeseItems(), "")
	assert.NoError(t, err)

	rec := doJSON(t, router, "PATCH", "/orders/"+order.ID+"/status", map[string]string{"status": "READY"})
	assert.Equal(t, http.StatusOK, rec.Code)

	var updated models.Order
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, models.StatusReady, updated.Status)

	// Backwards transition maps to 409.
	rec = doJSON(t, router, "PATCH", "/orders/"+order.ID+"/status", map[string]string{"status": "PENDING"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Unknown order maps to 404.
	rec = doJSON(t, router, "PATCH", "/orders/no-such-order/status", map[string]string{"status": "READY"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Unknown status is rejected before the service runs.
	rec = doJSON(t, router, "PATCH", "/orders/"+order.ID+"/status", map[string]string{"status": "BOGUS"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrdersEndpoint(t *testing.T) {
	router, svc := newTestRouter(t)
	_, err := svc.CreateOrder(context.Background(), models.ChannelCounter, cheeseItems(), "")
	assert.NoError(t, err)
	pickup, err := svc.CreateOrder(context.Background(), models.ChannelPickup, cheeseItems(), "")
	assert.NoError(t, err)

	rec := doJSON(t, router, "GET", "/orders?channel=PICKUP", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var listed []models.Order
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	if assert.Len(t, listed, 1) {
		assert.Equal(t, pickup.ID, listed[0].ID)
	}

	rec = doJSON(t, router, "GET", "/orders?status=NOPE", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrderEndpoint(t *testing.T) {
	router, svc := newTestRouter(t)
	order, err := svc.CreateOrder(context.Background(), models.ChannelCounter, cheeseItems(), "")
	assert.NoError(t, err)

	rec := doJSON(t, router, "GET", "/orders/"+order.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, "GET", "/orders/no-such-order", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
