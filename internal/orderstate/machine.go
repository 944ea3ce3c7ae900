// Package orderstate owns the order status state machine: which transitions
// are legal and which realtime event a legal transition produces.
package orderstate

import (
	"fmt"

	"github.com/geromendez199/AlfajorApp/pkg/models"
)

// transitions is the full set of legal moves. Anything absent is illegal,
// including self-transitions and any move out of a terminal status. The
// kitchen may mark a pending order ready without starting it first, but
// delivery always requires a prior READY.
var transitions = map[models.Status][]models.Status{
	models.StatusPending:    {models.StatusInProgress, models.StatusReady, models.StatusCancelled},
	models.StatusInProgress: {models.StatusReady, models.StatusCancelled},
	models.StatusReady:      {models.StatusDelivered, models.StatusCancelled},
	models.StatusDelivered:  {},
	models.StatusCancelled:  {},
}

// Allowed reports whether current → requested is a legal transition.
func Allowed(current, requested models.Status) bool {
	for _, next := range transitions[current] {
		if next == requested {
			return true
		}
	}
	return false
}

// Transition validates current → requested and returns the event to
// broadcast for it. Illegal transitions return ErrInvalidTransition and no
// event; the caller must not touch the store or the broadcaster then.
func Transition(current, requested models.Status) (models.EventType, error) {
	if !requested.Valid() {
		return "", models.Validationf("status", "unknown status %q", requested)
	}
	if !Allowed(current, requested) {
		return "", fmt.Errorf("%s -> %s: %w", current, requested, models.ErrInvalidTransition)
	}
	switch requested {
	case models.StatusReady:
		return models.EventOrderReady, nil
	case models.StatusCancelled:
		return models.EventOrderCancelled, nil
	default:
		return models.EventOrderUpdated, nil
	}
}
