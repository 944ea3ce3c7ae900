package menu

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Handler serves the read-only menu listings displays use to bootstrap.
type Handler struct {
	catalog Catalog
	logger  *logrus.Logger
}

func NewHandler(catalog Catalog, logger *logrus.Logger) *Handler {
	return &Handler{catalog: catalog, logger: logger}
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, products)
}

func (h *Handler) ListExtras(w http.ResponseWriter, r *http.Request) {
	extras, err := h.catalog.ListExtras(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, extras)
}

func (h *Handler) respondJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	h.logger.WithError(err).Error("Menu listing failed")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": "menu unavailable",
	})
}
