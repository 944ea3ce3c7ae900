package orders

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/geromendez199/AlfajorApp/internal/store"
	"github.com/geromendez199/AlfajorApp/pkg/models"
)

// Handler exposes the synchronous order API over HTTP.
type Handler struct {
	service  *Service
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewHandler(service *Service, logger *logrus.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

type extraRequest struct {
	ExtraID string `json:"extra_id" validate:"required"`
	Price   int64  `json:"price" validate:"gte=0"`
	Qty     int    `json:"qty" validate:"gt=0"`
}

type orderItemRequest struct {
	ProductID string         `json:"product_id" validate:"required"`
	Qty       int            `json:"qty" validate:"gt=0"`
	UnitPrice int64          `json:"unit_price" validate:"gte=0"`
	IsCombo   bool           `json:"is_combo"`
	Notes     string         `json:"notes"`
	Extras    []extraRequest `json:"extras" validate:"dive"`
}

type createOrderRequest struct {
	Channel string             `json:"channel" validate:"required,oneof=COUNTER PICKUP DELIVERY"`
	Items   []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes   string             `json:"notes"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING IN_PROGRESS READY DELIVERED CANCELLED"`
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	items := make([]models.OrderItem, len(req.Items))
	for i, item := range req.Items {
		extras := make([]models.ExtraSelection, len(item.Extras))
		for j, ex := range item.Extras {
			extras[j] = models.ExtraSelection{ExtraID: ex.ExtraID, Price: ex.Price, Qty: ex.Qty}
		}
		items[i] = models.OrderItem{
			ProductID: item.ProductID,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			IsCombo:   item.IsCombo,
			Notes:     item.Notes,
			Extras:    extras,
		}
	}

	order, err := h.service.CreateOrder(r.Context(), models.Channel(req.Channel), items, req.Notes)
	if err != nil {
		h.respondWithDomainError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, order)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.service.ChangeStatus(r.Context(), id, models.Status(req.Status))
	if err != nil {
		h.respondWithDomainError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, order)
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	var filter store.Filter
	if v := r.URL.Query().Get("status"); v != "" {
		status := models.Status(v)
		if !status.Valid() {
			h.respondWithError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		filter.Status = &status
	}
	if v := r.URL.Query().Get("channel"); v != "" {
		channel := models.Channel(v)
		if !channel.Valid() {
			h.respondWithError(w, http.StatusBadRequest, "unknown channel filter")
			return
		}
		filter.Channel = &channel
	}

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		h.respondWithDomainError(w, err)
		return
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	h.respondWithJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondWithDomainError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, order)
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "order-service",
	})
}

// respondWithDomainError maps the error taxonomy onto HTTP statuses:
// validation 400, not found 404, illegal transition 409, timeout 503,
// storage 500.
func (h *Handler) respondWithDomainError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		h.respondWithError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, models.ErrNotFound):
		h.respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrInvalidTransition):
		h.respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrTimeout):
		h.respondWithError(w, http.StatusServiceUnavailable, "storage timeout")
	default:
		h.logger.WithError(err).Error("Request failed")
		h.respondWithError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.respondWithJSON(w, code, map[string]interface{}{
		"success": false,
		"message": message,
	})
}
