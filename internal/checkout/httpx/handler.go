package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-checkout/internal/checkout/domain"
)

// Handler handles incoming HTTP requests for the Order domain.
type Handler struct {
	orders domain.Repository
}

// NewHandler initializes the handler with the repository it persists through.
func NewHandler(orders domain.Repository) *Handler {
	return &Handler{orders: orders}
}

// CreateOrder receives the request, mints ids where the caller left them
// blank, and persists the aggregate.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "customer_id is required")
		return
	}

	order, ok := mapRequestToOrder(w, req)
	if !ok {
		return
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	requestID := middleware.GetReqID(r.Context())
	slog.InfoContext(r.Context(), "creating order",
		"request_id", requestID, "order_id", order.ID, "customer_id", order.CustomerID)

	if err := h.orders.Create(r.Context(), order); err != nil {
		writeError(w, http.StatusConflict, "order_create_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, mapOrderToResponse(order))
}

// UpdateOrder replaces the order header and reconciles its items. The path
// id wins over any id in the body.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if req.CustomerID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "customer_id is required")
		return
	}

	order, ok := mapRequestToOrder(w, req)
	if !ok {
		return
	}
	order.ID = orderID

	if err := h.orders.Update(r.Context(), order); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "order_not_found", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "order_update_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// GetOrder retrieves a single order by its ID.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	order, err := h.orders.Find(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "order_not_found", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "order_find_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(order))
}

// ListOrders retrieves every order, in insertion order.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.FindAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "order_list_failed", err.Error())
		return
	}

	out := make([]OrderResponse, len(orders))
	for i, order := range orders {
		out[i] = mapOrderToResponse(order)
	}
	writeJSON(w, http.StatusOK, out)
}

// mapRequestToOrder validates and converts the DTO. On a validation failure
// it writes the error response itself and reports ok=false.
func mapRequestToOrder(w http.ResponseWriter, req OrderRequest) (*domain.Order, bool) {
	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ProductID == "" || it.Quantity <= 0 || it.Price <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_item", "product_id, quantity, and price must be valid")
			return nil, false
		}
		id := it.ID
		if id == "" {
			id = uuid.NewString()
		}
		items = append(items, domain.OrderItem{
			ID:        id,
			Name:      it.Name,
			Price:     it.Price,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return &domain.Order{ID: req.ID, CustomerID: req.CustomerID, Items: items}, true
}

// mapOrderToResponse converts the aggregate to the HTTP response format.
// Total here is derived from the items, i.e. the same value the repository
// snapshots on write.
func mapOrderToResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemDTO, len(order.Items))
	for i, it := range order.Items {
		items[i] = OrderItemDTO{
			ID:        it.ID,
			Name:      it.Name,
			Price:     it.Price,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		}
	}
	return OrderResponse{
		ID:         order.ID,
		CustomerID: order.CustomerID,
		Total:      order.Total(),
		Items:      items,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}
