package order

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rhashem/fruitmart/pkg/middleware"
	"github.com/rhashem/fruitmart/pkg/response"
	"github.com/rhashem/fruitmart/pkg/validate"
)

// Handler handles HTTP requests for order operations
type Handler struct {
	service *Service
}

// NewHandler creates a new order handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for order endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Checkout)
	r.Get("/", h.List)
	r.Get("/all", h.ListAll)
	r.Get("/{id}", h.GetByID)
	r.Post("/{id}/cancel", h.Cancel)
	r.Patch("/{id}/status", h.UpdateStatus)

	return r
}

// Checkout handles POST /orders
// @Summary      Settle the cart into an order
// @Description  Atomically creates an order from the cart, decrements stock, debits credit, and clears the cart
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body CheckoutRequest true "Shipping destination"
// @Success      201 {object} response.APIResponse{data=OrderResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /orders [post]
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	o, err := h.service.Checkout(r.Context(), accountID, &req)
	if err != nil {
		h.writeCheckoutError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, o.ToResponse())
}

// writeCheckoutError maps settlement failures onto the error taxonomy:
// validation problems are 400s, business-rule rejections are 422s, anything
// else is a generic 500 with the cause logged server-side only.
func (h *Handler) writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var stockErr *InsufficientStockError
	switch {
	case errors.Is(err, ErrIncompleteShipping), errors.Is(err, ErrEmptyCart):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrAccountRestricted), errors.Is(err, ErrInsufficientCredit):
		response.BusinessRule(w, err.Error())
	case errors.As(err, &stockErr):
		response.BusinessRule(w, stockErr.Error())
	case errors.Is(err, ErrAccountNotFound):
		response.NotFound(w, err.Error())
	default:
		slog.ErrorContext(r.Context(), "settlement failed", "error", err)
		response.InternalError(w, "Failed to place order")
	}
}

// GetByID handles GET /orders/{id}
// @Summary      Get an order
// @Tags         orders
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200 {object} response.APIResponse{data=OrderResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /orders/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid order ID")
		return
	}

	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	o, err := h.service.GetByID(r.Context(), id, accountID, middleware.IsAdmin(r.Context()))
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotOwner) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get order")
		return
	}

	response.JSON(w, http.StatusOK, o.ToResponse())
}

// List handles GET /orders
// @Summary      List my orders
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} response.APIResponse{data=[]OrderResponse}
// @Router       /orders [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	orders, total, err := h.service.ListByAccount(r.Context(), accountID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list orders")
		return
	}

	h.writeOrderList(w, orders, total, page, perPage)
}

// ListAll handles GET /orders/all (admin)
// @Summary      List all orders
// @Tags         orders
// @Produce      json
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} response.APIResponse{data=[]OrderResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /orders/all [get]
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsAdmin(r.Context()) {
		response.Forbidden(w, "Admin access required")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	orders, total, err := h.service.ListAll(r.Context(), page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list orders")
		return
	}

	h.writeOrderList(w, orders, total, page, perPage)
}

func (h *Handler) writeOrderList(w http.ResponseWriter, orders []*Order, total, page, perPage int) {
	orderResponses := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		orderResponses[i] = o.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, orderResponses, meta)
}

// Cancel handles POST /orders/{id}/cancel
// @Summary      Cancel my pending order
// @Description  Cancels a pending order, restoring stock and refunding credit
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path int true "Order ID"
// @Param        request body CancelRequest true "Cancellation reason"
// @Success      200 {object} response.APIResponse{data=OrderResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /orders/{id}/cancel [post]
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid order ID")
		return
	}

	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	var req CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	o, err := h.service.Cancel(r.Context(), id, accountID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCancelReason):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrOrderNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrNotOwner):
			response.Forbidden(w, err.Error())
		case errors.Is(err, ErrInvalidTransition):
			response.BusinessRule(w, err.Error())
		default:
			slog.ErrorContext(r.Context(), "cancellation failed", "error", err)
			response.InternalError(w, "Failed to cancel order")
		}
		return
	}

	response.JSON(w, http.StatusOK, o.ToResponse())
}

// UpdateStatus handles PATCH /orders/{id}/status (admin)
// @Summary      Update order status
// @Description  Moves an order along its status machine; a change to cancelled refunds stock and credit
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id path int true "Order ID"
// @Param        request body UpdateStatusRequest true "Target status"
// @Success      200 {object} response.APIResponse{data=OrderResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /orders/{id}/status [patch]
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsAdmin(r.Context()) {
		response.Forbidden(w, "Admin access required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid order ID")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	o, err := h.service.UpdateStatus(r.Context(), id, req.Status, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCancelReason):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrOrderNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrInvalidTransition):
			response.BusinessRule(w, err.Error())
		default:
			slog.ErrorContext(r.Context(), "status update failed", "error", err)
			response.InternalError(w, "Failed to update order status")
		}
		return
	}

	response.JSON(w, http.StatusOK, o.ToResponse())
}
