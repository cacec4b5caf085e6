package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rhashem/fruitmart/pkg/middleware"
	"github.com/rhashem/fruitmart/pkg/response"
	"github.com/rhashem/fruitmart/pkg/validate"
)

// Handler handles HTTP requests for cart operations
type Handler struct {
	service *Service
}

// NewHandler creates a new cart handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for cart endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Delete("/", h.Clear)
	r.Post("/items", h.Add)
	r.Patch("/items/{id}", h.UpdateQuantity)
	r.Delete("/items/{id}", h.Remove)

	return r
}

// List handles GET /cart
// @Summary      Get my cart
// @Description  List the cart's lines with current prices and the running subtotal
// @Tags         cart
// @Produce      json
// @Success      200 {object} response.APIResponse{data=CartResponse}
// @Router       /cart [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	items, err := h.service.List(r.Context(), accountID)
	if err != nil {
		response.InternalError(w, "Failed to list cart")
		return
	}

	itemResponses := make([]*ItemResponse, len(items))
	var subtotal int64
	for i, item := range items {
		itemResponses[i] = item.ToResponse()
		subtotal += item.LineTotal()
	}

	response.JSON(w, http.StatusOK, &CartResponse{Items: itemResponses, Subtotal: subtotal})
}

// Add handles POST /cart/items
// @Summary      Add to cart
// @Description  Add a product to the cart, merging with an existing line for the same product
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body AddItemRequest true "Item to add"
// @Success      201 {object} response.APIResponse{data=ItemResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /cart/items [post]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	item, err := h.service.Add(r.Context(), accountID, &req)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		if errors.Is(err, ErrNotEnoughStock) {
			response.BusinessRule(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to add to cart")
		return
	}

	response.JSON(w, http.StatusCreated, item.ToResponse())
}

// UpdateQuantity handles PATCH /cart/items/{id}
// @Summary      Update cart line quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        id path int true "Cart item ID"
// @Param        request body UpdateItemRequest true "New quantity"
// @Success      200 {object} response.APIResponse{data=ItemResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /cart/items/{id} [patch]
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid cart item ID")
		return
	}

	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	item, err := h.service.UpdateQuantity(r.Context(), id, accountID, &req)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update cart item")
		return
	}

	response.JSON(w, http.StatusOK, item.ToResponse())
}

// Remove handles DELETE /cart/items/{id}
// @Summary      Remove a cart line
// @Tags         cart
// @Produce      json
// @Param        id path int true "Cart item ID"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Router       /cart/items/{id} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid cart item ID")
		return
	}

	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	if err := h.service.Remove(r.Context(), id, accountID); err != nil {
		response.NotFound(w, "Cart item not found")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Item removed"})
}

// Clear handles DELETE /cart
// @Summary      Clear my cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Router       /cart [delete]
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	if err := h.service.Clear(r.Context(), accountID); err != nil {
		response.InternalError(w, "Failed to clear cart")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}
