package account

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rhashem/fruitmart/pkg/middleware"
	"github.com/rhashem/fruitmart/pkg/response"
	"github.com/rhashem/fruitmart/pkg/validate"
)

// Handler handles HTTP requests for account operations
type Handler struct {
	service *Service
}

// NewHandler creates a new account handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for account endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Get)
	r.Post("/topup", h.TopUp)

	return r
}

// Get handles GET /account
// @Summary      Get my account
// @Description  Get the authenticated member's account with its credit balance
// @Tags         account
// @Produce      json
// @Success      200 {object} response.APIResponse{data=AccountResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /account [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	acct, err := h.service.GetByID(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to get account")
		return
	}

	response.JSON(w, http.StatusOK, acct.ToResponse())
}

// TopUp handles POST /account/topup
// @Summary      Top up credit
// @Description  Add prepaid credit to the authenticated member's account
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body TopUpRequest true "Top-up request"
// @Success      200 {object} response.APIResponse{data=AccountResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /account/topup [post]
func (h *Handler) TopUp(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r.Context())
	if !ok {
		response.Unauthorized(w, "Not authenticated")
		return
	}

	var req TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := validate.Struct(&req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	acct, err := h.service.TopUp(r.Context(), accountID, req.Amount)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to top up credit")
		return
	}

	response.JSON(w, http.StatusOK, acct.ToResponse())
}
