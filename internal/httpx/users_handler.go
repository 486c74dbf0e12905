package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anonb2b/orders-backend/internal/apperr"
	"github.com/anonb2b/orders-backend/internal/users"
)

type UsersHandler struct {
	Store *users.Store
}

type RegisterReq struct {
	Email        string `json:"email"`
	Phone        string `json:"phone,omitempty"`
	Password     string `json:"password"`
	BusinessName string `json:"business_name"`
	GSTIN        string `json:"gstin,omitempty"`
	BusinessType string `json:"business_type"`
}

func (h *UsersHandler) Register(r *chi.Mux) {
	r.Post("/users", h.create)
	r.Get("/users/{id}", h.get)
	r.Post("/users/{id}/verify", h.verify)
	r.Post("/users/{id}/deactivate", h.deactivate)
	r.Post("/auth/login", h.login)
}

func (h *UsersHandler) verify(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Store.Verify(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResp(u))
}

func (h *UsersHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Store.Deactivate(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResp(u))
}

func (h *UsersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req RegisterReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation("invalid json"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Store.Create(ctx, users.CreateInput{
		Email:        req.Email,
		Phone:        req.Phone,
		Password:     req.Password,
		BusinessName: req.BusinessName,
		GSTIN:        req.GSTIN,
		BusinessType: users.BusinessType(req.BusinessType),
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResp(u))
}

func (h *UsersHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Store.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResp(u))
}

// login verifies credentials and returns the user; session/token issuance is
// the gateway's job.
func (h *UsersHandler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation("invalid json"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	u, err := h.Store.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResp(u))
}
