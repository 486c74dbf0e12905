package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/anonb2b/orders-backend/internal/address"
	"github.com/anonb2b/orders-backend/internal/apperr"
)

type AddressHandler struct {
	Book *address.Book
}

type AddressReq struct {
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country,omitempty"`
}

func (r AddressReq) spec() address.Spec {
	return address.Spec{
		AddressLine1: r.AddressLine1,
		AddressLine2: r.AddressLine2,
		City:         r.City,
		State:        r.State,
		PostalCode:   r.PostalCode,
		Country:      r.Country,
	}
}

func (h *AddressHandler) Register(r *chi.Mux) {
	r.Post("/users/{userID}/addresses", h.create)
	r.Get("/users/{userID}/addresses", h.list)
	r.Get("/users/{userID}/addresses/default", h.getDefault)
	r.Put("/users/{userID}/addresses/{id}", h.update)
	r.Post("/users/{userID}/addresses/{id}/default", h.setDefault)
	r.Delete("/users/{userID}/addresses/{id}", h.delete)
}

func (h *AddressHandler) create(w http.ResponseWriter, r *http.Request) {
	var req AddressReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation("invalid json"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	a, err := h.Book.Create(ctx, chi.URLParam(r, "userID"), req.spec())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAddressResp(a))
}

func (h *AddressHandler) update(w http.ResponseWriter, r *http.Request) {
	var req AddressReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperr.Validation("invalid json"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	a, err := h.Book.Update(ctx, chi.URLParam(r, "userID"), chi.URLParam(r, "id"), req.spec())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAddressResp(a))
}

func (h *AddressHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	as, err := h.Book.ListByUser(ctx, chi.URLParam(r, "userID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAddressResps(as))
}

func (h *AddressHandler) getDefault(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	a, err := h.Book.Default(ctx, chi.URLParam(r, "userID"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAddressResp(a))
}

func (h *AddressHandler) setDefault(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	a, err := h.Book.SetDefault(ctx, chi.URLParam(r, "userID"), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAddressResp(a))
}

func (h *AddressHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Book.Delete(ctx, chi.URLParam(r, "userID"), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
