package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sakshee44566/CareerHub/internal/db"
	"github.com/sakshee44566/CareerHub/internal/models"
)

type PostsHandler struct {
	store *db.Store
}

func NewPostsHandler(store *db.Store) *PostsHandler {
	return &PostsHandler{store: store}
}

func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.store.List(r.Context()))
}

func (h *PostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, r, err, "fetch")
		return
	}
	respondJSON(w, http.StatusOK, post)
}

// Create inserts a new post (session protected).
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var fields models.PostFields
	if err := decodeBody(r, &fields); err != nil {
		respondBadBody(w, err)
		return
	}
	if err := fields.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if fields.Tags == nil {
		fields.Tags = []string{}
	}

	created, err := h.store.Insert(r.Context(), fields)
	if err != nil {
		respondStoreError(w, r, err, "create")
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// Update shallow-merges the body onto an existing post (session protected).
func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.PostPatch
	if err := decodeBody(r, &patch); err != nil {
		respondBadBody(w, err)
		return
	}
	if err := patch.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondStoreError(w, r, err, "update")
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondStoreError(w, r, err, "delete")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Post deleted successfully"})
}

func respondStoreError(w http.ResponseWriter, r *http.Request, err error, action string) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		respondError(w, http.StatusNotFound, "Post not found")
	case errors.Is(err, db.ErrPersist):
		slog.Error("post "+action+" not persisted",
			"err", err,
			"id", chi.URLParam(r, "id"),
			"request_id", middleware.GetReqID(r.Context()),
		)
		w.Header().Set("Retry-After", "1")
		respondError(w, http.StatusServiceUnavailable, "Failed to "+action+" post")
	default:
		slog.Error("post "+action+" failed", "err", err, "request_id", middleware.GetReqID(r.Context()))
		respondError(w, http.StatusInternalServerError, "Failed to "+action+" post")
	}
}
