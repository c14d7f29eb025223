package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"vendora/internal/models"
)

// TaxonomyLister serves the public category tree.
type TaxonomyLister interface {
	List(ctx context.Context) ([]models.Category, error)
}

// Taxonomy groups the public taxonomy handlers.
type Taxonomy struct {
	store TaxonomyLister
}

// NewTaxonomy creates the taxonomy handler group.
func NewTaxonomy(store TaxonomyLister) *Taxonomy {
	return &Taxonomy{store: store}
}

// Categories serves GET /api/categories: all categories with their
// subcategories, for storefront navigation.
func (h *Taxonomy) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.store.List(r.Context())
	if err != nil {
		slog.Error("list categories failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": cats})
}
