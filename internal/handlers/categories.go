package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"inkpress/internal/cache"
	"inkpress/internal/taxonomy"
)

// Categories groups the taxonomy handlers.
type Categories struct {
	store *taxonomy.Store
	cache *cache.RenderCache
}

// NewCategories creates the categories handler group. cache may be nil.
func NewCategories(store *taxonomy.Store, renderCache *cache.RenderCache) *Categories {
	return &Categories{store: store, cache: renderCache}
}

// Get returns the current sub-category tree.
func (c *Categories) Get(w http.ResponseWriter, r *http.Request) {
	tree, err := c.store.Tree()
	if err != nil {
		slog.Error("load categories failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load categories")
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"techSubCategories": tree.TechSubCategories,
	})
}

type addCategoryRequest struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Icon   string `json:"icon"`
	Parent string `json:"parent"`
}

// Add creates a new sub-category (top-level or nested one level under an
// existing parent) and its backing directory.
func (c *Categories) Add(w http.ResponseWriter, r *http.Request) {
	var req addCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if msg := validateSubCategory(req.Value, req.Label, req.Icon); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	tree, err := c.store.Add(taxonomy.SubCategory{
		Value: req.Value,
		Label: req.Label,
		Icon:  req.Icon,
	}, req.Parent)
	if err != nil {
		switch {
		case errors.Is(err, taxonomy.ErrExists):
			respondError(w, http.StatusConflict, "Sub-category already exists")
		case errors.Is(err, taxonomy.ErrParentNotFound):
			respondError(w, http.StatusBadRequest, "Parent sub-category not found")
		default:
			slog.Error("add category failed", "value", req.Value, "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to add category")
		}
		return
	}

	c.cache.InvalidateAll(r.Context())
	slog.Info("sub-category added", "value", req.Value, "parent", req.Parent)
	respond(w, http.StatusCreated, map[string]any{
		"techSubCategories": tree.TechSubCategories,
	})
}

type removeCategoryRequest struct {
	Value  string `json:"value"`
	Parent string `json:"parent"`
}

// Remove deletes an empty, non-default sub-category and its directory.
// Deletion is refused while posts still live under it.
func (c *Categories) Remove(w http.ResponseWriter, r *http.Request) {
	var req removeCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Value == "" {
		respondError(w, http.StatusBadRequest, "Value is required.")
		return
	}

	tree, err := c.store.Remove(req.Value, req.Parent)
	if err != nil {
		var notEmpty *taxonomy.NotEmptyError
		switch {
		case errors.As(err, &notEmpty):
			respondError(w, http.StatusBadRequest, fmt.Sprintf(
				"Cannot delete: %d post(s) still use this sub-category", notEmpty.Count))
		case errors.Is(err, taxonomy.ErrProtected):
			respondError(w, http.StatusBadRequest, "Default sub-categories cannot be deleted")
		case errors.Is(err, taxonomy.ErrNotFound):
			respondError(w, http.StatusNotFound, "Sub-category not found")
		default:
			slog.Error("remove category failed", "value", req.Value, "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to remove category")
		}
		return
	}

	c.cache.InvalidateAll(r.Context())
	slog.Info("sub-category removed", "value", req.Value, "parent", req.Parent)
	respond(w, http.StatusOK, map[string]any{
		"techSubCategories": tree.TechSubCategories,
	})
}
