package handlers

import (
	"net/http"
	"strconv"

	"github.com/finhelm/statement-api/internal/api/middleware"
	"github.com/finhelm/statement-api/internal/domain/categorization"
)

// CategoriesHandler serves the category enumeration and suggestions.
type CategoriesHandler struct{}

func NewCategoriesHandler() *CategoriesHandler {
	return &CategoriesHandler{}
}

// List handles GET /api/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"categories": categorization.All(),
	})
}

// Suggest handles GET /api/categories/suggest.
func (h *CategoriesHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if limitStr := query.Get("limit"); limitStr != "" {
		limit, _ = strconv.Atoi(limitStr)
	}

	suggestions := categorization.Suggest(query.Get("q"), limit)
	if suggestions == nil {
		suggestions = []categorization.Category{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]any{
		"suggestions": suggestions,
	})
}
