package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"financetracker/internal/core"
	"financetracker/internal/log"
	"financetracker/internal/services"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.budgets.List(r.Context(), userID(r))
	if err != nil {
		respondError(w, r, err, log.OpList, errorMessages{internal: "Failed to fetch budgets"})
		return
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
		Limit    Number `json:"limit"`
		Spent    Number `json:"spent"`
		Period   string `json:"period"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	b, err := s.budgets.Create(r.Context(), userID(r), services.BudgetInput{
		Category: req.Category,
		Limit:    req.Limit.String(),
		Spent:    req.Spent.String(),
		Period:   req.Period,
	})
	if err != nil {
		respondError(w, r, err, log.OpCreate, errorMessages{
			conflict: "Budget already exists for this category",
			internal: "Failed to create budget",
		})
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// handleUpdateBudget replaces spent; no other field is writable.
func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Spent Number `json:"spent"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.budgets.SetSpent(r.Context(), userID(r), chi.URLParam(r, "id"), req.Spent.String())
	if err != nil {
		respondError(w, r, err, log.OpUpdate, errorMessages{
			notFound: "Budget not found",
			internal: "Failed to update budget",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	err := s.budgets.Delete(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, log.OpDelete, errorMessages{
			notFound: "Budget not found",
			internal: "Failed to delete budget",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
