package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"financetracker/internal/core"
	"financetracker/internal/log"
	"financetracker/internal/services"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions.List(r.Context(), userID(r))
	if err != nil {
		respondError(w, r, err, log.OpList, errorMessages{internal: "Failed to fetch transactions"})
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount      Number `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Type        string `json:"type"`
		Date        string `json:"date"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	t, err := s.transactions.Create(r.Context(), userID(r), services.TransactionInput{
		Amount:      req.Amount.String(),
		Category:    req.Category,
		Description: req.Description,
		Type:        req.Type,
		Date:        req.Date,
	})
	if err != nil {
		respondError(w, r, err, log.OpCreate, errorMessages{internal: "Failed to create transaction"})
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	err := s.transactions.Delete(r.Context(), userID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, log.OpDelete, errorMessages{
			notFound: "Transaction not found",
			internal: "Failed to delete transaction",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
