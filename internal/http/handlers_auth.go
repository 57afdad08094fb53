package http

import (
	"net/http"

	"financetracker/internal/core"
	"financetracker/internal/log"
	"financetracker/internal/services"
)

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func newUserResponse(u core.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

var authMessages = errorMessages{
	conflict: "Email already in use",
	internal: "Failed to create account",
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := s.accounts.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, r, err, log.OpRegister, authMessages)
		return
	}

	// The account exists even if the cookie cannot be issued; the client
	// can log in afterwards.
	if err := s.sessions.Start(w, u.ID, u.Email, u.Name); err != nil {
		respondError(w, r, err, log.OpRegister, errorMessages{internal: "Failed to create session"})
		return
	}
	writeJSON(w, http.StatusCreated, newUserResponse(u))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, err, log.OpLogin, errorMessages{internal: "Failed to log in"})
		return
	}
	if err := s.sessions.Start(w, u.ID, u.Email, u.Name); err != nil {
		respondError(w, r, err, log.OpLogin, errorMessages{internal: "Failed to create session"})
		return
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "User logged in",
		log.FieldUserID, u.ID, log.FieldOperation, log.OpLogin)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "user": newUserResponse(u)})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := s.accounts.Current(r.Context(), userID(r))
	if err != nil {
		respondError(w, r, err, log.OpMe, errorMessages{internal: "Failed to load account"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": newUserResponse(u)})
}

// handleLogout always succeeds, with or without a session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Clear(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
