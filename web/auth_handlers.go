package web

import (
	"errors"
	"net/http"
	"strconv"

	"cemsreg/auth"
	"cemsreg/observability"
	"cemsreg/registry"
)

// handleRegister creates the user account and the industry profile in one
// step. A blocking validation failure returns the full violation list.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in registry.RegistrationInput
	if !decodeJSON(w, r, &in) {
		return
	}

	if v := registry.ValidateRegistration(&in); v.Blocking() {
		writeViolations(w, v)
		return
	}

	indID, userID, err := s.store.RegisterIndustry(r.Context(), &in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.events.Log(observability.Event{
		Type:       "industry_registered",
		EntityType: "industry",
		EntityID:   indID.String(),
		UserID:     userID.String(),
		Success:    true,
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"industry_id": indID,
		"user_id":     userID,
	})
}

// handleLogin authenticates against the industry accounts by default, or the
// admin table when role is "admin", and sets the session cookie.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	claims := &auth.SessionClaims{Email: req.Email}
	switch req.Role {
	case "", auth.RoleIndustry:
		userID, indID, err := s.store.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			s.logLoginFailure(r, req.Email, err)
			s.writeError(w, r, err)
			return
		}
		claims.UserID = int64(userID)
		claims.IndustryID = int64(indID)
		claims.Role = auth.RoleIndustry
	case auth.RoleAdmin:
		adminID, err := s.store.AuthenticateAdmin(r.Context(), req.Email, req.Password)
		if err != nil {
			s.logLoginFailure(r, req.Email, err)
			s.writeError(w, r, err)
			return
		}
		claims.UserID = int64(adminID)
		claims.Role = auth.RoleAdmin
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown role"})
		return
	}

	token, err := auth.GenerateToken(s.cfg.Secret, claims, s.cfg.SessionTTL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	auth.SetTokenCookie(w, token, int(s.cfg.SessionTTL.Seconds()), r.TLS != nil)

	s.events.Log(observability.Event{
		Type:       "login",
		EntityType: "user",
		EntityID:   strconv.FormatInt(claims.UserID, 10),
		UserID:     strconv.FormatInt(claims.UserID, 10),
		Success:    true,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"token":       token,
		"role":        claims.Role,
		"user_id":     claims.UserID,
		"industry_id": claims.IndustryID,
	})
}

func (s *Server) logLoginFailure(r *http.Request, email string, err error) {
	if !errors.Is(err, registry.ErrBadCredentials) {
		return
	}
	s.events.Log(observability.Event{
		Type:       "login",
		EntityType: "user",
		EntityID:   email,
		Success:    false,
		Details:    `{"reason":"bad credentials"}`,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearTokenCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	c := auth.GetClaims(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id":     c.UserID,
		"email":       c.Email,
		"role":        c.Role,
		"industry_id": c.IndustryID,
	})
}
