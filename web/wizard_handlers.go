package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cemsreg/auth"
	"cemsreg/observability"
	"cemsreg/registry"
)

func (s *Server) handleIndustry(w http.ResponseWriter, r *http.Request) {
	c := auth.GetClaims(r.Context())
	ind, err := s.store.IndustryByID(r.Context(), registry.IndustryID(c.IndustryID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ind)
}

func (s *Server) handleWizard(w http.ResponseWriter, r *http.Request) {
	c := auth.GetClaims(r.Context())
	progress, err := s.store.Progress(r.Context(), registry.IndustryID(c.IndustryID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	c := auth.GetClaims(r.Context())
	detail, err := s.store.IndustryDetail(r.Context(), registry.IndustryID(c.IndustryID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleListStacks(w http.ResponseWriter, r *http.Request) {
	c := auth.GetClaims(r.Context())
	stacks, err := s.store.StacksByIndustry(r.Context(), registry.IndustryID(c.IndustryID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stacks": stacks})
}

// handleAddStack validates and persists one emission stack. Guideline
// warnings do not block; they come back alongside the created ID.
func (s *Server) handleAddStack(w http.ResponseWriter, r *http.Request) {
	c := auth.GetClaims(r.Context())

	var in registry.StackInput
	if !decodeJSON(w, r, &in) {
		return
	}

	v := registry.ValidateStack(&in)
	if v.Blocking() {
		writeViolations(w, v)
		return
	}

	stackID, err := s.store.AddStack(r.Context(), registry.IndustryID(c.IndustryID), &in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.events.Log(observability.Event{
		Type:       "stack_submitted",
		EntityType: "stack",
		EntityID:   stackID.String(),
		UserID:     strconv.FormatInt(c.UserID, 10),
		Success:    true,
	})

	resp := map[string]any{"stack_id": stackID}
	if warnings := v.Warnings(); len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	writeJSON(w, http.StatusCreated, resp)
}

// ownedStack resolves {stackID} and checks it belongs to the session's
// industry. Foreign stacks read as not found so IDs cannot be probed.
func (s *Server) ownedStack(w http.ResponseWriter, r *http.Request) *registry.Stack {
	c := auth.GetClaims(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "stackID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stack id"})
		return nil
	}

	st, err := s.store.StackByID(r.Context(), registry.StackID(id))
	if err != nil {
		s.writeError(w, r, err)
		return nil
	}
	if int64(st.IndustryID) != c.IndustryID {
		s.writeError(w, r, registry.ErrNotFound)
		return nil
	}
	return st
}

func (s *Server) handleRemainingParameters(w http.ResponseWriter, r *http.Request) {
	st := s.ownedStack(w, r)
	if st == nil {
		return
	}
	remaining, err := s.store.RemainingParameters(r.Context(), st.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"declared":  st.Parameters,
		"remaining": remaining,
	})
}

func (s *Server) handleListInstruments(w http.ResponseWriter, r *http.Request) {
	st := s.ownedStack(w, r)
	if st == nil {
		return
	}
	instruments, err := s.store.InstrumentsByStack(r.Context(), st.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"instruments": instruments})
}

func (s *Server) handleAddInstrument(w http.ResponseWriter, r *http.Request) {
	st := s.ownedStack(w, r)
	if st == nil {
		return
	}

	var in registry.InstrumentInput
	if !decodeJSON(w, r, &in) {
		return
	}

	if v := registry.ValidateInstrument(&in, st.Parameters); v.Blocking() {
		writeViolations(w, v)
		return
	}

	instID, err := s.store.AddInstrument(r.Context(), st.ID, &in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	c := auth.GetClaims(r.Context())
	s.events.Log(observability.Event{
		Type:       "instrument_submitted",
		EntityType: "instrument",
		EntityID:   instID.String(),
		UserID:     strconv.FormatInt(c.UserID, 10),
		Success:    true,
	})

	writeJSON(w, http.StatusCreated, map[string]any{"instrument_id": instID})
}
