package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"raiox-platform/internal/common/errors"
	"raiox-platform/internal/leads"
	"raiox-platform/internal/models"
	"raiox-platform/internal/scoring"
)

const pageSize = 25

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	token, err := s.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if stdErr, ok := err.(*errors.StandardError); ok && stdErr.Code == errors.ErrCodeAuthentication {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.log.Error("login failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Admin.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   s.cfg.Admin.SessionTTL,
		HttpOnly: true,
		Secure:   s.cfg.Admin.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(s.cfg.Admin.CookieName); err == nil && cookie.Value != "" {
		if err := s.sessions.Logout(r.Context(), cookie.Value); err != nil {
			s.log.Warn("logout failed", map[string]interface{}{"error": err.Error()})
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Admin.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	filter := models.LeadFilter{
		Tier:    scoring.LeadTier(r.URL.Query().Get("tier")),
		Variant: r.URL.Query().Get("variant"),
		Limit:   pageSize,
		Offset:  (page - 1) * pageSize,
	}

	summaries, err := s.store.List(r.Context(), filter)
	if err != nil {
		s.log.Error("lead listing failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to list leads")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"leads": summaries,
		"page":  page,
	})
}

func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lead, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		if stdErr, ok := err.(*errors.StandardError); ok && stdErr.Code == errors.ErrCodeLeadNotFound {
			writeError(w, http.StatusNotFound, "lead not found")
			return
		}
		s.log.Error("lead lookup failed", map[string]interface{}{"leadId": id, "error": err.Error()})
		writeError(w, http.StatusInternalServerError, "failed to load lead")
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func (s *Server) handleSearchLeads(w http.ResponseWriter, r *http.Request) {
	if s.searcher == nil {
		writeError(w, http.StatusServiceUnavailable, "search is not configured")
		return
	}

	from, _ := strconv.Atoi(r.URL.Query().Get("from"))
	if from < 0 {
		from = 0
	}

	q := leads.Query{
		Text: r.URL.Query().Get("q"),
		Tier: scoring.LeadTier(r.URL.Query().Get("tier")),
		From: from,
		Size: pageSize,
	}

	summaries, err := s.searcher.Search(r.Context(), q)
	if err != nil {
		s.log.Error("lead search failed", map[string]interface{}{"error": err.Error()})
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"leads": summaries})
}
