package app

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
)

const (
	defaultAdminPageSize = 20
	maxAdminPageSize     = 500
)

// ------------------- Admin Handlers -------------------

func adminTokenHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &credentials) {
		return
	}
	if !checkAdminCredentials(strings.TrimSpace(credentials.Username), credentials.Password) {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	token, expiresAt, err := issueJWT(admin.Username, adminTokenTTL)
	if err != nil {
		log.Errorf("Failed to issue token: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}
	respondOK(w, map[string]interface{}{
		"token":      token,
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	}, "Token issued")
}

// adminPersonasHandler lists (GET) or creates/replaces (POST) personas.
func adminPersonasHandler(w http.ResponseWriter, r *http.Request) {
	if !requireAPIAuth(w, r) {
		return
	}
	switch r.Method {
	case http.MethodGet:
		personasHandler(w, r)

	case http.MethodPost:
		var persona Persona
		if !decodeJSON(w, r, &persona) {
			return
		}
		persona.UpdatedAt = time.Time{}
		writePersona(w, &persona, "Persona saved")

	default:
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// adminPersonaHandler updates (PUT) or deletes (DELETE) one persona.
func adminPersonaHandler(w http.ResponseWriter, r *http.Request) {
	if !requireAPIAuth(w, r) {
		return
	}
	code := mux.Vars(r)["personaCode"]

	switch r.Method {
	case http.MethodPut:
		if _, err := getPersona(db, code); err != nil {
			respondPersonaError(w, err, "Failed to load persona")
			return
		}
		var persona Persona
		if !decodeJSON(w, r, &persona) {
			return
		}
		persona.Code = code
		persona.UpdatedAt = time.Time{}
		writePersona(w, &persona, "Persona updated")

	case http.MethodDelete:
		if err := deletePersona(db, code); err != nil {
			respondPersonaError(w, err, "Failed to delete persona")
			return
		}
		respondOK(w, map[string]string{"deletedPersonaCode": code}, "Persona deleted")

	default:
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func writePersona(w http.ResponseWriter, persona *Persona, message string) {
	if err := savePersona(db, persona); err != nil {
		respondPersonaError(w, err, "Failed to save persona")
		return
	}
	saved, err := getPersona(db, persona.Code)
	if err != nil {
		respondPersonaError(w, err, "Failed to load persona")
		return
	}
	respondOK(w, saved, message)
}

// respondPersonaError maps store sentinels to client errors and logs the
// rest.
func respondPersonaError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, ErrPersonaNotFound):
		respondError(w, http.StatusNotFound, "Persona not found")
	case errors.Is(err, ErrInvalidPersona):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		log.Errorf("%s: %v", message, err)
		respondError(w, http.StatusInternalServerError, message)
	}
}

func adminCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	if !requireAPIAuth(w, r) {
		return
	}
	categories, err := getCategories(db)
	if err != nil {
		log.Errorf("Failed to retrieve categories: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to retrieve categories")
		return
	}
	respondOK(w, categories, "Categories loaded successfully")
}

// adminConversationsHandler lists the newest exchanges across personas.
// adminConversationsHandler pages through all conversations. Query
// parameters: page (from 0), size (limit is accepted as an alias),
// personaCode, userId, startDate and endDate. Dates are "2006-01-02" or
// "2006-01-02 15:04:05" in UTC; a bare endDate includes that whole day.
func adminConversationsHandler(w http.ResponseWriter, r *http.Request) {
	if !requireAPIAuth(w, r) {
		return
	}
	filter, err := parseConversationFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := getRecentConversations(db, filter)
	if err != nil {
		log.Errorf("Failed to retrieve conversations: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to retrieve conversations")
		return
	}
	respondOK(w, page, "Conversations retrieved successfully")
}

func parseConversationFilter(r *http.Request) (ConversationFilter, error) {
	q := r.URL.Query()
	f := ConversationFilter{
		PersonaCode: strings.TrimSpace(q.Get("personaCode")),
		UserID:      strings.TrimSpace(q.Get("userId")),
		Size:        defaultAdminPageSize,
	}

	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return f, errors.New("Invalid page")
		}
		f.Page = n
	}
	raw := strings.TrimSpace(q.Get("size"))
	if raw == "" {
		raw = strings.TrimSpace(q.Get("limit"))
	}
	if raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return f, errors.New("Invalid size")
		}
		f.Size = min(n, maxAdminPageSize)
	}

	var err error
	if f.Start, _, err = parseDateParam(q.Get("startDate")); err != nil {
		return f, errors.New("Invalid startDate")
	}
	var dateOnly bool
	if f.End, dateOnly, err = parseDateParam(q.Get("endDate")); err != nil {
		return f, errors.New("Invalid endDate")
	}
	if dateOnly {
		f.End = f.End.AddDate(0, 0, 1)
	}
	return f, nil
}

// parseDateParam reads an admin date filter. Empty input yields the zero
// time.
func parseDateParam(raw string) (t time.Time, dateOnly bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, nil
	}
	if t, err = time.Parse(time.DateOnly, raw); err == nil {
		return t, true, nil
	}
	if t, err = time.Parse(time.DateTime, raw); err == nil {
		return t, false, nil
	}
	t, err = time.Parse(time.RFC3339, raw)
	return t, false, err
}
