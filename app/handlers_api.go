package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"chatops/markdown"
)

// ------------------- Chat API (JSON) -------------------

func healthHandler(w http.ResponseWriter, r *http.Request) {
	respondOK(w, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(startedAt).Seconds(),
	}, "Server is running successfully")
}

// personasHandler lists every persona.
func personasHandler(w http.ResponseWriter, r *http.Request) {
	personas, err := getAllPersonas(db)
	if err != nil {
		log.Errorf("Failed to retrieve personas: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to retrieve personas")
		return
	}
	respondOK(w, personas, "Personas loaded successfully")
}

type messageRequest struct {
	PersonaCode  string   `json:"personaCode"`
	UserID       string   `json:"userId,omitempty"`
	UserQuery    string   `json:"userQuery"`
	QueryHistory []string `json:"queryHistory,omitempty"`
}

// messageAsyncHandler answers a user query with the persona's canned
// response, stores the exchange and replies after a simulated thinking delay.
func messageAsyncHandler(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.PersonaCode = strings.TrimSpace(req.PersonaCode)
	req.UserQuery = strings.TrimSpace(req.UserQuery)
	if req.PersonaCode == "" || req.UserQuery == "" {
		respondError(w, http.StatusBadRequest, "personaCode and userQuery are required")
		return
	}

	persona, err := getPersona(db, req.PersonaCode)
	if err != nil {
		if errors.Is(err, ErrPersonaNotFound) {
			respondError(w, http.StatusNotFound, "Persona not found")
			return
		}
		log.Errorf("Failed to load persona: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to load persona")
		return
	}

	now := time.Now().UTC()
	conversation := &Conversation{
		ID:          newConversationID(now),
		PersonaCode: persona.Code,
		UserID:      strings.TrimSpace(req.UserID),
		UserQuery:   req.UserQuery,
		AIResponse:  seed.generateResponse(persona, req.UserQuery, now),
		Created:     now,
	}
	if err := saveConversation(db, conversation, cfg.HistoryLimit); err != nil {
		log.Errorf("Failed to save conversation: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to save conversation")
		return
	}

	if err := thinkingDelay(r.Context(), cfg.DelayMin, cfg.DelayMax); err != nil {
		log.WithFields(logrus.Fields{
			"persona":         persona.Code,
			"conversation_id": conversation.ID,
		}).Info("Client went away before the answer was sent")
		return
	}

	messageTotal.WithLabelValues(persona.Code).Inc()
	respondOK(w, map[string]interface{}{
		"aiResponse":     conversation.AIResponse,
		"aiResponseHtml": string(renderMarkdown(conversation.AIResponse)),
		"conversationId": conversation.ID,
	}, "Message processed successfully")
}

func quickQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	code := strings.TrimSpace(r.URL.Query().Get("personaCode"))
	respondOK(w, seed.quickQuestions(code), "Quick questions generated successfully")
}

// conversationsHandler lists (GET) or clears (DELETE) a persona's history.
func conversationsHandler(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["personaCode"]

	switch r.Method {
	case http.MethodGet:
		conversations, err := getConversations(db, code)
		if err != nil {
			log.Errorf("Failed to retrieve conversations: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to retrieve conversations")
			return
		}
		for _, c := range conversations {
			c.AIResponseHTML = string(renderMarkdown(c.AIResponse))
		}
		respondOK(w, conversations, "Conversations loaded successfully")

	case http.MethodDelete:
		deleted, err := deleteConversations(db, code)
		if err != nil {
			log.Errorf("Failed to delete conversations: %v", err)
			respondError(w, http.StatusInternalServerError, "Failed to delete conversations")
			return
		}
		respondOK(w, map[string]interface{}{
			"deletedPersonaCode": code,
			"deletedCount":       deleted,
		}, "Conversations deleted successfully")

	default:
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// feedbackHandler acknowledges feedback. Submitted ratings are recorded in
// the structured log.
func feedbackHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var fb Feedback
		if !decodeJSON(w, r, &fb) {
			return
		}
		if fb.Rating < 0 || fb.Rating > 5 {
			respondError(w, http.StatusBadRequest, "rating must be between 0 and 5")
			return
		}
		log.WithFields(logrus.Fields{
			"conversation_id": fb.ConversationID,
			"rating":          fb.Rating,
			"comment_len":     len(fb.Comment),
		}).Info("Feedback received")
	}
	respondOK(w, map[string]interface{}{
		"received":  true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, "Feedback received successfully")
}

// ------------------- Markdown API (JSON) -------------------

func renderHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Markdown string `json:"markdown"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	renderTotal.WithLabelValues(string(markdown.ContentMarkdown)).Inc()
	respondOK(w, map[string]string{"html": renderer.Render(req.Markdown)}, "Markdown rendered")
}

func extractHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HTML   string `json:"html"`
		Format string `json:"format"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	var text, format string
	switch strings.ToLower(strings.TrimSpace(req.Format)) {
	case "", "markdown", "md":
		text, format = markdown.ToMarkdown(req.HTML), "markdown"
	case "text", "plain":
		text, format = markdown.ToPlainText(req.HTML), "text"
	default:
		respondError(w, http.StatusBadRequest, "format must be markdown or text")
		return
	}
	extractTotal.WithLabelValues(format).Inc()
	respondOK(w, map[string]string{"text": text}, "Text extracted")
}

func formatHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	html, kind := markdown.Format(renderer, req.Content)
	renderTotal.WithLabelValues(string(kind)).Inc()
	respondOK(w, map[string]string{
		"contentType": string(kind),
		"html":        html,
	}, "Content formatted")
}
