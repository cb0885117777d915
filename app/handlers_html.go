package app

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
)

// ------------------- HTML Handlers -------------------

// serveIndex executes index.html, listing the personas.
func serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		renderErrorPage(w, http.StatusNotFound, "Not Found", "That page does not exist.", "/")
		return
	}

	personas, err := getAllPersonas(db)
	if err != nil {
		log.Errorf("Failed to retrieve personas: %v", err)
		renderErrorPage(w, http.StatusInternalServerError, "Personas Unavailable", "Failed to load personas. Please try again.", "/")
		return
	}

	data := IndexViewData{
		Title:       "ChatOps Assistants",
		Description: "Pick an assistant to see its welcome message and conversation history.",
		Personas:    personas,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "index.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// servePersonaView executes persona.html with the rendered welcome message
// and history of one persona.
func servePersonaView(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["personaCode"]

	persona, err := getPersona(db, code)
	if err != nil {
		if errors.Is(err, ErrPersonaNotFound) {
			renderErrorPage(w, http.StatusNotFound, "Persona Not Found", "We couldn't find that assistant.", "/")
			return
		}
		log.Errorf("Failed to load persona: %v", err)
		renderErrorPage(w, http.StatusInternalServerError, "Persona Unavailable", "Failed to load that assistant.", "/")
		return
	}

	conversations, err := getConversations(db, code)
	if err != nil {
		log.Errorf("Failed to retrieve conversations: %v", err)
		renderErrorPage(w, http.StatusInternalServerError, "History Unavailable", "Failed to load the conversation history.", "/")
		return
	}

	messages := make([]*MessageView, 0, len(conversations))
	for _, c := range conversations {
		messages = append(messages, &MessageView{
			Conversation: c,
			ResponseHTML: renderMarkdown(c.AIResponse),
		})
	}

	data := PersonaViewData{
		Persona:        persona,
		WelcomeHTML:    formatContent(persona.WelcomeMsg),
		Messages:       messages,
		QuickQuestions: seed.quickQuestions(persona.Code),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.ExecuteTemplate(w, "persona.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func renderErrorPage(w http.ResponseWriter, status int, title, message, backURL string) {
	data := ErrorViewData{
		Title:   title,
		Message: message,
		BackURL: backURL,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, "error.html", data); err != nil {
		log.Errorf("Failed to render error page: %v", err)
	}
}
