package app

import (
	"net/http"
	"slices"

	"github.com/gorilla/mux"
)

func buildRouter() *mux.Router {
	r := mux.NewRouter()

	// HTML pages
	r.HandleFunc("/", serveIndex).Methods("GET")
	r.HandleFunc("/view/persona/{personaCode}", servePersonaView).Methods("GET")
	r.HandleFunc("/static/{name:[a-z]+\\.(?:css|js)}", serveStatic).Methods("GET")

	// Chat API
	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.Handle("/metrics", metricsHandler()).Methods("GET")
	r.HandleFunc("/personas", personasHandler).Methods("GET")
	r.HandleFunc("/message-async", messageAsyncHandler).Methods("POST")
	r.HandleFunc("/quick-questions", quickQuestionsHandler).Methods("GET")
	r.HandleFunc("/conversations/{personaCode}", conversationsHandler).Methods("GET", "DELETE")
	r.HandleFunc("/feedback", feedbackHandler).Methods("GET", "POST")

	// Markdown API
	r.HandleFunc("/render", renderHandler).Methods("POST")
	r.HandleFunc("/extract", extractHandler).Methods("POST")
	r.HandleFunc("/format", formatHandler).Methods("POST")

	// Admin API
	r.HandleFunc("/admin/token", adminTokenHandler).Methods("POST")
	r.HandleFunc("/admin/personas", adminPersonasHandler).Methods("GET", "POST")
	r.HandleFunc("/admin/personas/{personaCode}", adminPersonaHandler).Methods("PUT", "DELETE")
	r.HandleFunc("/admin/categories", adminCategoriesHandler).Methods("GET")
	r.HandleFunc("/admin/conversations", adminConversationsHandler).Methods("GET")

	return r
}

// withCORS lets the listed browser origins call the API, answering
// preflight requests itself.
func withCORS(next http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && slices.Contains(origins, origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			h.Add("Vary", "Origin")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
