package app

import (
	"io/fs"
	"net/http"
	"path"

	"github.com/gorilla/mux"
)

var staticTypes = map[string]string{
	".css": "text/css; charset=utf-8",
	".js":  "text/javascript; charset=utf-8",
}

// serveStatic serves the page assets: the stylesheet for the renderer's
// markdown-* classes and the copy-button script.
func serveStatic(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	contentType, ok := staticTypes[path.Ext(name)]
	if !ok || assetsFS == nil {
		http.NotFound(w, r)
		return
	}
	body, err := fs.ReadFile(assetsFS, "static/"+name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
