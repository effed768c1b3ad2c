package handlers

import (
	"net/http"
	"os"
	"path/filepath"
)

// StaticHandler serves the card front end from a directory. Paths that do
// not resolve to a file fall back to index.html, so client-side routes and
// the root document both work.
type StaticHandler struct {
	staticPath string
	indexPath  string
	fileServer http.Handler
}

func NewStaticHandler(staticPath string) *StaticHandler {
	return &StaticHandler{
		staticPath: staticPath,
		indexPath:  filepath.Join(staticPath, "index.html"),
		fileServer: http.FileServer(http.Dir(staticPath)),
	}
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(h.staticPath, filepath.Clean(r.URL.Path))

	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		http.ServeFile(w, r, h.indexPath)
		return
	} else if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.fileServer.ServeHTTP(w, r)
}
