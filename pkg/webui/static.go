package webui

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// spaHandler serves files from dir and falls back to index.html so the
// client-side router can resolve unknown paths
type spaHandler struct {
	dir        string
	fileServer http.Handler
}

func newSPAHandler(dir string) http.Handler {
	return &spaHandler{
		dir:        dir,
		fileServer: http.FileServer(http.Dir(dir)),
	}
}

func (h *spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clean := path.Clean("/" + r.URL.Path)
	if clean != "/" && !strings.HasSuffix(clean, "/") {
		info, err := os.Stat(filepath.Join(h.dir, filepath.FromSlash(clean)))
		if err == nil && !info.IsDir() {
			h.fileServer.ServeHTTP(w, r)
			return
		}
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	http.ServeFile(w, r, filepath.Join(h.dir, "index.html"))
}
