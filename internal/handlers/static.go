package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// handleStatic serves the bundled client assets for any non-API path. The
// lobby core treats the client as an external collaborator; this fallback
// only exists so a LAN host can serve the game from one process.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}
	if s.staticDir == "" {
		http.NotFound(w, r)
		return
	}

	// path.Clean on a rooted path cannot escape the static root.
	clean := path.Clean("/" + r.URL.Path)
	if clean == "/" {
		clean = "/index.html"
	}
	abs := filepath.Join(s.staticDir, filepath.FromSlash(clean))

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
