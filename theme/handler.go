package theme

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler serves the color class endpoints.
type Handler struct {
	logger zerolog.Logger
}

// NewHandler creates a new theme handler.
func NewHandler(logger zerolog.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

// Register attaches the color endpoints to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/colors", h.HandleColors)
	mux.HandleFunc("/api/colors/map", h.HandleColorMap)
	mux.HandleFunc("/api/colors/classes", h.HandleClasses)
}

// HandleColors returns the resolved classes for every recognized color.
func (h *Handler) HandleColors(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	h.writeJSON(w, Swatches())
}

// HandleColorMap returns the color to border class table.
func (h *Handler) HandleColorMap(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	h.writeJSON(w, ColorMap())
}

// HandleClasses resolves the classes for the color query parameter.
// Unknown colors resolve to the fallback classes rather than an error.
func (h *Handler) HandleClasses(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	color := r.URL.Query().Get("color")
	if color == "" {
		http.Error(w, "color parameter required", http.StatusBadRequest)
		return
	}
	h.writeJSON(w, Resolve(color))
}

func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	w.WriteHeader(http.StatusMethodNotAllowed)
	return false
}

func (h *Handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("encode colors response")
	}
}
