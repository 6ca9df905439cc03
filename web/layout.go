// Package web serves the HTML page layout: metadata, security headers and the
// agent list tinted with each agent's color classes.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"colorplane/model"
	"colorplane/theme"
)

//go:embed templates
var templatesFS embed.FS

// Meta is the page-level metadata and headers applied to every page.
type Meta struct {
	Title                 string
	Description           string
	ContentSecurityPolicy string
}

// AgentLister is the read side of the agent store the layout needs.
type AgentLister interface {
	ListAgents() ([]model.Agent, error)
}

type agentView struct {
	model.Agent
	Classes theme.ClassSet
}

type pageData struct {
	Title       string
	Description string
	Agents      []agentView
}

// Layout renders the index page.
type Layout struct {
	meta   Meta
	agents AgentLister
	tmpl   *template.Template
	logger zerolog.Logger
}

// NewLayout parses the embedded page template.
func NewLayout(meta Meta, agents AgentLister, logger zerolog.Logger) (*Layout, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, err
	}
	return &Layout{
		meta:   meta,
		agents: agents,
		tmpl:   tmpl,
		logger: logger,
	}, nil
}

// Wrap sets the page security headers before delegating to next.
func (l *Layout) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.meta.ContentSecurityPolicy != "" {
			w.Header().Set("Content-Security-Policy", l.meta.ContentSecurityPolicy)
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP renders the index page.
func (l *Layout) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	agents, err := l.agents.ListAgents()
	if err != nil {
		l.logger.Error().Err(err).Msg("list agents for layout")
		http.Error(w, "failed to load agents", http.StatusInternalServerError)
		return
	}

	data := pageData{
		Title:       l.meta.Title,
		Description: l.meta.Description,
		Agents:      make([]agentView, 0, len(agents)),
	}
	for _, a := range agents {
		data.Agents = append(data.Agents, agentView{Agent: a, Classes: theme.Resolve(a.Color)})
	}

	var buf bytes.Buffer
	if err := l.tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		l.logger.Error().Err(err).Msg("render layout")
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
