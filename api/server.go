package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"colorplane/model"
	"colorplane/storage"
	"colorplane/theme"
)

// agentStyled is an agent together with the classes its color resolves to.
type agentStyled struct {
	model.Agent
	Classes theme.ClassSet `json:"classes"`
}

func styled(a model.Agent) *agentStyled {
	return &agentStyled{Agent: a, Classes: theme.Resolve(a.Color)}
}

// agentInput is the writable subset of an agent accepted by POST and PUT.
type agentInput struct {
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Persona string `json:"persona"`
}

type Server struct {
	store    *storage.Store
	ws       *WSConnectionManager
	upgrader websocket.Upgrader
	logger   zerolog.Logger
	now      func() time.Time
}

func NewServer(store *storage.Store, logger zerolog.Logger) *Server {
	return &Server{
		store: store,
		ws:    NewWSConnectionManager(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger,
		now:    time.Now,
	}
}

func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/agents", s.handleAgents)
	mux.HandleFunc("/api/agents/", s.handleAgentByID)
	mux.HandleFunc("/api/ws", s.handleWS)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	s.writeJSON(w, http.StatusOK, resp)
}

// ---------- agents API ----------

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		agents, err := s.store.ListAgents()
		if err != nil {
			s.logger.Error().Err(err).Msg("list agents")
			http.Error(w, "failed to load agents", http.StatusInternalServerError)
			return
		}
		out := make([]*agentStyled, 0, len(agents))
		for _, a := range agents {
			out = append(out, styled(a))
		}
		s.writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var in agentInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if in.Slug == "" {
			in.Slug = model.Slugify(in.Name)
		}

		now := s.now().UTC()
		a := model.Agent{
			ID:        uuid.NewString(),
			Slug:      in.Slug,
			Name:      in.Name,
			Color:     in.Color,
			Persona:   in.Persona,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := a.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if taken, err := s.slugTaken(a.Slug, ""); err != nil {
			s.logger.Error().Err(err).Msg("check slug")
			http.Error(w, "failed to save agent", http.StatusInternalServerError)
			return
		} else if taken {
			http.Error(w, "slug already in use", http.StatusConflict)
			return
		}

		if err := s.store.SaveAgent(&a); err != nil {
			s.logger.Error().Err(err).Str("agent_id", a.ID).Msg("save agent")
			http.Error(w, "failed to save agent", http.StatusInternalServerError)
			return
		}
		s.logger.Info().Str("agent_id", a.ID).Str("color", a.Color).Msg("agent created")

		body := styled(a)
		s.ws.Broadcast(Event{Type: EventAgentUpdated, AgentID: a.ID, Agent: body})
		s.writeJSON(w, http.StatusCreated, body)

	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleAgentByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/agents/")
	if id == "" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		a, err := s.store.GetAgent(id)
		if err != nil {
			s.storeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, styled(*a))

	case http.MethodPut:
		var in agentInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := s.store.GetAgent(id)
		if err != nil {
			s.storeError(w, r, err)
			return
		}
		if in.Slug != "" {
			a.Slug = in.Slug
		}
		if in.Name != "" {
			a.Name = in.Name
		}
		a.Color = in.Color
		a.Persona = in.Persona
		a.UpdatedAt = s.now().UTC()

		if err := a.Validate(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if taken, err := s.slugTaken(a.Slug, a.ID); err != nil {
			s.logger.Error().Err(err).Msg("check slug")
			http.Error(w, "failed to save agent", http.StatusInternalServerError)
			return
		} else if taken {
			http.Error(w, "slug already in use", http.StatusConflict)
			return
		}

		if err := s.store.SaveAgent(a); err != nil {
			s.logger.Error().Err(err).Str("agent_id", id).Msg("save agent")
			http.Error(w, "failed to save agent", http.StatusInternalServerError)
			return
		}
		s.logger.Info().Str("agent_id", id).Str("color", a.Color).Msg("agent updated")

		body := styled(*a)
		s.ws.Broadcast(Event{Type: EventAgentUpdated, AgentID: id, Agent: body})
		s.writeJSON(w, http.StatusOK, body)

	case http.MethodDelete:
		if err := s.store.DeleteAgent(id); err != nil {
			s.storeError(w, r, err)
			return
		}
		s.logger.Info().Str("agent_id", id).Msg("agent deleted")
		s.ws.Broadcast(Event{Type: EventAgentDeleted, AgentID: id})
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodPut+", "+http.MethodDelete)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) slugTaken(slug, exceptID string) (bool, error) {
	agents, err := s.store.ListAgents()
	if err != nil {
		return false, err
	}
	for _, a := range agents {
		if a.Slug == slug && a.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("agent store")
	http.Error(w, "agent store failure", http.StatusInternalServerError)
}

// ---------- websocket ----------

// handleWS upgrades the connection and keeps it registered until the client
// goes away. Incoming messages are read and discarded.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	s.ws.Add(conn)
	s.logger.Debug().Int("clients", s.ws.Len()).Msg("websocket client connected")

	defer func() {
		s.ws.Remove(conn)
		conn.Close()
		s.logger.Debug().Int("clients", s.ws.Len()).Msg("websocket client disconnected")
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error().Err(err).Msg("writeJSON")
	}
}
