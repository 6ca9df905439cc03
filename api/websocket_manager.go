package api

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Event is a message pushed to every connected websocket client.
type Event struct {
	Type    string       `json:"type"`
	AgentID string       `json:"agent_id"`
	Agent   *agentStyled `json:"agent,omitempty"`
}

const (
	EventAgentUpdated = "agent_updated"
	EventAgentDeleted = "agent_deleted"
)

// connWithMutex wraps a WebSocket connection with its own mutex for thread-safe writes.
type connWithMutex struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// WSConnectionManager tracks websocket clients and fans events out to them.
type WSConnectionManager struct {
	mu          sync.RWMutex
	connections map[*websocket.Conn]*connWithMutex
}

// NewWSConnectionManager creates a new WebSocket connection manager.
func NewWSConnectionManager() *WSConnectionManager {
	return &WSConnectionManager{
		connections: make(map[*websocket.Conn]*connWithMutex),
	}
}

// Add adds a connection to the manager.
func (m *WSConnectionManager) Add(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[conn] = &connWithMutex{
		conn: conn,
	}
}

// Remove removes a connection from the manager.
func (m *WSConnectionManager) Remove(conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connections, conn)
}

// Len returns the number of tracked connections.
func (m *WSConnectionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// Broadcast sends an event to all connected clients. Clients that fail the
// write are dropped.
func (m *WSConnectionManager) Broadcast(event Event) {
	m.mu.RLock()
	conns := make([]*connWithMutex, 0, len(m.connections))
	for _, cwm := range m.connections {
		conns = append(conns, cwm)
	}
	m.mu.RUnlock()

	for _, cwm := range conns {
		cwm.mu.Lock()
		err := cwm.conn.WriteJSON(event)
		cwm.mu.Unlock()

		if err != nil {
			m.Remove(cwm.conn)
			cwm.conn.Close()
		}
	}
}
