package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"colorplane/model"
)

func TestSaveAndGetAgent(t *testing.T) {
	store := New(t.TempDir())
	require.NoError(t, store.EnsureDirs())

	now := time.Now().UTC().Truncate(time.Second)
	agent := &model.Agent{
		ID:        "a1",
		Slug:      "sage",
		Name:      "Sage",
		Color:     "teal",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, store.SaveAgent(agent))

	got, err := store.GetAgent("a1")
	require.NoError(t, err)
	require.Equal(t, agent.Slug, got.Slug)
	require.Equal(t, agent.Name, got.Name)
	require.Equal(t, agent.Color, got.Color)
	require.True(t, agent.CreatedAt.Equal(got.CreatedAt))

	agent.Color = "rose"
	require.NoError(t, store.SaveAgent(agent))
	got, err = store.GetAgent("a1")
	require.NoError(t, err)
	require.Equal(t, "rose", got.Color)
}

func TestGetAgentNotFound(t *testing.T) {
	store := New(t.TempDir())

	_, err := store.GetAgent("missing")
	require.True(t, errors.Is(err, ErrNotFound))

	_, err = store.GetAgent("../escape")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteAgent(t *testing.T) {
	store := New(t.TempDir())
	require.NoError(t, store.SaveAgent(&model.Agent{ID: "a1", Slug: "sage", Name: "Sage"}))

	require.NoError(t, store.DeleteAgent("a1"))
	require.True(t, errors.Is(store.DeleteAgent("a1"), ErrNotFound))

	_, err := store.GetAgent("a1")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestListAgents(t *testing.T) {
	dir := t.TempDir()
	store := New(dir)

	agents, err := store.ListAgents()
	require.NoError(t, err)
	require.Empty(t, agents)

	require.NoError(t, store.SaveAgent(&model.Agent{ID: "2", Slug: "zed", Name: "Zed"}))
	require.NoError(t, store.SaveAgent(&model.Agent{ID: "1", Slug: "ada", Name: "Ada"}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agents", "notes.txt"), []byte("x"), 0o644))

	agents, err = store.ListAgents()
	require.NoError(t, err)
	require.Len(t, agents, 2)
	require.Equal(t, "ada", agents[0].Slug)
	require.Equal(t, "zed", agents[1].Slug)
}

func TestSaveAgentRejectsBadID(t *testing.T) {
	store := New(t.TempDir())
	require.Error(t, store.SaveAgent(&model.Agent{ID: "", Slug: "x", Name: "X"}))
	require.Error(t, store.SaveAgent(&model.Agent{ID: "a/b", Slug: "x", Name: "X"}))
	require.Error(t, store.SaveAgent(nil))
}
