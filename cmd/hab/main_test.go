package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	addPersistentFlags()
	registerCommands()
	os.Exit(m.Run())
}

type fakeHabitica struct {
	mu     sync.Mutex
	todos  []map[string]any
	moves  []string
	status string
}

func (f *fakeHabitica) router() chi.Router {
	r := chi.NewRouter()
	r.Get("/api/v3/tasks/user", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		writeData(w, f.todos)
	})
	r.Post("/api/v3/tasks/{id}/move/to/{pos}", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.moves = append(f.moves, chi.URLParam(req, "id")+"@"+chi.URLParam(req, "pos"))
		writeData(w, []string{})
	})
	r.Get("/api/v3/status", func(w http.ResponseWriter, req *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.status == "" {
			http.Error(w, `{"success":false,"message":"unavailable"}`, http.StatusServiceUnavailable)
			return
		}
		writeData(w, map[string]string{"status": f.status})
	})
	return r
}

func writeData(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
}

func setupWorkspace(t *testing.T, f *fakeHabitica) string {
	t.Helper()
	srv := httptest.NewServer(f.router())
	t.Cleanup(srv.Close)
	dir := t.TempDir()
	auth := "[Habitica]\nurl = " + srv.URL + "\nlogin = 0b3f2a4e-6d8c-4f5a-9a3b-2c1d4e5f6a7b\npassword = k\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "auth.cfg"), []byte(auth), 0o600))
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	defer func() { stdout = prev }()
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func sampleTodos() []map[string]any {
	return []map[string]any{
		{"id": "a", "text": "alpha", "notes": ""},
		{"id": "b", "text": "beta", "notes": "", "completed": true},
		{"id": "c", "text": "gamma", "notes": "g"},
	}
}

func TestTodosList(t *testing.T) {
	f := &fakeHabitica{todos: sampleTodos()}
	dir := setupWorkspace(t, f)

	out, err := run(t, "--workspace", dir, "--json=false", "todos")
	require.NoError(t, err)
	assert.Equal(t, "[ ] 1 alpha <>\n[ ] 2 gamma <g>\n", out)
}

func TestTodosTopMovesInOrder(t *testing.T) {
	f := &fakeHabitica{todos: sampleTodos()}
	dir := setupWorkspace(t, f)

	out, err := run(t, "--workspace", dir, "--json=false", "todos", "top", "2", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c@0", "a@0"}, f.moves)
	assert.Contains(t, out, "moving gamma to top")
}

func TestTodosMoveToPosition(t *testing.T) {
	f := &fakeHabitica{todos: sampleTodos()}
	dir := setupWorkspace(t, f)

	_, err := run(t, "--workspace", dir, "--json=false", "todos", "2", "to", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"c@0"}, f.moves)
}

func TestTodosOutOfRange(t *testing.T) {
	f := &fakeHabitica{todos: sampleTodos()}
	dir := setupWorkspace(t, f)

	_, err := run(t, "--workspace", dir, "--json=false", "todos", "top", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such task")
	assert.Empty(t, f.moves)
}

func TestTodosJSON(t *testing.T) {
	f := &fakeHabitica{todos: sampleTodos()}
	dir := setupWorkspace(t, f)

	out, err := run(t, "--workspace", dir, "--json", "todos")
	require.NoError(t, err)
	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "gamma", got[1]["text"])
}

func TestMoveToArgs(t *testing.T) {
	cmd := todosCmd()
	assert.NoError(t, moveToArgs(cmd, nil))
	assert.NoError(t, moveToArgs(cmd, []string{"3", "to", "1"}))
	assert.Error(t, moveToArgs(cmd, []string{"3"}))
	assert.Error(t, moveToArgs(cmd, []string{"3", "at", "1"}))
}

func TestServer(t *testing.T) {
	f := &fakeHabitica{status: "up"}
	dir := setupWorkspace(t, f)
	out, err := run(t, "--workspace", dir, "--json=false", "server")
	require.NoError(t, err)
	assert.Equal(t, "Habitica server is up\n", out)

	f.status = "down"
	out, err = run(t, "--workspace", dir, "--json=false", "server")
	require.NoError(t, err)
	assert.Equal(t, "Habitica server down\n", out)
}

func TestServerUnreachableReportsOnce(t *testing.T) {
	f := &fakeHabitica{}
	dir := setupWorkspace(t, f)
	out, err := run(t, "--workspace", dir, "--json=false", "server")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot reach Habitica server")
	assert.Empty(t, out)
}
