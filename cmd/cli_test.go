package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/bnema/tabbridge/internal/adapters/httpapi"
	"github.com/bnema/tabbridge/internal/adapters/memstore"
	"github.com/bnema/tabbridge/internal/application"
	"github.com/bnema/tabbridge/internal/domain"
	"github.com/bnema/tabbridge/internal/version"
)

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, version.Version, strings.TrimSpace(stdout))
}

func TestStatusRendersHubSnapshot(t *testing.T) {
	_, addr := startHubAPI(t)

	stdout, _, err := executeCLI(t, t.TempDir(), "status", "--addr", addr)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Tabbridge Hub")
	assert.Contains(t, stdout, "version: 9.9.9")
	assert.Contains(t, stdout, "No peers attached")
}

func TestStatusJSONOutput(t *testing.T) {
	_, addr := startHubAPI(t)

	stdout, _, err := executeCLI(t, t.TempDir(), "status", "--addr", addr, "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, "\"version\": \"9.9.9\"")
	assert.Contains(t, stdout, "\"pendingCalls\": 0")
}

func TestStatusShowsQueryingSpinnerMessage(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(httpapi.StatusResponse{Version: "9.9.9"})
	}))
	defer slow.Close()

	_, stderr, err := executeCLI(t, t.TempDir(), "status", "--addr", strings.TrimPrefix(slow.URL, "http://"))
	require.NoError(t, err)
	assert.Contains(t, stderr, "Querying hub status")
}

func TestStatusHubUnreachable(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := strings.TrimPrefix(dead.URL, "http://")
	dead.Close()

	_, _, err := executeCLI(t, t.TempDir(), "status", "--addr", addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reach hub")
}

func TestConversationsListEmpty(t *testing.T) {
	_, addr := startHubAPI(t)

	stdout, _, err := executeCLI(t, t.TempDir(), "conversations", "list", "--addr", addr)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No conversations recorded.")
}

func TestConversationsListShowsRecorded(t *testing.T) {
	store, addr := startHubAPI(t)
	seedConversation(t, store, "conv-1")

	stdout, _, err := executeCLI(t, t.TempDir(), "conversations", "list", "--addr", addr)
	require.NoError(t, err)
	assert.Contains(t, stdout, "LAST ACTIVITY")
	assert.Contains(t, stdout, "conv-1")
	assert.Contains(t, stdout, "peer-1")
}

func TestConversationsShowPrintsExchanges(t *testing.T) {
	store, addr := startHubAPI(t)
	seedConversation(t, store, "conv-1")

	stdout, _, err := executeCLI(t, t.TempDir(), "conversations", "show", "conv-1", "--addr", addr)
	require.NoError(t, err)
	assert.Contains(t, stdout, "conversation conv-1 (peer peer-1")
	assert.Contains(t, stdout, ">> hello there")
	assert.Contains(t, stdout, "<< hi yourself")
}

func TestConversationsShowJSONOutput(t *testing.T) {
	store, addr := startHubAPI(t)
	seedConversation(t, store, "conv-1")

	stdout, _, err := executeCLI(t, t.TempDir(), "conversations", "show", "conv-1", "--addr", addr, "--json")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
	assert.Contains(t, stdout, "\"id\": \"conv-1\"")
}

func TestConversationsShowUnknownID(t *testing.T) {
	_, addr := startHubAPI(t)

	_, _, err := executeCLI(t, t.TempDir(), "conversations", "show", "nope", "--addr", addr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestConfigInitWritesDefaultFile(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Wrote")

	path := filepath.Join(home, ".config", "tabbridge", "config.toml")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version = 1")

	_, _, err = executeCLI(t, home, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = executeCLI(t, home, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigPathPrintsLocation(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "tabbridge", "config.toml"), strings.TrimSpace(stdout))
}

func TestServeRejectsUnknownFlag(t *testing.T) {
	_, _, err := executeCLI(t, t.TempDir(), "serve", "--port", "1234")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag: --port")
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func startHubAPI(t *testing.T) (*memstore.Store, string) {
	t.Helper()

	logger := zaptest.NewLogger(t)
	store := memstore.New(nil)
	hub := application.NewHub(application.HubConfig{Store: store, Logger: logger})
	t.Cleanup(hub.Close)

	api := httpapi.NewServer(hub, store, nil, logger, httpapi.Config{
		Model:   "tabbridge-test",
		Version: "9.9.9",
	})
	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)

	return store, strings.TrimPrefix(srv.URL, "http://")
}

func seedConversation(t *testing.T, store *memstore.Store, id string) {
	t.Helper()

	err := store.Append(context.Background(), id, domain.PeerID("peer-1"), domain.Exchange{
		Request:     "hello there",
		Reply:       "hi yourself",
		CompletedAt: time.Now(),
	})
	require.NoError(t, err)
}
