package e2e

import (
	"bytes"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	stdout, stderr, err := runCLI(t, binaryPath, home, "version")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Equal(t, "dev", strings.TrimSpace(stdout))

	addr := freeLoopbackAddr(t)
	daemon := startDaemon(t, binaryPath, home, addr)
	baseURL := "http://" + addr
	waitForHealthz(t, baseURL)

	// No peer attached yet: calls must fail fast with 503.
	resp, err := http.Post(baseURL+"/api/message", "application/json",
		strings.NewReader(`{"text":"anyone home?"}`))
	require.NoError(t, err)
	body := readAll(t, resp)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, "no_peer_available")

	// Attach a peer and drive one call end to end through the binary.
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+addr+"/ws", nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	var greeting wireFrame
	require.NoError(t, conn.ReadJSON(&greeting))
	assert.Equal(t, "CONNECTION_ESTABLISHED", greeting.Type)
	assert.NotEmpty(t, greeting.PeerID)

	type postResult struct {
		status int
		body   string
		err    error
	}
	results := make(chan postResult, 1)
	go func() {
		resp, err := http.Post(baseURL+"/api/message", "application/json",
			strings.NewReader(`{"text":"hello tab","conversationId":"conv-e2e"}`))
		if err != nil {
			results <- postResult{err: err}
			return
		}
		defer func() { _ = resp.Body.Close() }()
		var buf bytes.Buffer
		_, err = buf.ReadFrom(resp.Body)
		results <- postResult{status: resp.StatusCode, body: buf.String(), err: err}
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var call wireFrame
	require.NoError(t, conn.ReadJSON(&call))
	require.Equal(t, "CLIENT_MESSAGE", call.Type)
	assert.Equal(t, "hello tab", call.Message)
	assert.Equal(t, "conv-e2e", call.ConversationID)
	require.NotEmpty(t, call.RequestID)

	require.NoError(t, conn.WriteJSON(wireFrame{
		Type:      "AI_RESPONSE",
		RequestID: call.RequestID,
		Response:  "hello caller",
	}))

	select {
	case res := <-results:
		require.NoError(t, res.err)
		assert.Equal(t, http.StatusOK, res.status)
		assert.Contains(t, res.body, "hello caller")
		assert.Contains(t, res.body, "conv-e2e")
	case <-time.After(5 * time.Second):
		t.Fatal("call did not complete")
	}

	status := getJSON(t, baseURL+"/api/status")
	assert.Contains(t, status, "\"version\":\"dev\"")
	assert.Contains(t, status, greeting.PeerID)

	conversations := getJSON(t, baseURL+"/api/conversations")
	assert.Contains(t, conversations, "conv-e2e")

	require.NoError(t, daemon.Process.Signal(syscall.SIGTERM))
	waitForExit(t, daemon)
}

type wireFrame struct {
	Type           string `json:"type"`
	PeerID         string `json:"peerId,omitempty"`
	RequestID      string `json:"requestId,omitempty"`
	ConversationID string `json:"conversationId,omitempty"`
	Message        string `json:"message,omitempty"`
	Response       string `json:"response,omitempty"`
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "tabbridge-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/tabbridge")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build tabbridge binary: %s", string(output))
	return binaryPath
}

func runCLI(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+home)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func startDaemon(t *testing.T, binaryPath, home, addr string) *exec.Cmd {
	t.Helper()

	cmd := exec.Command(binaryPath, "serve", "--listen", addr)
	cmd.Env = append(os.Environ(), "HOME="+home)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	require.NoError(t, cmd.Start())

	t.Cleanup(func() {
		if cmd.ProcessState == nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		}
	})

	return cmd
}

func freeLoopbackAddr(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())
	return addr
}

func waitForHealthz(t *testing.T, baseURL string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("hub did not become healthy")
}

func waitForExit(t *testing.T, cmd *exec.Cmd) {
	t.Helper()

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		_ = cmd.Process.Kill()
		t.Fatal("hub did not shut down after SIGTERM")
	}
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()

	defer func() { _ = resp.Body.Close() }()
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return buf.String()
}

func getJSON(t *testing.T, url string) string {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	body := readAll(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode, "body: %s", body)
	require.True(t, json.Valid([]byte(body)), "body: %s", body)
	return body
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
