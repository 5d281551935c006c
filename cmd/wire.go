package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bnema/tabbridge/internal/adapters/config"
	"github.com/bnema/tabbridge/internal/adapters/httpapi"
	statusadapter "github.com/bnema/tabbridge/internal/adapters/render/status"
)

type app struct {
	settings       config.Settings
	statusRenderer func(httpapi.StatusResponse) (string, error)
	httpClient     *http.Client
	now            func() time.Time
}

func wireApp() (*app, error) {
	settings, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	return &app{
		settings:       settings,
		statusRenderer: statusadapter.Render,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
		now:            time.Now,
	}, nil
}

// baseURL turns a listen address into a client-reachable URL. Wildcard
// hosts fall back to loopback.
func (a *app) baseURL(addrOverride string) string {
	addr := a.settings.Listen
	if addrOverride != "" {
		addr = addrOverride
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}

	return "http://" + net.JoinHostPort(host, port)
}

func (a *app) getJSON(ctx context.Context, addrOverride, path string, dst any) error {
	url := a.baseURL(addrOverride) + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reach hub at %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("hub returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode hub response: %w", err)
	}

	return nil
}
