package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/biolog/internal/config"
	"github.com/terraincognita07/biolog/internal/db"
	"github.com/terraincognita07/biolog/internal/llm"
	"github.com/terraincognita07/biolog/internal/models"
	"go.uber.org/zap"
)

type replyModel struct {
	reply string
}

func (model replyModel) Complete(context.Context, []llm.Message, []llm.Tool) (llm.Response, error) {
	return llm.Response{Content: model.reply}, nil
}

type quietSource struct{}

func (quietSource) Lookup(context.Context, string) (models.CommunitySignal, error) {
	return models.CommunitySignal{}, nil
}

func TestResolvePort(t *testing.T) {
	port, err := resolvePort("")
	if err != nil {
		t.Fatalf("expected default port, got error: %v", err)
	}
	if port != "8080" {
		t.Fatalf("expected default port 8080, got %q", port)
	}

	port, err = resolvePort(" 9090 ")
	if err != nil {
		t.Fatalf("expected valid port, got error: %v", err)
	}
	if port != "9090" {
		t.Fatalf("expected port 9090, got %q", port)
	}

	for _, invalid := range []string{"0", "70000", "not-a-number"} {
		if _, err := resolvePort(invalid); err == nil {
			t.Fatalf("expected invalid port %q to fail", invalid)
		}
	}
}

func TestNewServerServesHealthAndAsk(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{"COMMUNITY_WARM_SCHEDULE": "@every 1h"})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "biolog-main-test.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close(database)
	})

	server, err := newServer(cfg, database, replyModel{reply: "Hello!"}, quietSource{}, time.UTC, zap.NewNop())
	if err != nil {
		t.Fatalf("newServer() unexpected error: %v", err)
	}
	if server.warmer == nil {
		t.Fatal("expected warmer to be configured")
	}

	health, err := server.app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Fatalf("expected health 200, got %d", health.StatusCode)
	}

	request := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"message":"hi","localUserId":"local-1"}`))
	request.Header.Set("Content-Type", "application/json")
	response, err := server.app.Test(request, -1)
	if err != nil {
		t.Fatalf("POST /api/ask failed: %v", err)
	}
	defer response.Body.Close()

	payload := map[string]any{}
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["success"] != true || payload["response"] != "Hello!" {
		t.Fatalf("unexpected ask payload: %#v", payload)
	}
}

func TestNewServerWithoutWarmSchedule(t *testing.T) {
	cfg, err := config.LoadFrom(map[string]string{"COMMUNITY_WARM_SCHEDULE": ""})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "biolog-main-test.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close(database)
	})

	server, err := newServer(cfg, database, replyModel{}, quietSource{}, time.UTC, zap.NewNop())
	if err != nil {
		t.Fatalf("newServer() unexpected error: %v", err)
	}
	if server.warmer != nil {
		t.Fatal("expected empty schedule to disable the warmer")
	}
}

func TestSeedAndPurgeCommands(t *testing.T) {
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "biolog-cli.db"))
	t.Setenv("TZ", "UTC")
	t.Setenv("LOG_LEVEL", "error")

	var output bytes.Buffer
	root := newRootCommand()
	root.SetOut(&output)
	root.SetArgs([]string{"seed", "--owner", "demo-owner", "--clean"})
	if err := root.Execute(); err != nil {
		t.Fatalf("seed command failed: %v", err)
	}
	if !strings.Contains(output.String(), "Seeded 6 logs for demo-owner") {
		t.Fatalf("unexpected seed output: %s", output.String())
	}

	output.Reset()
	root = newRootCommand()
	root.SetOut(&output)
	root.SetArgs([]string{"purge", "--owner", "demo-owner"})
	if err := root.Execute(); err != nil {
		t.Fatalf("purge command failed: %v", err)
	}
	if !strings.Contains(output.String(), "Deleted 6 logs for demo-owner") {
		t.Fatalf("unexpected purge output: %s", output.String())
	}
}

func TestServeRequiresAPIKey(t *testing.T) {
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "biolog-serve.db"))
	t.Setenv("TZ", "UTC")
	t.Setenv("OPENROUTER_API_KEY", "")

	root := newRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"serve"})
	if err := root.Execute(); err == nil || !strings.Contains(err.Error(), "OPENROUTER_API_KEY") {
		t.Fatalf("expected missing api key error, got %v", err)
	}
}
