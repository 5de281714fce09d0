package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/biolog/internal/assistant"
	"github.com/terraincognita07/biolog/internal/db"
	"github.com/terraincognita07/biolog/internal/models"
	"github.com/terraincognita07/biolog/internal/services"
	"gorm.io/gorm"
)

const testJWTSecret = "test-secret-key"

// rawJSON is sent verbatim, including malformed documents.
type rawJSON string

type askerStub struct {
	mu       sync.Mutex
	requests []assistant.TurnRequest
	result   assistant.TurnResult
	err      error
}

func (stub *askerStub) Ask(_ context.Context, request assistant.TurnRequest) (assistant.TurnResult, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.requests = append(stub.requests, request)
	if strings.TrimSpace(request.Message) == "" {
		return assistant.TurnResult{}, assistant.ErrMessageRequired
	}
	if stub.err != nil {
		return assistant.TurnResult{}, stub.err
	}
	return stub.result, nil
}

func (stub *askerStub) lastRequest(t *testing.T) assistant.TurnRequest {
	t.Helper()
	stub.mu.Lock()
	defer stub.mu.Unlock()
	if len(stub.requests) == 0 {
		t.Fatal("expected assistant to be called")
	}
	return stub.requests[len(stub.requests)-1]
}

type communityStub struct {
	mu       sync.Mutex
	signals  map[string]models.CommunitySignal
	err      error
	keywords []string
}

func (stub *communityStub) Lookup(_ context.Context, keyword string) (models.CommunitySignal, error) {
	stub.mu.Lock()
	defer stub.mu.Unlock()
	stub.keywords = append(stub.keywords, keyword)
	if stub.err != nil {
		return models.CommunitySignal{}, stub.err
	}
	return stub.signals[keyword], nil
}

type testEnv struct {
	database  *gorm.DB
	logs      *services.LogService
	asker     *askerStub
	community *communityStub
}

type testAppOptions struct {
	askRateLimit int
}

func newTestApp(t *testing.T, options testAppOptions) (*fiber.App, *testEnv) {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "biolog-api-test.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close(database)
	})

	repositories := db.NewRepositories(database)
	env := &testEnv{
		database:  database,
		logs:      services.NewLogService(repositories.SymptomLogs, services.NewOwnerLocks(), nil),
		asker:     &askerStub{result: assistant.TurnResult{Response: "Noted.", ToolResults: []assistant.ToolInvocationResult{}}},
		community: &communityStub{signals: map[string]models.CommunitySignal{}},
	}

	handler, err := NewHandler(Dependencies{
		Database:      database,
		Logs:          env.logs,
		Assistant:     env.asker,
		Community:     env.community,
		Location:      time.UTC,
		JWTSecret:     testJWTSecret,
		AskRateLimit:  options.askRateLimit,
		AskRateWindow: time.Minute,
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app, env
}

func sendJSON(t *testing.T, app *fiber.App, method string, path string, payload any, headers map[string]string) *http.Response {
	t.Helper()

	var body io.Reader
	switch typed := payload.(type) {
	case nil:
	case rawJSON:
		body = strings.NewReader(string(typed))
	default:
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("encode payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		request.Header.Set(key, value)
	}

	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func expectStatus(t *testing.T, response *http.Response, expected int) {
	t.Helper()
	if response.StatusCode != expected {
		body, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", expected, response.StatusCode, body)
	}
}

func decodeResponse[T any](t *testing.T, response *http.Response) T {
	t.Helper()

	var payload T
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return payload
}

func readAPIError(t *testing.T, body io.Reader) string {
	t.Helper()

	payload := map[string]any{}
	bytes, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(bytes, &payload); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	if payload["success"] != false {
		t.Fatalf("expected success=false in error payload: %s", bytes)
	}
	message, _ := payload["error"].(string)
	return message
}

func signedOwnerToken(t *testing.T, subject string, expiresIn time.Duration) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
