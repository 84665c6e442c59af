package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	httpapi "github.com/prismtv/prism/internal/auth/http"
	"github.com/prismtv/prism/internal/auth/service"
	"github.com/prismtv/prism/internal/auth/session"
	"github.com/prismtv/prism/internal/auth/store/drivers/sqlite"
	"github.com/prismtv/prism/pkg/slogx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * End-to-end tests for the auth service. A real Redis container backs the
 * session store; the HTTP stack runs in-process against a throwaway SQLite
 * database. Tests skip when Docker is not available.
 */

const testJWTSecret = "e2e-test-secret-0123456789abcdef0123456789"

// setupRedisContainer starts a Redis container and returns its address.
func setupRedisContainer(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skipping e2e test, could not start redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, port.Port())
}

// setupAuthServer wires the full stack and returns its base URL.
func setupAuthServer(t *testing.T, redisAddr string) string {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	client := goredis.NewClient(&goredis.Options{Addr: redisAddr})
	t.Cleanup(func() { _ = client.Close() })

	sessions, err := session.NewRedisStore(ctx, client)
	require.NoError(t, err)

	tokens := service.NewTokenService([]byte(testJWTSecret), 15*time.Minute, 6*time.Hour)
	svc := service.NewAuthService(st, sessions, tokens)

	router := httpapi.NewRouter(svc, st, sessions, "e2e", slogx.New(slogx.Config{Level: "error", Format: "text"}))
	router.ApplyRoutes()

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server.URL
}

type authResponse struct {
	User struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
	SessionID string `json:"session_id"`
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
}

func postJSON(t *testing.T, url string, body any, headers map[string]string) *http.Response {
	t.Helper()
	return request(t, http.MethodPost, url, body, headers)
}

func request(t *testing.T, method, url string, body any, headers map[string]string) *http.Response {
	t.Helper()

	var req *http.Request
	var err error
	if body != nil {
		payload, merr := json.Marshal(body)
		require.NoError(t, merr)
		req, err = http.NewRequestWithContext(t.Context(), method, url, bytes.NewReader(payload))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, err = http.NewRequestWithContext(t.Context(), method, url, nil)
		require.NoError(t, err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
