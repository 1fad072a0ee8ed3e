package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/datasaur/datasaur-mcp/internal/config"
	"github.com/datasaur/datasaur-mcp/internal/logger"
	"github.com/datasaur/datasaur-mcp/internal/relay"
	"github.com/datasaur/datasaur-mcp/internal/storage"
	"github.com/datasaur/datasaur-mcp/internal/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func newTestServer(t *testing.T, settings map[string]any) (*Server, *logger.LogBuffer) {
	t.Helper()
	v := viper.New()
	v.Set("http.mode", "test")
	for k, val := range settings {
		v.Set(k, val)
	}
	cfg, err := config.Load(v)
	require.NoError(t, err)

	buffer := logger.NewLogBuffer(10)
	svc := tools.NewService(relay.New(zap.NewNop()), cfg, zap.NewNop())
	srv, err := New(cfg, zap.NewNop(), svc, buffer, "test")
	require.NoError(t, err)
	return srv, buffer
}

func TestNew_RequiresConfigAndService(t *testing.T) {
	_, err := New(nil, nil, nil, nil, "")
	assert.Error(t, err)

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)
	_, err = New(cfg, nil, nil, nil, "")
	assert.Error(t, err)
}

func TestHealthAndPing(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, ServerName, body["name"])
	assert.Equal(t, "test", body["version"])

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestLogs(t *testing.T) {
	srv, buffer := newTestServer(t, nil)
	buffer.Add("info", "first")
	buffer.Add("error", "second")

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logs?limit=1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Logs  []logger.LogEntry `json:"logs"`
		Count int               `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Logs, 1)
	assert.Equal(t, "second", body.Logs[0].Message)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/logs?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/logs", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, buffer.GetRecent(0))
}

func TestAuthMiddleware(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{"http.auth_token": "s3cret-token"})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "Bearer nope", http.StatusUnauthorized},
		{"bearer", "Bearer s3cret-token", http.StatusOK},
		{"raw", "s3cret-token", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/logs", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	// health stays open
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{
		"http.enable_cors":     true,
		"http.allowed_origins": []string{"https://app.example"},
	})

	req := httptest.NewRequest(http.MethodOptions, "/mcp", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://other.example")
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStreamableHTTP_ListsTools(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{"http.auth_token": "s3cret-token"})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "s3cret-token"}),
			Base:   http.DefaultTransport,
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint:   ts.URL + "/mcp",
		HTTPClient: httpClient,
	}, nil)
	require.NoError(t, err)
	defer session.Close()

	res, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	assert.Len(t, res.Tools, len(config.PromptSpecs())+2)

	out, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "call_GPT_o3",
		Arguments: map[string]any{"prompt": "hi"},
	})
	require.NoError(t, err)
	require.Len(t, out.Content, 1)
	text, ok := out.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Error: Datasaur GPT o3 API configuration missing on server.", text.Text)
}

func TestUsage(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/usage", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	store := storage.NewUsageStore(t.TempDir())
	require.NoError(t, store.RecordCall("grok_3", "", 0))
	require.NoError(t, store.RecordCall("grok_3", "transport_failure", 0))

	srv, _ = newTestServer(t, nil)
	srv.WithUsage(store)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/usage?days=1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Days    int                   `json:"days"`
		Records []storage.UsageRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Days)
	require.Len(t, body.Records, 1)
	assert.Equal(t, int64(2), body.Records[0].RequestCount)
	assert.Equal(t, int64(1), body.Records[0].FailureCount)

	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/usage?days=0", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "***", maskToken("short"))
	assert.Equal(t, "abcd...wxyz", maskToken("abcdefghijklmnopqrstuvwxyz"))
}

func TestAddr(t *testing.T) {
	srv, _ := newTestServer(t, map[string]any{"http.host": "0.0.0.0", "http.port": 9100})
	assert.Equal(t, "0.0.0.0:9100", srv.Addr())
	assert.Equal(t, "0.0.0.0:9100", srv.HTTPServer().Addr)
}
