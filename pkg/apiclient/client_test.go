package apiclient_test

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/germanamz/localwriter/pkg/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc, opts ...apiclient.Option) (*httptest.Server, *apiclient.Client) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]apiclient.Option{apiclient.WithHTTPClient(srv.Client())}, opts...)

	return srv, apiclient.New(srv.URL, opts...)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func readBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()

	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(body, &req))

	return req
}

func requireKind(t *testing.T, err error, kind apiclient.ErrorKind) *apiclient.GenerationError {
	t.Helper()

	var ge *apiclient.GenerationError
	require.ErrorAs(t, err, &ge)
	require.Equal(t, kind, ge.Kind, "error: %v", err)

	return ge
}

func TestNewGenerationRequest_TrimsPrompt(t *testing.T) {
	req := apiclient.NewGenerationRequest("  hello world \n", 0.5, 200)

	assert.Equal(t, "hello world", req.Prompt)
	assert.InDelta(t, 0.5, req.Temperature, 1e-9)
	assert.Equal(t, 200, req.MaxNewTokens)
}

func TestGenerate_Success(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		body := readBody(t, r)
		assert.Equal(t, "Write a haiku about rain", body["prompt"])
		assert.InDelta(t, 0.7, body["temperature"], 1e-9)
		assert.InDelta(t, 200, body["max_new_tokens"], 1e-9)

		writeJSON(t, w, http.StatusOK, map[string]any{
			"output":      "Soft rain on the roof",
			"time_taken":  1.2,
			"temperature": 0.7,
			"timestamp":   "2024-01-01T00:00:00Z",
			"prompt":      "Write a haiku about rain",
		})
	})

	got, err := c.Generate(context.Background(), apiclient.NewGenerationRequest("Write a haiku about rain", 0.7, 200))
	require.NoError(t, err)

	assert.Equal(t, apiclient.GenerationResult{
		Output:      "Soft rain on the roof",
		TimeTaken:   1.2,
		Temperature: 0.7,
		Timestamp:   "2024-01-01T00:00:00Z",
		Prompt:      "Write a haiku about rain",
	}, got)
}

func TestGenerate_PassesInputThroughUnvalidated(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		body := readBody(t, r)
		assert.Empty(t, body["prompt"])
		assert.InDelta(t, 3.5, body["temperature"], 1e-9)
		writeJSON(t, w, http.StatusOK, map[string]any{"output": "x"})
	})

	_, err := c.Generate(context.Background(), apiclient.GenerationRequest{Temperature: 3.5, MaxNewTokens: 1})
	require.NoError(t, err)
}

func TestGenerate_ServerErrorWithDetail(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusServiceUnavailable, map[string]any{"detail": "model unavailable"})
	})

	_, err := c.Generate(context.Background(), apiclient.NewGenerationRequest("hi", 0.7, 200))

	ge := requireKind(t, err, apiclient.KindServer)
	assert.Equal(t, "model unavailable", ge.Detail)
	assert.Equal(t, http.StatusServiceUnavailable, ge.StatusCode)
	assert.Contains(t, err.Error(), "model unavailable")
	assert.Equal(t, "Server error: model unavailable", err.Error())
}

func TestGenerate_ServerErrorFallsBackToStatusText(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "no body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "non-json body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("<html>boom</html>"))
			},
		},
		{
			name: "empty detail",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(t, w, http.StatusInternalServerError, map[string]any{"detail": ""})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newTestServer(t, tt.handler)

			_, err := c.Generate(context.Background(), apiclient.NewGenerationRequest("hi", 0.7, 200))

			ge := requireKind(t, err, apiclient.KindServer)
			assert.Equal(t, "Internal Server Error", ge.Detail)
		})
	}
}

func TestGenerate_ServerErrorStructuredDetail(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"msg": "field required"}},
		})
	})

	_, err := c.Generate(context.Background(), apiclient.NewGenerationRequest("hi", 0.7, 200))

	ge := requireKind(t, err, apiclient.KindServer)
	assert.JSONEq(t, `[{"msg":"field required"}]`, ge.Detail)
}

func TestGenerate_TimeoutIsNoResponse(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
			w.WriteHeader(http.StatusOK)
		}
	}, apiclient.WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := c.Generate(context.Background(), apiclient.NewGenerationRequest("hi", 0.7, 200))

	requireKind(t, err, apiclient.KindNoResponse)
	assert.Equal(t, apiclient.NoResponseMessage, err.Error())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGenerate_ConnectionRefusedIsNoResponse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c := apiclient.New("http://" + addr)

	_, err = c.Generate(context.Background(), apiclient.NewGenerationRequest("hi", 0.7, 200))

	requireKind(t, err, apiclient.KindNoResponse)
	assert.Equal(t, "No response from server. Please check if the backend is running.", err.Error())
}

func TestGenerate_MarshalFailureIsRequestError(t *testing.T) {
	called := false
	_, c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	_, err := c.Generate(context.Background(), apiclient.NewGenerationRequest("hi", math.NaN(), 200))

	ge := requireKind(t, err, apiclient.KindRequest)
	assert.Contains(t, ge.Detail, "marshal payload")
	assert.Contains(t, err.Error(), "Request failed: ")
	assert.False(t, called)
}

func TestGenerate_BadBaseURLIsRequestError(t *testing.T) {
	c := apiclient.New("http://local host:8000\x7f")

	_, err := c.Generate(context.Background(), apiclient.NewGenerationRequest("hi", 0.7, 200))

	ge := requireKind(t, err, apiclient.KindRequest)
	assert.Contains(t, ge.Detail, "build request")
}

func TestGenerate_UndecodableBodyIsRequestError(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("not json"))
	})

	_, err := c.Generate(context.Background(), apiclient.NewGenerationRequest("hi", 0.7, 200))

	ge := requireKind(t, err, apiclient.KindRequest)
	assert.Contains(t, ge.Detail, "decode response")
}

func TestGenerate_CallerCancelIsRequestError(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Generate(ctx, apiclient.NewGenerationRequest("hi", 0.7, 200))

	requireKind(t, err, apiclient.KindRequest)
}

func TestGenerate_CustomHeaders(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "value", r.Header.Get("X-Custom"))
		writeJSON(t, w, http.StatusOK, map[string]any{"output": "ok"})
	}, apiclient.WithHeaders(map[string]string{"X-Custom": "value"}))

	_, err := c.Generate(context.Background(), apiclient.NewGenerationRequest("hi", 0.7, 200))
	require.NoError(t, err)
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := apiclient.New("http://localhost:8000/")

	assert.Equal(t, "http://localhost:8000", c.BaseURL())
	assert.Equal(t, apiclient.DefaultTimeout, c.Timeout())
}

func TestHealthTimeout_CappedByTimeout(t *testing.T) {
	c := apiclient.New("http://localhost:8000",
		apiclient.WithTimeout(2*time.Second),
		apiclient.WithHealthTimeout(10*time.Second),
	)
	assert.Equal(t, 2*time.Second, c.HealthTimeout())

	c = apiclient.New("http://localhost:8000", apiclient.WithHealthTimeout(time.Second))
	assert.Equal(t, time.Second, c.HealthTimeout())
}

func TestCheckHealth_Success(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"status": "healthy",
			"model_info": map[string]any{
				"model_name": "llama3",
				"status":     "loaded",
				"device":     "cuda",
			},
			"timestamp": "2024-01-01T00:00:00",
		})
	})

	h, err := c.CheckHealth(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, "llama3", h.ModelInfo.ModelName)
	assert.Equal(t, "loaded", h.ModelInfo.Status)
	assert.Equal(t, "cuda", h.ModelInfo.Extra["device"])
}

func TestCheckHealth_FailuresCollapseToUnreachable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(t, w, http.StatusInternalServerError, map[string]any{"detail": "Service unhealthy"})
			},
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("{"))
			},
		},
		{
			name: "slow",
			handler: func(_ http.ResponseWriter, r *http.Request) {
				<-r.Context().Done()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newTestServer(t, tt.handler, apiclient.WithHealthTimeout(50*time.Millisecond))

			_, err := c.CheckHealth(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, apiclient.ErrUnreachable)
		})
	}
}

func TestLogs(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/logs", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("lines"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"logs":          []string{"a", "b"},
			"total_entries": 12,
			"showing":       2,
		})
	})

	lr, err := c.Logs(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, lr.Logs)
	assert.Equal(t, 12, lr.TotalEntries)
	assert.Equal(t, 2, lr.Showing)
}

func TestLogs_DefaultLines(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("lines"))
		writeJSON(t, w, http.StatusOK, map[string]any{"logs": []string{}, "message": "No logs found"})
	})

	lr, err := c.Logs(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "No logs found", lr.Message)
}

func TestLogs_Error(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Logs(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not fetch logs")
}

func TestInfo(t *testing.T) {
	_, c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{
			"message":   "Local AI Writer API",
			"version":   "1.0.0",
			"endpoints": map[string]string{"generate": "/generate"},
		})
	})

	info, err := c.Info(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Local AI Writer API", info.Message)
	assert.Equal(t, "1.0.0", info.Version)
	assert.Equal(t, "/generate", info.Endpoints["generate"])
}
