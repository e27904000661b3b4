package deepface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = url
	cfg.Timeout = 2 * time.Second
	cfg.RetryCount = 2
	cfg.Backoff = time.Millisecond
	return cfg
}

func TestClient_Represent(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse interface{}
		serverStatus   int
		wantErr        bool
		wantErrContain string
		wantCalls      int32
		validateResp   func(*testing.T, *RepresentResponse)
	}{
		{
			name: "successful response with single face",
			serverResponse: RepresentResponse{
				Results: []RepresentResult{
					{
						Embedding:  make([]float64, 128),
						FacialArea: FacialArea{X: 10, Y: 20, W: 100, H: 100},
					},
				},
			},
			serverStatus: http.StatusOK,
			wantCalls:    1,
			validateResp: func(t *testing.T, resp *RepresentResponse) {
				require.NotNil(t, resp)
				require.Len(t, resp.Results, 1)
				assert.Len(t, resp.Results[0].Embedding, 128)
				assert.Equal(t, FacialArea{X: 10, Y: 20, W: 100, H: 100}, resp.Results[0].FacialArea)
			},
		},
		{
			name:           "empty response",
			serverResponse: RepresentResponse{Results: []RepresentResult{}},
			serverStatus:   http.StatusOK,
			wantCalls:      1,
			validateResp: func(t *testing.T, resp *RepresentResponse) {
				require.NotNil(t, resp)
				assert.Empty(t, resp.Results)
			},
		},
		{
			name:           "server error is retried",
			serverResponse: map[string]string{"error": "internal server error"},
			serverStatus:   http.StatusInternalServerError,
			wantErr:        true,
			wantErrContain: "deepface service unavailable",
			wantCalls:      3,
		},
		{
			name:           "bad request is not retried",
			serverResponse: map[string]string{"error": "invalid image format"},
			serverStatus:   http.StatusBadRequest,
			wantErr:        true,
			wantErrContain: "status 400",
			wantCalls:      1,
		},
		{
			name:           "invalid json response",
			serverResponse: "not a valid json",
			serverStatus:   http.StatusOK,
			wantErr:        true,
			wantErrContain: "invalid response",
			wantCalls:      1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				assert.Equal(t, "/represent", r.URL.Path)
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var req RepresentRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.NotEmpty(t, req.Img)
				assert.Equal(t, "Facenet", req.Model)
				assert.True(t, req.EnforceDetection)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.serverStatus)
				if s, ok := tt.serverResponse.(string); ok {
					_, _ = w.Write([]byte(s))
					return
				}
				_ = json.NewEncoder(w).Encode(tt.serverResponse)
			}))
			defer server.Close()

			client := NewClient(testConfig(server.URL))
			resp, err := client.Represent(context.Background(), "aW1hZ2U=")

			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrContain)
				return
			}
			require.NoError(t, err)
			if tt.validateResp != nil {
				tt.validateResp(t, resp)
			}
		})
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Backoff = time.Second
	client := NewClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Represent(ctx, "aW1hZ2U=")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{10, maxBackoff},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, backoff(time.Second, tt.attempt), "attempt %d", tt.attempt)
	}
}
