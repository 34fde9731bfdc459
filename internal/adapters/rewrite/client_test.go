package rewrite

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/iotest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/pebble/internal/core/stage"
)

func TestClient_Rewrite(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req mutateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "walk daily", req.Text)
		assert.Equal(t, 3, req.Stage)
		_, _ = w.Write([]byte(`{"ok":true,"result":"walk someday"}`))
	}))
	defer srv.Close()

	out, err := NewClient(srv.URL, time.Second).Rewrite(context.Background(), "walk daily", stage.Cracking)
	require.NoError(t, err)
	assert.Equal(t, "walk someday", out)
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"bad request", http.StatusBadRequest, `{"ok":false,"error":"text is required"}`, "text is required"},
		{"server error", http.StatusInternalServerError, `{"ok":false,"error":"mutate failed"}`, "mutate failed"},
		{"ok false", http.StatusOK, `{"ok":false}`, "mutate failed"},
		{"not json", http.StatusBadGateway, `<html>`, "502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second).Rewrite(context.Background(), "x", stage.Wearing)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 20*time.Millisecond).Rewrite(context.Background(), "x", stage.Wearing)
	assert.Error(t, err)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestClient_BodyReadError(t *testing.T) {
	reset := errors.New("connection reset by peer")
	c := &Client{
		endpoint: "http://pebble.test/api/mutate",
		http: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     make(http.Header),
				Body:       io.NopCloser(iotest.ErrReader(reset)),
				Request:    r,
			}, nil
		})},
	}

	_, err := c.Rewrite(context.Background(), "x", stage.Wearing)
	require.Error(t, err)
	assert.ErrorIs(t, err, reset)
	assert.NotContains(t, err.Error(), "mutate failed")
}
