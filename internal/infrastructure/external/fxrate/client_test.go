package fxrate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{BaseURL: server.URL, Timeout: time.Second}, zap.NewNop())
}

func TestClient_Rate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v4/latest/USD", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"base":"USD","rates":{"INR":83.2,"EUR":0.92}}`))
	})

	rate, defaulted := client.Rate(context.Background(), "USD", "INR")
	assert.False(t, defaulted)
	assert.True(t, rate.Equal(decimal.NewFromFloat(83.2)), "rate = %s", rate)
}

func TestClient_Rate_SameCurrency(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("rate service must not be called for identical currencies")
	})

	rate, defaulted := client.Rate(context.Background(), "INR", "INR")
	assert.False(t, defaulted)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
}

func TestClient_Rate_FailOpen(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "upstream error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`not json`))
			},
		},
		{
			name: "currency missing from table",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"base":"USD","rates":{"EUR":0.92}}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)

			rate, defaulted := client.Rate(context.Background(), "USD", "INR")
			assert.True(t, defaulted, "defaulted flag must be set on failure")
			assert.True(t, rate.Equal(decimal.NewFromInt(1)), "fallback rate must be 1, got %s", rate)
		})
	}
}

func TestClient_Rate_UnreachableHost(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond}, zap.NewNop())

	rate, defaulted := client.Rate(context.Background(), "USD", "INR")
	assert.True(t, defaulted)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
}
