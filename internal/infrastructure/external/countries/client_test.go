package countries

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestClient_Countries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"name":{"common":"India"},"cca2":"IN","currencies":{"INR":{}}},
			{"name":{"common":"Switzerland"},"cca2":"CH","currencies":{"CHF":{}}}
		]`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Timeout: time.Second}, zap.NewNop())

	countries := client.Countries(context.Background())
	assert.Len(t, countries, 2)
	assert.Equal(t, "IN", countries[0].Code)
	assert.Equal(t, "INR", countries[0].Currency)

	assert.Equal(t, "CHF", client.CurrencyFor(context.Background(), "Switzerland"))
}

func TestClient_Countries_Fallback(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond}, zap.NewNop())

	countries := client.Countries(context.Background())
	assert.NotEmpty(t, countries, "fallback list must be served when upstream is down")

	assert.Equal(t, "INR", client.CurrencyFor(context.Background(), "India"))
	assert.Equal(t, "USD", client.CurrencyFor(context.Background(), "Atlantis"))
}
