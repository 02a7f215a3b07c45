package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 100, time.Second, zerolog.Nop())
}

func TestGetPricesUnwrapsEnvelope(t *testing.T) {
	c := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prices", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"prices": map[string]any{
					"ABC": map[string]any{"current": 50.0, "hour_start": 48.0, "period_change_percent": 4.1},
				},
				"current_second": 42,
			},
		})
	}))

	data, err := c.GetPrices(context.Background())
	require.NoError(t, err)
	require.Contains(t, data.Prices, "ABC")
	assert.Equal(t, 50.0, data.Prices["ABC"].Current)
	assert.Equal(t, 48.0, data.Prices["ABC"].HourStart)
	assert.Equal(t, 42, data.CurrentSecond)
}

func TestGetPortfolioSendsBearerAndUserID(t *testing.T) {
	c := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/portfolio", r.URL.Path)
		assert.Equal(t, "user-1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": map[string]any{
				"user_id":   "user-1",
				"balance":   100000.0,
				"positions": []any{},
			},
		})
	}))

	p, err := c.GetPortfolio(context.Background(), "tok-123", "user-1")
	require.NoError(t, err)
	assert.Equal(t, 100000.0, p.Balance)
	assert.Empty(t, p.Positions)
}

func TestEnvelopeFailureBecomesError(t *testing.T) {
	c := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The API signals errors via the envelope regardless of HTTP status.
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "No price data available yet. Please wait for the first simulation run.",
		})
	}))

	_, err := c.GetPrices(context.Background())
	require.Error(t, err)

	apiErr, ok := err.(*Error)
	require.True(t, ok, "expected *Error, got %T", err)
	assert.Contains(t, apiErr.Message, "No price data available")
}

func TestExecuteTradeSuccess(t *testing.T) {
	c := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/trade", r.URL.Path)
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))

		var req TradeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, TradeRequest{UserID: "user-1", Symbol: "ABC", Action: "buy", Quantity: 10}, req)

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": "Trade executed successfully: BUY 10 shares of ABC",
			"trade": map[string]any{
				"trade_id":    "t-1",
				"symbol":      "ABC",
				"action":      "buy",
				"quantity":    10,
				"price":       50.0,
				"total_value": 500.0,
				"new_balance": 99500.0,
			},
		})
	}))

	res, err := c.ExecuteTrade(context.Background(), "tok-123", TradeRequest{
		UserID: "user-1", Symbol: "ABC", Action: "buy", Quantity: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "t-1", res.TradeID)
	assert.Equal(t, 99500.0, res.NewBalance)
}

func TestExecuteTradeRejection(t *testing.T) {
	c := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "Insufficient shares. Required: 5, Available: 0",
		})
	}))

	_, err := c.ExecuteTrade(context.Background(), "tok-123", TradeRequest{
		UserID: "user-1", Symbol: "XYZ", Action: "sell", Quantity: 5,
	})
	require.Error(t, err)
	assert.Equal(t, "Insufficient shares. Required: 5, Available: 0", err.Error())
}

func TestTransportFailureIsPlainError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, 100, 200*time.Millisecond, zerolog.Nop())
	_, err := c.GetNews(context.Background())
	require.Error(t, err)
	_, isAPIError := err.(*Error)
	assert.False(t, isAPIError, "transport failures are not envelope errors")
}
