package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"trading-journal-go/internal/config"
	"trading-journal-go/internal/models"
	"trading-journal-go/internal/stats"
	"trading-journal-go/internal/store"
)

// setupTestServer backs the API with a JSON file store in a temp dir; the
// handlers only see the Store interface, so one backend covers them all.
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := store.NewJSONFileStore(filepath.Join(t.TempDir(), "journal.json"))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Journal.StartingBalance = 100000

	mux := http.NewServeMux()
	NewHandler(zap.NewNop(), st, cfg).Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeTrade(t *testing.T, resp *http.Response) models.Trade {
	t.Helper()
	defer resp.Body.Close()

	var trade models.Trade
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&trade))
	return trade
}

func TestCreateTrade(t *testing.T) {
	server := setupTestServer(t)

	t.Run("Closed trade derives confluence, pnl and close time", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/api/trades", map[string]any{
			"symbol":      "EURUSD",
			"direction":   "LONG",
			"entry_price": 1.1000,
			"exit_price":  1.1050,
			"lot_size":    1.0,
			"weekly_tf":   80,
			"daily_tf":    70,
			"h4_tf":       60,
			"h1_tf":       50,
			"lower_tf":    40,
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		trade := decodeTrade(t, resp)
		assert.NotZero(t, trade.ID)
		assert.Equal(t, models.StatusClosed, trade.Status)
		assert.InDelta(t, 500.00, trade.PnL, 0.001)
		assert.InDelta(t, 60.0, trade.TotalConfluence, 0.001)
		assert.NotNil(t, trade.ClosedAt)
	})

	t.Run("Open trade has no realized pnl", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/api/trades", map[string]any{
			"symbol":      "GBPUSD",
			"direction":   "SHORT",
			"entry_price": 1.2500,
			"lot_size":    0.5,
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		trade := decodeTrade(t, resp)
		assert.Equal(t, models.StatusOpen, trade.Status)
		assert.Zero(t, trade.PnL)
		assert.Nil(t, trade.ExitPrice)
		assert.Nil(t, trade.ClosedAt)
	})

	t.Run("Validation failures", func(t *testing.T) {
		testCases := []struct {
			name string
			body map[string]any
		}{
			{"Missing symbol", map[string]any{"direction": "LONG", "entry_price": 1.1, "lot_size": 1.0}},
			{"Bad direction", map[string]any{"symbol": "EURUSD", "direction": "UP", "entry_price": 1.1, "lot_size": 1.0}},
			{"Missing entry price", map[string]any{"symbol": "EURUSD", "direction": "LONG", "lot_size": 1.0}},
			{"Negative entry price", map[string]any{"symbol": "EURUSD", "direction": "LONG", "entry_price": -1.0, "lot_size": 1.0}},
			{"Missing lot size", map[string]any{"symbol": "EURUSD", "direction": "LONG", "entry_price": 1.1}},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				resp := doJSON(t, http.MethodPost, server.URL+"/api/trades", tc.body)
				defer resp.Body.Close()
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			})
		}
	})
}

func TestGetTrade(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/trades", map[string]any{
		"symbol": "EURUSD", "direction": "LONG", "entry_price": 1.1, "lot_size": 1.0,
	})
	created := decodeTrade(t, resp)

	t.Run("Found", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/trades/%d", server.URL, created.ID), nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		trade := decodeTrade(t, resp)
		assert.Equal(t, created.ID, trade.ID)
	})

	t.Run("Not found", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/trades/9999", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Trade not found", body["error"])
	})
}

func TestUpdateTrade(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/trades", map[string]any{
		"symbol": "EURUSD", "direction": "LONG", "entry_price": 1.1000, "lot_size": 1.0,
		"weekly_tf": 50, "daily_tf": 50, "h4_tf": 50, "h1_tf": 50, "lower_tf": 50,
	})
	created := decodeTrade(t, resp)
	url := fmt.Sprintf("%s/api/trades/%d", server.URL, created.ID)

	t.Run("Partial update recomputes confluence", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, url, map[string]any{"h4_tf": 100})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		trade := decodeTrade(t, resp)
		assert.Equal(t, 100, trade.H4TF)
		assert.InDelta(t, 60.0, trade.TotalConfluence, 0.001) // (50+50+100+50+50)/5
		assert.Equal(t, models.StatusOpen, trade.Status)
	})

	t.Run("Setting exit price closes the trade", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, url, map[string]any{"exit_price": 1.1050})
		trade := decodeTrade(t, resp)

		assert.Equal(t, models.StatusClosed, trade.Status)
		assert.InDelta(t, 500.00, trade.PnL, 0.001)
		assert.NotNil(t, trade.ClosedAt)
	})

	t.Run("Explicit null exit price reopens", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, url, map[string]any{"exit_price": nil})
		trade := decodeTrade(t, resp)

		assert.Equal(t, models.StatusOpen, trade.Status)
		assert.Nil(t, trade.ExitPrice)
		assert.Nil(t, trade.ClosedAt)
		assert.Zero(t, trade.PnL)
	})

	t.Run("Omitted exit price leaves close state alone", func(t *testing.T) {
		doJSON(t, http.MethodPut, url, map[string]any{"exit_price": 1.1050}).Body.Close()

		resp := doJSON(t, http.MethodPut, url, map[string]any{"notes": "good entry"})
		trade := decodeTrade(t, resp)

		assert.Equal(t, models.StatusClosed, trade.Status)
		assert.Equal(t, "good entry", trade.Notes)
		assert.InDelta(t, 500.00, trade.PnL, 0.001)
	})
}

func TestCloseTrade(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/trades", map[string]any{
		"symbol": "GBPUSD", "direction": "SHORT", "entry_price": 1.2000, "lot_size": 2.0,
	})
	created := decodeTrade(t, resp)
	closeURL := fmt.Sprintf("%s/api/trades/%d/close", server.URL, created.ID)

	resp = doJSON(t, http.MethodPost, closeURL, map[string]any{"exit_price": 1.1950})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	closed := decodeTrade(t, resp)

	assert.Equal(t, models.StatusClosed, closed.Status)
	assert.InDelta(t, 1000.00, closed.PnL, 0.001)
	require.NotNil(t, closed.ClosedAt)
	firstClose := *closed.ClosedAt

	// Closing again with the same price is idempotent on the timestamp.
	resp = doJSON(t, http.MethodPost, closeURL, map[string]any{"exit_price": 1.1950})
	again := decodeTrade(t, resp)

	assert.InDelta(t, 1000.00, again.PnL, 0.001)
	require.NotNil(t, again.ClosedAt)
	assert.True(t, again.ClosedAt.Equal(firstClose))

	t.Run("Missing exit price", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, closeURL, map[string]any{})
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDeleteTrade(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/trades", map[string]any{
		"symbol": "EURUSD", "direction": "LONG", "entry_price": 1.1, "lot_size": 1.0,
	})
	created := decodeTrade(t, resp)
	url := fmt.Sprintf("%s/api/trades/%d", server.URL, created.ID)

	resp = doJSON(t, http.MethodDelete, url, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, url, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatsEndpoints(t *testing.T) {
	server := setupTestServer(t)

	// One winner (+500), one loser (-100), one open.
	doJSON(t, http.MethodPost, server.URL+"/api/trades", map[string]any{
		"symbol": "EURUSD", "direction": "LONG", "entry_price": 1.1000,
		"exit_price": 1.1050, "lot_size": 1.0, "weekly_tf": 80,
	}).Body.Close()
	doJSON(t, http.MethodPost, server.URL+"/api/trades", map[string]any{
		"symbol": "EURUSD", "direction": "LONG", "entry_price": 1.2500,
		"exit_price": 1.2480, "lot_size": 0.5,
	}).Body.Close()
	doJSON(t, http.MethodPost, server.URL+"/api/trades", map[string]any{
		"symbol": "USDJPY", "direction": "SHORT", "entry_price": 150.0, "lot_size": 0.1,
	}).Body.Close()

	t.Run("Account stats", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/trades/stats/account", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var s stats.AccountStats
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
		assert.InDelta(t, 400, s.TotalPnL, 0.001)
		assert.InDelta(t, 100400, s.CurrentBalance, 0.001)
		assert.Equal(t, 2, s.TotalTrades)
		assert.Equal(t, 1, s.OpenTrades)
		assert.Equal(t, 1, s.WinningTrades)
		assert.Equal(t, 1, s.LosingTrades)
	})

	t.Run("Account stats with starting_balance override", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/trades/stats/account?starting_balance=10000", nil)
		defer resp.Body.Close()

		var s stats.AccountStats
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
		assert.InDelta(t, 10000, s.StartingBalance, 0.001)
		assert.InDelta(t, 4.0, s.PnLPercentage, 0.001)
	})

	t.Run("Metrics", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/trades/stats/metrics", nil)
		defer resp.Body.Close()

		var m stats.Metrics
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
		assert.InDelta(t, 5.0, m.ProfitFactor, 0.001) // 500 / 100
		assert.InDelta(t, 50.0, m.WinRate, 0.001)
		assert.InDelta(t, 500.0, m.LargestWin, 0.001)
		assert.InDelta(t, -100.0, m.LargestLoss, 0.001)
	})

	t.Run("Daily stats", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/trades/stats/daily", nil)
		defer resp.Body.Close()

		var days []stats.DailyPnL
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&days))
		require.Len(t, days, 1) // both closed today
		assert.InDelta(t, 400, days[0].PnL, 0.001)
	})

	t.Run("Monthly stats rejects a bad month", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/trades/stats/monthly?year=2024&month=13", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Monthly stats over an empty month", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/trades/stats/monthly?year=2020&month=1", nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var s stats.MonthlyStats
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
		assert.Zero(t, s.TotalTrades)
		assert.Nil(t, s.BestDay.Date)
	})
}

func TestMetricsEmpty(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, http.MethodGet, server.URL+"/api/trades/stats/metrics", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var m stats.Metrics
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))
	assert.Equal(t, stats.Metrics{}, m)
}

func TestVideoEndpoints(t *testing.T) {
	server := setupTestServer(t)

	resp := doJSON(t, http.MethodPost, server.URL+"/api/videos", map[string]any{
		"title":     "Reading confluence",
		"video_url": "https://example.com/v1",
		"category":  "Tutorial",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var created models.Video
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	url := fmt.Sprintf("%s/api/videos/%d", server.URL, created.ID)

	t.Run("Missing title is rejected", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, server.URL+"/api/videos", map[string]any{"video_url": "https://example.com/v2"})
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Get increments view count", func(t *testing.T) {
		for i := 1; i <= 2; i++ {
			resp := doJSON(t, http.MethodGet, url, nil)
			var v models.Video
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
			resp.Body.Close()
			assert.Equal(t, i, v.ViewCount)
		}
	})

	t.Run("Category filter", func(t *testing.T) {
		resp := doJSON(t, http.MethodGet, server.URL+"/api/videos?category=Analysis", nil)
		defer resp.Body.Close()

		var videos []models.Video
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&videos))
		assert.Empty(t, videos)
	})

	t.Run("Update", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, url, map[string]any{"is_featured": true})
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var v models.Video
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
		resp.Body.Close()
		assert.True(t, v.IsFeatured)
		assert.Equal(t, "Reading confluence", v.Title)
	})

	t.Run("Delete", func(t *testing.T) {
		resp := doJSON(t, http.MethodDelete, url, nil)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Video deleted successfully", body["message"])
	})
}

func TestRateLimit(t *testing.T) {
	limited := rateLimit(rate.NewLimiter(1, 1), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	limited.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/trades", nil))
	assert.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	limited.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/trades", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
