// Package client is a typed HTTP client for the journal API, used by the
// journal CLI and by any other Go consumer of the service.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"trading-journal-go/internal/models"
	"trading-journal-go/internal/stats"
)

// Client talks to a running journal server.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates a client for the journal API at baseURL.
func New(baseURL string, logger *zap.Logger) *Client {
	return &Client{
		http:    resty.New().SetBaseURL(baseURL).SetHeader("Content-Type", "application/json"),
		limiter: rate.NewLimiter(rate.Limit(10), 5),
		logger:  logger,
	}
}

// TradeDraft is the payload for creating a trade. Optional fields are
// pointers so they are omitted rather than sent as zero.
type TradeDraft struct {
	Symbol     string   `json:"symbol"`
	Direction  string   `json:"direction"`
	EntryPrice float64  `json:"entry_price"`
	ExitPrice  *float64 `json:"exit_price,omitempty"`
	LotSize    float64  `json:"lot_size"`
	WeeklyTF   int      `json:"weekly_tf"`
	DailyTF    int      `json:"daily_tf"`
	H4TF       int      `json:"h4_tf"`
	H1TF       int      `json:"h1_tf"`
	LowerTF    int      `json:"lower_tf"`
	RiskReward *float64 `json:"risk_reward,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// doRequest executes the request with rate limiting and a bounded retry on
// throttling and server errors.
func (c *Client) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	const maxRetries = 3

	var resp *resty.Response
	var err error

	for i := 0; i < maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		resp, err = req.SetContext(ctx).Execute(method, url)
		if err == nil && !resp.IsError() {
			return resp, nil
		}

		if resp != nil && resp.StatusCode() < http.StatusInternalServerError &&
			resp.StatusCode() != http.StatusTooManyRequests {
			// Client-side errors are not retryable.
			return nil, apiError(resp)
		}

		c.logger.Debug("Retrying request",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("attempt", i+1),
			zap.Error(err))
		time.Sleep(time.Duration(i+1) * 200 * time.Millisecond)
	}

	if err != nil {
		return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
	}
	return nil, apiError(resp)
}

// apiError extracts the server's {"error": ...} message when present.
func apiError(resp *resty.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error != "" {
		return fmt.Errorf("api error (%s): %s", resp.Status(), body.Error)
	}
	return fmt.Errorf("api error (%s): %s", resp.Status(), resp.String())
}

// ListTrades returns every trade in the journal.
func (c *Client) ListTrades(ctx context.Context) ([]models.Trade, error) {
	req := c.http.R().SetResult(&[]models.Trade{})
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/trades", req)
	if err != nil {
		return nil, fmt.Errorf("failed to list trades: %w", err)
	}
	return *resp.Result().(*[]models.Trade), nil
}

// GetTrade fetches one trade by id.
func (c *Client) GetTrade(ctx context.Context, id uint) (*models.Trade, error) {
	req := c.http.R().SetResult(&models.Trade{})
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/api/trades/%d", id), req)
	if err != nil {
		return nil, fmt.Errorf("failed to get trade %d: %w", id, err)
	}
	return resp.Result().(*models.Trade), nil
}

// CreateTrade records a new trade and returns it with its derived fields.
func (c *Client) CreateTrade(ctx context.Context, draft TradeDraft) (*models.Trade, error) {
	req := c.http.R().SetBody(draft).SetResult(&models.Trade{})
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/trades", req)
	if err != nil {
		return nil, fmt.Errorf("failed to create trade: %w", err)
	}
	return resp.Result().(*models.Trade), nil
}

// CloseTrade closes the trade at the given exit price.
func (c *Client) CloseTrade(ctx context.Context, id uint, exitPrice float64) (*models.Trade, error) {
	req := c.http.R().
		SetBody(map[string]float64{"exit_price": exitPrice}).
		SetResult(&models.Trade{})
	resp, err := c.doRequest(ctx, http.MethodPost, fmt.Sprintf("/api/trades/%d/close", id), req)
	if err != nil {
		return nil, fmt.Errorf("failed to close trade %d: %w", id, err)
	}
	return resp.Result().(*models.Trade), nil
}

// DeleteTrade removes a trade from the journal.
func (c *Client) DeleteTrade(ctx context.Context, id uint) error {
	req := c.http.R()
	if _, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/api/trades/%d", id), req); err != nil {
		return fmt.Errorf("failed to delete trade %d: %w", id, err)
	}
	return nil
}

// AccountStats fetches the account-level summary.
func (c *Client) AccountStats(ctx context.Context) (*stats.AccountStats, error) {
	req := c.http.R().SetResult(&stats.AccountStats{})
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/trades/stats/account", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get account stats: %w", err)
	}
	return resp.Result().(*stats.AccountStats), nil
}

// Metrics fetches the performance ratios.
func (c *Client) Metrics(ctx context.Context) (*stats.Metrics, error) {
	req := c.http.R().SetResult(&stats.Metrics{})
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/trades/stats/metrics", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics: %w", err)
	}
	return resp.Result().(*stats.Metrics), nil
}

// DailyStats fetches per-day realized P&L.
func (c *Client) DailyStats(ctx context.Context) ([]stats.DailyPnL, error) {
	req := c.http.R().SetResult(&[]stats.DailyPnL{})
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/trades/stats/daily", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}
	return *resp.Result().(*[]stats.DailyPnL), nil
}

// MonthlyStats fetches the summary for one calendar month.
func (c *Client) MonthlyStats(ctx context.Context, year, month int) (*stats.MonthlyStats, error) {
	req := c.http.R().
		SetQueryParam("year", fmt.Sprintf("%d", year)).
		SetQueryParam("month", fmt.Sprintf("%d", month)).
		SetResult(&stats.MonthlyStats{})
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/trades/stats/monthly", req)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly stats: %w", err)
	}
	return resp.Result().(*stats.MonthlyStats), nil
}
