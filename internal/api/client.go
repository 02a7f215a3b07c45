package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Client is a thin typed wrapper over the trading API. Every response uses
// the `{success, data|message}` envelope; success:false comes back as *Error.
// The client performs no retries and no backoff.
type Client struct {
	baseURL string
	httpc   *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// NewClient creates a trading API client. rps caps outgoing request rate so
// four concurrent pollers cannot hammer the backend.
func NewClient(baseURL string, rps float64, timeout time.Duration, log zerolog.Logger) *Client {
	if rps <= 0 {
		rps = 10
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)),
		log:     log.With().Str("component", "api").Logger(),
	}
}

// GetPrices fetches the current prices snapshot for all symbols.
func (c *Client) GetPrices(ctx context.Context) (*PriceData, error) {
	out := &PriceData{}
	if err := c.get(ctx, "/prices", "", out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetNews fetches the published news articles, newest first.
func (c *Client) GetNews(ctx context.Context) ([]Article, error) {
	out := &newsData{}
	if err := c.get(ctx, "/news", "", out); err != nil {
		return nil, err
	}
	return out.Articles, nil
}

// GetLeaderboard fetches the ranked leaderboard.
func (c *Client) GetLeaderboard(ctx context.Context) ([]LeaderboardEntry, error) {
	out := &leaderboardData{}
	if err := c.get(ctx, "/leaderboard", "", out); err != nil {
		return nil, err
	}
	return out.Leaderboard, nil
}

// GetPortfolio fetches the caller's portfolio. Bearer-authorized.
func (c *Client) GetPortfolio(ctx context.Context, token, userID string) (*Portfolio, error) {
	out := &Portfolio{}
	path := "/portfolio?user_id=" + url.QueryEscape(userID)
	if err := c.get(ctx, path, token, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExecuteTrade posts a buy/sell order. Bearer-authorized. A success:false
// envelope (insufficient balance, insufficient shares, unknown symbol) is
// returned as *Error carrying the server's message.
func (c *Client) ExecuteTrade(ctx context.Context, token string, req TradeRequest) (*TradeResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal trade request: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, "/trade", token, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var resp tradeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode trade response: %w", err)
	}
	if !resp.Success {
		return nil, &Error{Message: resp.Message}
	}
	return &resp.Trade, nil
}

// get performs a GET, unwraps the envelope, and decodes data into out.
func (c *Client) get(ctx context.Context, path, token string, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	if !env.Success {
		return &Error{Message: env.Message}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", method, path, err)
	}
	return data, nil
}
