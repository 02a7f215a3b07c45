package api

import "encoding/json"

// envelope is the uniform response shape of the trading API. success:false is
// the error signal; HTTP status is not branched on beyond that.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Error is a business-rule rejection from the trading API, carrying the
// server's human-readable message.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "trading API request failed"
}

// Quote is one symbol's entry in the prices snapshot.
type Quote struct {
	Current             float64 `json:"current"`
	Timestamp           int64   `json:"timestamp"`
	Datetime            string  `json:"datetime"`
	PeriodHigh          float64 `json:"period_high"`
	PeriodLow           float64 `json:"period_low"`
	HourStart           float64 `json:"hour_start"`
	HourProjectedEnd    float64 `json:"hour_projected_end"`
	PeriodChangePercent float64 `json:"period_change_percent"`
	Error               string  `json:"error,omitempty"`
}

// PriceData is the read-only projection returned by GET /prices.
type PriceData struct {
	Prices        map[string]Quote `json:"prices"`
	CurrentSecond int              `json:"current_second"`
	CurrentTime   string           `json:"current_time"`
}

// Article is one news item. PublishAt is a unix timestamp; older articles may
// only carry Datetime.
type Article struct {
	Headline  string `json:"headline"`
	Article   string `json:"article"`
	Symbol    string `json:"symbol"`
	PublishAt int64  `json:"publish_at"`
	Datetime  string `json:"datetime"`
}

type newsData struct {
	Articles []Article `json:"articles"`
}

// LeaderboardEntry is one ranked row of the leaderboard snapshot.
type LeaderboardEntry struct {
	Rank              int     `json:"rank"`
	UserID            string  `json:"user_id"`
	Username          string  `json:"username"`
	TotalValue        float64 `json:"total_value"`
	ProfitLoss        float64 `json:"profit_loss"`
	ProfitLossPercent float64 `json:"profit_loss_percent"`
	TotalTrades       int     `json:"total_trades"`
}

type leaderboardData struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	TotalUsers  int                `json:"total_users"`
}

// Position is one holding within a portfolio snapshot.
type Position struct {
	Symbol            string  `json:"symbol"`
	Quantity          int     `json:"quantity"`
	AvgPrice          float64 `json:"avg_price"`
	CurrentPrice      float64 `json:"current_price"`
	MarketValue       float64 `json:"market_value"`
	ProfitLoss        float64 `json:"profit_loss"`
	ProfitLossPercent float64 `json:"profit_loss_percent"`
}

// Portfolio is the bearer-authorized projection returned by GET /portfolio.
type Portfolio struct {
	UserID                 string     `json:"user_id"`
	Balance                float64    `json:"balance"`
	PortfolioValue         float64    `json:"portfolio_value"`
	TotalValue             float64    `json:"total_value"`
	TotalProfitLoss        float64    `json:"total_profit_loss"`
	TotalProfitLossPercent float64    `json:"total_profit_loss_percent"`
	TotalTrades            int        `json:"total_trades"`
	Positions              []Position `json:"positions"`
}

// TradeRequest is the body of POST /trade.
type TradeRequest struct {
	UserID   string `json:"user_id"`
	Symbol   string `json:"symbol"`
	Action   string `json:"action"`
	Quantity int    `json:"quantity"`
}

// TradeResult echoes the executed fill on a successful trade.
type TradeResult struct {
	TradeID    string  `json:"trade_id"`
	Symbol     string  `json:"symbol"`
	Action     string  `json:"action"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	TotalValue float64 `json:"total_value"`
	NewBalance float64 `json:"new_balance"`
}

type tradeResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Trade   TradeResult `json:"trade"`
}
