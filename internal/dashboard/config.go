package dashboard

import "time"

// Config holds polling intervals and event buffering for the dashboard.
type Config struct {
	// PricesInterval is the refresh period for the prices snapshot.
	PricesInterval time.Duration
	// PortfolioInterval is the refresh period for the portfolio snapshot.
	PortfolioInterval time.Duration
	// NewsInterval is the refresh period for the news snapshot.
	NewsInterval time.Duration
	// LeaderboardInterval is the refresh period for the leaderboard snapshot.
	LeaderboardInterval time.Duration
	// EventBuffer is the size of the external update events channel.
	EventBuffer int
	// DropEvents determines whether the events channel drops on overflow.
	DropEvents bool
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		PricesInterval:      time.Second,
		PortfolioInterval:   time.Second,
		NewsInterval:        10 * time.Second,
		LeaderboardInterval: 30 * time.Second,
		EventBuffer:         64,
		DropEvents:          true,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PricesInterval <= 0 {
		c.PricesInterval = d.PricesInterval
	}
	if c.PortfolioInterval <= 0 {
		c.PortfolioInterval = d.PortfolioInterval
	}
	if c.NewsInterval <= 0 {
		c.NewsInterval = d.NewsInterval
	}
	if c.LeaderboardInterval <= 0 {
		c.LeaderboardInterval = d.LeaderboardInterval
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = d.EventBuffer
	}
	return c
}
