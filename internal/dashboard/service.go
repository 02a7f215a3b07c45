package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tradequest/tradequest/internal/api"
	"github.com/tradequest/tradequest/internal/poller"
	"github.com/tradequest/tradequest/internal/recorder"
	"github.com/tradequest/tradequest/internal/session"
)

// Kind identifies which snapshot slot an update event refers to.
type Kind int

const (
	KindPrices Kind = iota
	KindPortfolio
	KindNews
	KindLeaderboard
)

// Event notifies subscribers that a snapshot slot was refreshed.
type Event struct {
	Kind Kind
}

var (
	ErrInvalidAction   = errors.New(`action must be "buy" or "sell"`)
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// slot pairs a snapshot with the poller sequence that produced it, so a
// late-arriving response from a superseded fetch can be discarded.
type slot[T any] struct {
	value T
	seq   uint64
}

// set applies v if seq is newer than the last applied fetch.
func (s *slot[T]) set(v T, seq uint64) bool {
	if seq <= s.seq {
		return false
	}
	s.value = v
	s.seq = seq
	return true
}

// Service is the dashboard controller: it polls the four read endpoints on
// independent intervals, holds the latest snapshot of each, and dispatches
// trade requests. Read failures are logged and skipped so the previous
// snapshot stays on screen; write failures are surfaced to the caller.
type Service struct {
	cfg  Config
	api  *api.Client
	sess *session.Session
	rec  recorder.Recorder
	log  zerolog.Logger

	mu          sync.RWMutex
	prices      slot[*api.PriceData]
	portfolio   slot[*api.Portfolio]
	news        slot[[]api.Article]
	leaderboard slot[[]api.LeaderboardEntry]

	pollers         []*poller.Poller
	portfolioPoller *poller.Poller

	events        chan Event
	droppedEvents atomic.Int64

	closed    chan struct{}
	closeOnce sync.Once
}

// NewService creates a dashboard service bound to an established session.
// The session is owned by the caller and read-only here.
func NewService(cfg Config, client *api.Client, sess *session.Session, rec recorder.Recorder, log zerolog.Logger) *Service {
	cfg = cfg.withDefaults()
	if rec == nil {
		rec = recorder.Noop{}
	}

	s := &Service{
		cfg:    cfg,
		api:    client,
		sess:   sess,
		rec:    rec,
		log:    log.With().Str("component", "dashboard").Logger(),
		events: make(chan Event, cfg.EventBuffer),
		closed: make(chan struct{}),
	}

	s.portfolioPoller = poller.New("portfolio", cfg.PortfolioInterval, s.fetchPortfolio)
	s.pollers = []*poller.Poller{
		poller.New("prices", cfg.PricesInterval, s.fetchPrices),
		s.portfolioPoller,
		poller.New("news", cfg.NewsInterval, s.fetchNews),
		poller.New("leaderboard", cfg.LeaderboardInterval, s.fetchLeaderboard),
	}
	return s
}

// Start launches all pollers. Each fires immediately once.
func (s *Service) Start(ctx context.Context) {
	for _, p := range s.pollers {
		p.Start(ctx)
	}
}

// Prices returns the latest prices snapshot, or nil before the first fetch.
func (s *Service) Prices() *api.PriceData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prices.value
}

// Portfolio returns the latest portfolio snapshot, or nil before the first fetch.
func (s *Service) Portfolio() *api.Portfolio {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.portfolio.value
}

// News returns the latest news snapshot.
func (s *Service) News() []api.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.news.value
}

// Leaderboard returns the latest leaderboard snapshot.
func (s *Service) Leaderboard() []api.LeaderboardEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.leaderboard.value
}

// RecentTrades returns the user's locally recorded trades, newest first.
func (s *Service) RecentTrades(n int) []recorder.TradeRecord {
	recs, err := s.rec.Recent(n)
	if err != nil {
		s.log.Warn().Err(err).Msg("read local trade log")
		return nil
	}
	return recs
}

// Trade submits a buy/sell order. On success the executed fill is recorded
// locally and an immediate portfolio refresh is triggered. Business-rule
// rejections come back as *api.Error carrying the server's message.
func (s *Service) Trade(ctx context.Context, symbol, action string, quantity int) (*api.TradeResult, error) {
	if action != "buy" && action != "sell" {
		return nil, ErrInvalidAction
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	res, err := s.api.ExecuteTrade(ctx, s.sess.Token, api.TradeRequest{
		UserID:   s.sess.UserID,
		Symbol:   symbol,
		Action:   action,
		Quantity: quantity,
	})
	if err != nil {
		return nil, err
	}

	id := res.TradeID
	if id == "" {
		id = uuid.NewString()
	}
	if err := s.rec.Record(&recorder.TradeRecord{
		ID:         id,
		Symbol:     res.Symbol,
		Action:     res.Action,
		Quantity:   res.Quantity,
		Price:      res.Price,
		TotalValue: res.TotalValue,
		ExecutedAt: time.Now().UTC(),
	}); err != nil {
		s.log.Warn().Err(err).Msg("record trade locally")
	}

	s.log.Info().Str("symbol", symbol).Str("action", action).Int("quantity", quantity).Msg("trade executed")
	s.portfolioPoller.Trigger()
	return res, nil
}

// Events returns the update events channel. Closed by Close.
func (s *Service) Events() <-chan Event {
	return s.events
}

// DroppedEvents returns the count of update events dropped on overflow.
func (s *Service) DroppedEvents() int64 {
	return s.droppedEvents.Load()
}

// Close stops all pollers (cancelling in-flight fetches) and closes the
// events channel. Safe to call more than once.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		for _, p := range s.pollers {
			p.Stop()
		}
		close(s.events)
	})
}

func (s *Service) emit(kind Kind) {
	ev := Event{Kind: kind}
	if s.cfg.DropEvents {
		select {
		case s.events <- ev:
		case <-s.closed:
		default:
			s.droppedEvents.Add(1)
		}
		return
	}
	select {
	case s.events <- ev:
	case <-s.closed:
	}
}

func (s *Service) fetchPrices(ctx context.Context, seq uint64) {
	data, err := s.api.GetPrices(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("prices poll failed")
		return
	}
	apply(s, &s.prices, data, seq, KindPrices)
}

func (s *Service) fetchPortfolio(ctx context.Context, seq uint64) {
	data, err := s.api.GetPortfolio(ctx, s.sess.Token, s.sess.UserID)
	if err != nil {
		s.log.Debug().Err(err).Msg("portfolio poll failed")
		return
	}
	apply(s, &s.portfolio, data, seq, KindPortfolio)
}

func (s *Service) fetchNews(ctx context.Context, seq uint64) {
	articles, err := s.api.GetNews(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("news poll failed")
		return
	}
	apply(s, &s.news, articles, seq, KindNews)
}

func (s *Service) fetchLeaderboard(ctx context.Context, seq uint64) {
	entries, err := s.api.GetLeaderboard(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("leaderboard poll failed")
		return
	}
	apply(s, &s.leaderboard, entries, seq, KindLeaderboard)
}

func apply[T any](s *Service, sl *slot[T], v T, seq uint64, kind Kind) {
	s.mu.Lock()
	applied := sl.set(v, seq)
	s.mu.Unlock()
	if applied {
		s.emit(kind)
	}
}
