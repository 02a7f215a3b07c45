package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tradequest/tradequest/internal/api"
	"github.com/tradequest/tradequest/internal/config"
	"github.com/tradequest/tradequest/internal/dashboard"
	"github.com/tradequest/tradequest/internal/identity"
	"github.com/tradequest/tradequest/internal/recorder"
	"github.com/tradequest/tradequest/internal/session"
	"github.com/tradequest/tradequest/tui"
)

var (
	configPath string
	debug      bool
)

func main() {
	root := &cobra.Command{
		Use:          "tradequest",
		Short:        "Terminal client for the Trade Quest stock trading game",
		RunE:         run,
		SilenceUsage: true,
	}

	home, _ := os.UserHomeDir()
	root.Flags().StringVarP(&configPath, "config", "c", filepath.Join(home, ".tradequest", "config.yaml"), "config file path")
	root.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, logFile, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logFile.Close()

	idp := identity.NewClient(cfg.Identity.Endpoint, cfg.Identity.ClientID, log)
	sessions := session.NewManager(idp, cfg.Identity.CacheFile, log)
	client := api.NewClient(cfg.API.BaseURL, cfg.API.RateLimit, cfg.API.Timeout, log)

	var rec recorder.Recorder
	if sq, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath); err != nil {
		log.Warn().Err(err).Msg("trade log unavailable, running without local history")
		rec = recorder.Noop{}
	} else {
		rec = sq
	}
	defer rec.Close()

	dashCfg := dashboard.DefaultConfig()
	dashCfg.PricesInterval = cfg.Dashboard.PricesInterval
	dashCfg.PortfolioInterval = cfg.Dashboard.PortfolioInterval
	dashCfg.NewsInterval = cfg.Dashboard.NewsInterval
	dashCfg.LeaderboardInterval = cfg.Dashboard.LeaderboardInterval

	model := tui.New(sessions, client, rec, dashCfg, log)
	program := tea.NewProgram(model, tea.WithAltScreen())

	log.Info().Str("api", cfg.API.BaseURL).Msg("starting")
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// newLogger writes structured logs to a file so the TUI keeps sole ownership
// of the terminal.
func newLogger(cfg *config.Config) (zerolog.Logger, *os.File, error) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if debug {
		level = zerolog.DebugLevel
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o700); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("open log file: %w", err)
	}

	log := zerolog.New(f).Level(level).With().Timestamp().Logger()
	return log, f, nil
}
