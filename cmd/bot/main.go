// Package main is the entry point for the Telegram casino bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"telegram-casino-bot/internal/bot"
	"telegram-casino-bot/internal/casino"
	"telegram-casino-bot/internal/config"
	"telegram-casino-bot/internal/handler"
	"telegram-casino-bot/internal/httpapi"
	"telegram-casino-bot/internal/pkg/db"
	"telegram-casino-bot/internal/repository"
	"telegram-casino-bot/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogger(&cfg.Log)
	log.Info().Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, health, closeStore, err := openStore(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer closeStore()

	if err := run(ctx, cfg, store, health); err != nil {
		log.Fatal().Err(err).Msg("Bot stopped with error")
	}
	log.Info().Msg("Bot stopped gracefully")
}

func setupLogger(cfg *config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if !cfg.Pretty {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

// openStore connects the configured storage driver.
func openStore(ctx context.Context, cfg *config.DatabaseConfig) (service.Store, httpapi.HealthCheck, func(), error) {
	if cfg.Driver == config.DriverMemory {
		log.Warn().Msg("Using in-memory storage, balances are lost on restart")
		return service.NewMemoryStore(), func(context.Context) error { return nil }, func() {}, nil
	}

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	return service.NewPostgresStore(repository.NewStore(pool.Pool)), pool.HealthCheck, pool.Close, nil
}

func run(ctx context.Context, cfg *config.Config, store service.Store, health httpapi.HealthCheck) error {
	cc := &cfg.Casino

	taxes, err := cc.Tax.Calculator()
	if err != nil {
		return err
	}
	clocks, err := cc.Jackpot.Clocks()
	if err != nil {
		return err
	}
	loc, err := cc.Jackpot.Location()
	if err != nil {
		return err
	}

	ledger := service.NewLedger(store, taxes, service.LedgerConfig{
		JackpotInitial: cc.Jackpot.Initial,
		TransferMin:    cc.Transfer.Min,
		TransferMax:    cc.Transfer.Max,
	})
	cooldowns := service.NewCooldownGate(store)
	jackpot := service.NewJackpotPool(ledger, taxes, service.JackpotConfig{
		Initial:      cc.Jackpot.Initial,
		MinBet:       cc.MinJackpotBet,
		MaxBet:       cc.MaxBet,
		WinChance:    cc.Jackpot.WinChance,
		Contribution: cc.Jackpot.Contribution(),
		WinCooldown:  cc.Jackpot.WinCooldown(),
	})
	work := service.NewWorkService(ledger, taxes, service.WorkConfig{
		MinReward: cc.Work.MinReward,
		MaxReward: cc.Work.MaxReward,
		Cooldown:  cc.WorkCooldown(),
	})
	ranking := service.NewRankingService(store, loc)
	users := service.NewUserService(store)

	games, err := casino.DefaultRegistry()
	if err != nil {
		return err
	}
	coord := casino.NewCoordinator(games, ledger, cooldowns, jackpot, taxes, casino.ConfigFrom(cc))
	log.Info().
		Int("game_count", games.Count()).
		Strs("games", games.Commands()).
		Msg("Games registered")

	scheduler, err := service.NewResetScheduler(jackpot, clocks, loc)
	if err != nil {
		return err
	}

	teleBot, err := bot.NewTeleBot(cfg)
	if err != nil {
		return err
	}
	cleaner := handler.NewMessageCleaner(teleBot, handler.MessageDeleteInterval)
	sessions := handler.NewSessions(cc.ChoiceTimeout)

	telegramBot := bot.New(teleBot, cfg, &bot.Dependencies{
		Users:    users,
		Games:    games,
		Account:  handler.NewAccountHandler(cc, ledger, work, games),
		Transfer: handler.NewTransferHandler(cc, ledger, users),
		Admin:    handler.NewAdminHandler(cc, ledger, jackpot, users),
		Ranking:  handler.NewRankingHandler(cc, ranking),
		Game:     handler.NewGameHandler(cc, coord, jackpot, sessions, cleaner),
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return telegramBot.Run(ctx) })
	g.Go(func() error { return scheduler.Run(ctx) })
	g.Go(func() error { return cleaner.Run(ctx, handler.MessageCleanPeriod) })
	if cfg.HTTP.Enabled {
		api := httpapi.New(cfg.HTTP.Addr, health, jackpot, ranking)
		g.Go(func() error { return api.Run(ctx) })
	}
	return g.Wait()
}
