// Package bot wires the Telegram bot: middleware, command routes and the
// polling lifecycle.
package bot

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-casino-bot/internal/config"
	"telegram-casino-bot/internal/game"
	"telegram-casino-bot/internal/handler"
)

// Bot wraps the telebot instance with application dependencies.
type Bot struct {
	bot     *tele.Bot
	cfg     *config.Config
	private *PrivateUsers
	deps    *Dependencies
}

// Dependencies holds all the dependencies needed by the bot handlers.
type Dependencies struct {
	Users    UserDirectory
	Games    *game.Registry
	Account  *handler.AccountHandler
	Transfer *handler.TransferHandler
	Admin    *handler.AdminHandler
	Ranking  *handler.RankingHandler
	Game     *handler.GameHandler
}

// NewTeleBot creates the telebot client without starting it.
func NewTeleBot(cfg *config.Config) (*tele.Bot, error) {
	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	teleBot, err := tele.NewBot(tele.Settings{
		Token:  cfg.Bot.Token,
		Poller: &tele.LongPoller{Timeout: cfg.Bot.PollTimeout},
		OnError: func(err error, c tele.Context) {
			log.Error().Err(err).Msg("Telegram handler error")
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return teleBot, nil
}

// New registers middleware and handlers on teleBot.
func New(teleBot *tele.Bot, cfg *config.Config, deps *Dependencies) *Bot {
	b := &Bot{
		bot:     teleBot,
		cfg:     cfg,
		private: NewPrivateUsers(),
		deps:    deps,
	}
	b.registerMiddleware()
	b.registerHandlers()
	return b
}

// registerMiddleware registers all middleware.
func (b *Bot) registerMiddleware() {
	b.bot.Use(RecoveryMiddleware())
	b.bot.Use(WhitelistMiddleware(b.cfg, b.private))
	b.bot.Use(LoggingMiddleware())
	b.bot.Use(UserMiddleware(b.deps.Users))
}

// registerHandlers registers all command and callback handlers.
func (b *Bot) registerHandlers() {
	d := b.deps

	b.bot.Handle("/start", d.Account.HandleStart)
	b.bot.Handle("/help", d.Account.HandleStart)
	b.bot.Handle("/balance", d.Account.HandleBalance)
	b.bot.Handle("/work", d.Account.HandleWork)

	b.bot.Handle("/pay", d.Transfer.HandlePay)

	b.bot.Handle("/rank", d.Ranking.HandleRank)
	b.bot.Handle("/daily_top", d.Ranking.HandleDailyTop)

	for _, g := range d.Games.List() {
		b.bot.Handle("/"+g.Command(), d.Game.HandleGame(g.Type()))
	}
	b.bot.Handle("/jackpot", d.Game.HandleJackpot)
	b.bot.Handle(handler.ChoiceEndpoint, d.Game.HandleChoice)

	adminGroup := b.bot.Group()
	adminGroup.Use(AdminMiddleware(b.cfg))
	adminGroup.Handle("/admin_add", d.Admin.HandleAdminAdd)
	adminGroup.Handle("/admin_sub", d.Admin.HandleAdminSub)
	adminGroup.Handle("/admin_set", d.Admin.HandleAdminSet)
	adminGroup.Handle("/jackpot_reset", d.Admin.HandleJackpotReset)
}

// Run polls until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	log.Info().Str("username", b.bot.Me.Username).Msg("Starting bot...")

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.bot.Start()
	}()

	<-ctx.Done()
	log.Info().Msg("Stopping bot...")
	b.bot.Stop()
	<-done
	return nil
}
