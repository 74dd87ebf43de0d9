// Package handler provides Telegram bot command handlers.
package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-casino-bot/internal/casino"
	"telegram-casino-bot/internal/config"
	"telegram-casino-bot/internal/game"
	"telegram-casino-bot/internal/pkg/money"
	"telegram-casino-bot/internal/service"
)

// GameHandler handles game commands and choice buttons.
type GameHandler struct {
	cfg      *config.CasinoConfig
	coord    *casino.Coordinator
	jackpot  *service.JackpotPool
	sessions *Sessions
	cleaner  *MessageCleaner
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(
	cfg *config.CasinoConfig,
	coord *casino.Coordinator,
	jackpot *service.JackpotPool,
	sessions *Sessions,
	cleaner *MessageCleaner,
) *GameHandler {
	return &GameHandler{
		cfg:      cfg,
		coord:    coord,
		jackpot:  jackpot,
		sessions: sessions,
		cleaner:  cleaner,
	}
}

// HandleGame returns the handler of /<command> <bet> for the game t.
func (h *GameHandler) HandleGame(t game.Type) tele.HandlerFunc {
	return func(c tele.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		g, ok := h.coord.Games().ByType(t)
		if !ok {
			return replyError(c, h.cfg, casino.ErrUnknownGame)
		}

		args := c.Args()
		if len(args) < 1 {
			return c.Reply(fmt.Sprintf("❌ 사용법: /%s <배팅액|올인>\n%s", g.Command(), g.Description()))
		}

		sessionID := uuid.New()
		table := h.sessions.NewTable(c.Bot(), c.Chat(), sender.ID, sessionID.String(), h.cleaner)

		out, err := h.coord.Play(context.Background(), casino.Request{
			SessionID: sessionID,
			UserID:    sender.ID,
			ServerID:  serverID(c),
			Game:      t,
			BetArg:    args[0],
		}, table)
		if err != nil {
			if errors.Is(err, casino.ErrTimeoutExpired) {
				text, _ := ErrorText(h.cfg, err)
				return table.Finish(fmt.Sprintf("@%s %s", displayName(sender), text))
			}
			return replyError(c, h.cfg, err)
		}

		return table.Finish(fmt.Sprintf("@%s\n%s", displayName(sender), out.Text()))
	}
}

// HandleChoice routes a game button press to its waiting session.
func (h *GameHandler) HandleChoice(c tele.Context) error {
	callback := c.Callback()
	sender := c.Sender()
	if callback == nil || sender == nil {
		return nil
	}

	sessionID, key, ok := DecodeChoice(callback.Data)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "❌ 잘못된 선택입니다."})
	}

	err := h.sessions.Deliver(sessionID, sender.ID, key)
	switch {
	case err == nil:
		return c.Respond()
	case errors.Is(err, ErrNotOwner):
		return c.Respond(&tele.CallbackResponse{Text: "🙅 다른 사람의 게임입니다.", ShowAlert: true})
	case errors.Is(err, ErrSessionClosed):
		return c.Respond(&tele.CallbackResponse{Text: "⌛ 이미 끝난 게임입니다."})
	default:
		log.Debug().Err(err).Str("session_id", sessionID).Msg("Rejected game choice")
		return c.Respond(&tele.CallbackResponse{Text: "❌ 잘못된 선택입니다."})
	}
}

// HandleJackpot handles /jackpot [bet]. Without a bet it shows the pool.
func (h *GameHandler) HandleJackpot(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	if len(args) < 1 {
		pool, err := h.jackpot.Amount(ctx, serverID(c))
		if err != nil {
			return replyError(c, h.cfg, err)
		}
		return c.Reply(fmt.Sprintf(
			"🎰 현재 잭팟: %s\n\n/jackpot <배팅액> 으로 도전하세요. 최소 %s, 잔액의 1%% 이상.",
			money.Coins(pool), money.Coins(h.cfg.MinJackpotBet),
		))
	}

	out, err := h.coord.PlayJackpot(ctx, sender.ID, serverID(c), args[0])
	if err != nil {
		return replyError(c, h.cfg, err)
	}

	msg, err := c.Bot().Send(c.Chat(), fmt.Sprintf("@%s\n%s", displayName(sender), out.Text()))
	if err == nil {
		h.cleaner.Track(msg)
	}
	return err
}
