package handler

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"telegram-casino-bot/internal/config"
	"telegram-casino-bot/internal/game"
	"telegram-casino-bot/internal/pkg/money"
	"telegram-casino-bot/internal/service"
)

// AccountHandler handles balance and work commands.
type AccountHandler struct {
	cfg    *config.CasinoConfig
	ledger *service.Ledger
	work   *service.WorkService
	games  *game.Registry
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(cfg *config.CasinoConfig, ledger *service.Ledger, work *service.WorkService, games *game.Registry) *AccountHandler {
	return &AccountHandler{cfg: cfg, ledger: ledger, work: work, games: games}
}

// HandleStart handles /start and /help.
func (h *AccountHandler) HandleStart(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎲 어서오세요 @%s!\n\n", displayName(sender))
	b.WriteString("/balance - 잔액 확인\n")
	b.WriteString("/work - 일해서 돈 벌기\n")
	for _, g := range h.games.List() {
		fmt.Fprintf(&b, "/%s <배팅액|올인> - %s\n", g.Command(), g.Name())
	}
	b.WriteString("/jackpot [배팅액] - 잭팟\n")
	b.WriteString("/pay <금액> (답장 또는 @이름) - 송금\n")
	b.WriteString("/rank - 부자 순위\n")
	b.WriteString("/daily_top - 오늘의 승자와 패자\n\n")
	fmt.Fprintf(&b, "배팅 한도: %s 이상 %s 미만", money.Coins(h.cfg.MinBet), money.Coins(h.cfg.MaxBet))
	return c.Reply(b.String())
}

// HandleBalance handles /balance.
func (h *AccountHandler) HandleBalance(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	balance, err := h.ledger.GetBalance(context.Background(), sender.ID, serverID(c))
	if err != nil {
		return replyError(c, h.cfg, err)
	}
	return c.Reply(fmt.Sprintf("💰 @%s 님의 잔액: %s", displayName(sender), money.Coins(balance)))
}

// HandleWork handles /work.
func (h *AccountHandler) HandleWork(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	res, err := h.work.Work(context.Background(), sender.ID, serverID(c))
	if err != nil {
		return replyError(c, h.cfg, err)
	}
	return c.Reply(fmt.Sprintf(
		"💼 열심히 일했습니다!\n급여: %s\n소득세: %s\n실수령: %s\n잔액: %s",
		money.Coins(res.Gross), money.Coins(res.Tax), money.Coins(res.Net), money.Coins(res.Balance),
	))
}
