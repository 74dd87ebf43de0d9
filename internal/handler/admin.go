package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-casino-bot/internal/config"
	"telegram-casino-bot/internal/model"
	"telegram-casino-bot/internal/pkg/money"
	"telegram-casino-bot/internal/service"
)

var errUsage = errors.New("usage")

const adminUsage = "❌ 사용법: /%s <user_id|@이름> <금액> 또는 대상 메시지에 답장하며 /%s <금액>"

// AdminHandler handles admin-only commands.
type AdminHandler struct {
	cfg     *config.CasinoConfig
	ledger  *service.Ledger
	jackpot *service.JackpotPool
	users   *service.UserService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(cfg *config.CasinoConfig, ledger *service.Ledger, jackpot *service.JackpotPool, users *service.UserService) *AdminHandler {
	return &AdminHandler{cfg: cfg, ledger: ledger, jackpot: jackpot, users: users}
}

// HandleAdminAdd handles /admin_add.
func (h *AdminHandler) HandleAdminAdd(c tele.Context) error {
	return h.adjust(c, "admin_add", model.TxTypeAdminAdd, 1)
}

// HandleAdminSub handles /admin_sub. The balance is clamped at zero.
func (h *AdminHandler) HandleAdminSub(c tele.Context) error {
	return h.adjust(c, "admin_sub", model.TxTypeAdminSub, -1)
}

func (h *AdminHandler) adjust(c tele.Context, command, txType string, sign int64) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	targetID, amountArg, err := targetUser(ctx, h.users, c.Message(), c.Args())
	if errors.Is(err, errUsage) {
		return c.Reply(fmt.Sprintf(adminUsage, command, command))
	}
	if err != nil {
		return replyError(c, h.cfg, err)
	}
	amount, err := ParseAmount(amountArg)
	if err != nil {
		return replyError(c, h.cfg, err)
	}

	res, err := h.ledger.Settle(ctx, service.Settlement{
		UserID:      targetID,
		ServerID:    serverID(c),
		Delta:       sign * amount,
		TxType:      txType,
		Description: fmt.Sprintf("by admin %d", sender.ID),
	})
	if err != nil {
		return replyError(c, h.cfg, err)
	}

	log.Info().
		Int64("admin_id", sender.ID).
		Int64("target_id", targetID).
		Int64("server_id", serverID(c)).
		Int64("amount", sign*amount).
		Str("operation", command).
		Msg("Admin operation executed")

	return c.Reply(fmt.Sprintf("✅ 처리 완료\n대상: %d\n변동: %s\n잔액: %s",
		targetID, money.Coins(res.Balance-res.Before), money.Coins(res.Balance)))
}

// HandleAdminSet handles /admin_set.
func (h *AdminHandler) HandleAdminSet(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	targetID, amountArg, err := targetUser(ctx, h.users, c.Message(), c.Args())
	if errors.Is(err, errUsage) {
		return c.Reply(fmt.Sprintf(adminUsage, "admin_set", "admin_set"))
	}
	if err != nil {
		return replyError(c, h.cfg, err)
	}
	balance, err := ParseAmount(amountArg)
	if amountArg == "0" {
		balance, err = 0, nil
	}
	if err != nil {
		return replyError(c, h.cfg, err)
	}

	res, err := h.ledger.SetBalance(ctx, targetID, serverID(c), balance)
	if err != nil {
		return replyError(c, h.cfg, err)
	}

	log.Info().
		Int64("admin_id", sender.ID).
		Int64("target_id", targetID).
		Int64("before", res.Before).
		Int64("balance", res.Balance).
		Str("operation", "admin_set").
		Msg("Admin operation executed")

	return c.Reply(fmt.Sprintf("✅ 잔액 설정\n대상: %d\n이전: %s\n현재: %s",
		targetID, money.Coins(res.Before), money.Coins(res.Balance)))
}

// HandleJackpotReset handles /jackpot_reset for the current chat.
func (h *AdminHandler) HandleJackpotReset(c tele.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	if err := h.jackpot.Reset(context.Background(), serverID(c)); err != nil {
		return replyError(c, h.cfg, err)
	}

	log.Info().
		Int64("admin_id", sender.ID).
		Int64("server_id", serverID(c)).
		Str("operation", "jackpot_reset").
		Msg("Admin operation executed")

	return c.Reply(fmt.Sprintf("🎰 잭팟이 %s으로 초기화되었습니다.", money.Coins(h.jackpot.Config().Initial)))
}
