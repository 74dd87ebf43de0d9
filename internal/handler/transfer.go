package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	tele "gopkg.in/telebot.v3"

	"telegram-casino-bot/internal/config"
	"telegram-casino-bot/internal/pkg/money"
	"telegram-casino-bot/internal/service"
)

// TransferHandler handles /pay.
type TransferHandler struct {
	cfg    *config.CasinoConfig
	ledger *service.Ledger
	users  *service.UserService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(cfg *config.CasinoConfig, ledger *service.Ledger, users *service.UserService) *TransferHandler {
	return &TransferHandler{cfg: cfg, ledger: ledger, users: users}
}

// HandlePay handles /pay <amount> as a reply, or /pay @username <amount>.
func (h *TransferHandler) HandlePay(c tele.Context) error {
	ctx := context.Background()
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	args := c.Args()
	target, amountArg, err := h.resolveTarget(ctx, c.Message(), args)
	if err != nil {
		return replyError(c, h.cfg, err)
	}
	if target == 0 {
		return c.Reply("❌ 사용법: 받는 사람의 메시지에 답장하며 /pay <금액>, 또는 /pay @이름 <금액>")
	}

	amount, err := ParseAmount(amountArg)
	if err != nil {
		return replyError(c, h.cfg, err)
	}

	res, err := h.ledger.Transfer(ctx, service.TransferRequest{
		From:     sender.ID,
		To:       target,
		ServerID: serverID(c),
		Amount:   amount,
	})
	if err != nil {
		return replyError(c, h.cfg, err)
	}

	return c.Reply(fmt.Sprintf(
		"💸 송금 완료\n보낸 금액: %s\n증여세: %s (잭팟 적립)\n받은 금액: %s\n내 잔액: %s",
		money.Coins(res.Amount), money.Coins(res.Tax), money.Coins(res.Received), money.Coins(res.SenderBalance),
	))
}

// resolveTarget finds the recipient from a reply, a text mention or an
// @username argument, and returns the remaining amount argument.
func (h *TransferHandler) resolveTarget(ctx context.Context, msg *tele.Message, args []string) (int64, string, error) {
	if msg != nil && msg.ReplyTo != nil && msg.ReplyTo.Sender != nil && len(args) >= 1 {
		return msg.ReplyTo.Sender.ID, args[len(args)-1], nil
	}
	if len(args) < 2 {
		return 0, "", nil
	}

	if msg != nil {
		if e, ok := lo.Find(msg.Entities, func(e tele.MessageEntity) bool {
			return e.Type == tele.EntityTMention && e.User != nil
		}); ok {
			return e.User.ID, args[len(args)-1], nil
		}
	}

	if !strings.HasPrefix(args[0], "@") {
		return 0, "", nil
	}
	user, err := h.users.FindByName(ctx, args[0])
	if err != nil {
		return 0, "", err
	}
	return user.UserID, args[1], nil
}
