package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v3"

	"telegram-casino-bot/internal/service"
)

// ParseAmount parses a positive amount, allowing thousands separators.
func ParseAmount(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(s), ",", ""), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", service.ErrInvalidAmount, s)
	}
	return n, nil
}

// targetUser resolves "<user_id|@name> <amount>" or "<amount>" as a reply.
func targetUser(ctx context.Context, users *service.UserService, msg *tele.Message, args []string) (userID int64, amountArg string, err error) {
	if msg != nil && msg.ReplyTo != nil && msg.ReplyTo.Sender != nil && len(args) == 1 {
		return msg.ReplyTo.Sender.ID, args[0], nil
	}
	if len(args) < 2 {
		return 0, "", errUsage
	}
	if strings.HasPrefix(args[0], "@") {
		u, err := users.FindByName(ctx, args[0])
		if err != nil {
			return 0, "", err
		}
		return u.UserID, args[1], nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, "", errUsage
	}
	return id, args[1], nil
}
