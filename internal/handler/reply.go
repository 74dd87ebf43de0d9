package handler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"telegram-casino-bot/internal/casino"
	"telegram-casino-bot/internal/config"
	"telegram-casino-bot/internal/pkg/lock"
	"telegram-casino-bot/internal/pkg/money"
	"telegram-casino-bot/internal/service"
)

// ErrorText turns a service or session error into a reply. known is
// false for errors that are not the user's doing.
func ErrorText(cfg *config.CasinoConfig, err error) (text string, known bool) {
	var cd *service.CooldownError
	switch {
	case errors.Is(err, casino.ErrJackpotCooldown) && errors.As(err, &cd):
		return fmt.Sprintf("⏰ 잭팟 당첨 후에는 %s 뒤에 다시 도전할 수 있습니다.", seconds(cd.Remaining)), true
	case errors.As(err, &cd):
		return fmt.Sprintf("⏰ %s 후에 다시 시도해주세요.", seconds(cd.Remaining)), true
	case errors.Is(err, casino.ErrGameInProgress):
		return "🎮 이미 진행 중인 게임이 있습니다.", true
	case errors.Is(err, casino.ErrTimeoutExpired):
		return "⏰ 시간 안에 선택하지 않아 게임이 취소되었습니다.", true
	case errors.Is(err, casino.ErrInvalidBet):
		return "❌ 배팅액은 숫자 또는 '올인'으로 입력해주세요.", true
	case errors.Is(err, casino.ErrBetTooLow):
		return fmt.Sprintf("❌ 최소 배팅액은 %s입니다.", money.Coins(cfg.MinBet)), true
	case errors.Is(err, casino.ErrBetTooHigh):
		return fmt.Sprintf("❌ 배팅액은 %s 미만이어야 합니다.", money.Coins(cfg.MaxBet)), true
	case errors.Is(err, service.ErrJackpotBetTooLarge):
		return fmt.Sprintf("❌ 잭팟 배팅액은 %s 미만이어야 합니다.", money.Coins(cfg.MaxBet)), true
	case errors.Is(err, service.ErrJackpotBetTooSmall):
		return fmt.Sprintf("❌ 잭팟 배팅액은 %s 이상이면서 잔액의 1%% 이상이어야 합니다.", money.Coins(cfg.MinJackpotBet)), true
	case errors.Is(err, service.ErrFundsStaked):
		return "🎲 진행 중인 게임에 걸린 배팅금은 사용할 수 없습니다.", true
	case errors.Is(err, service.ErrInsufficientFunds):
		return "💸 잔액이 부족합니다.", true
	case errors.Is(err, service.ErrSelfTransfer):
		return "❌ 자기 자신에게는 송금할 수 없습니다.", true
	case errors.Is(err, service.ErrTransferRange):
		return fmt.Sprintf("❌ 송금액은 %s 초과, %s 미만이어야 합니다.",
			money.Coins(cfg.Transfer.Min), money.Coins(cfg.Transfer.Max)), true
	case errors.Is(err, service.ErrInvalidAmount):
		return "❌ 금액은 양의 정수여야 합니다.", true
	case errors.Is(err, service.ErrUserNotFound):
		return "❌ 해당 사용자를 찾을 수 없습니다. 상대가 봇을 한 번 이상 사용해야 합니다.", true
	case errors.Is(err, casino.ErrUnknownGame):
		return "❌ 알 수 없는 게임입니다.", true
	case errors.Is(err, lock.ErrLockTimeout):
		return "⏳ 요청이 몰리고 있습니다. 잠시 후 다시 시도해주세요.", true
	default:
		return "❌ 처리 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요.", false
	}
}

func seconds(n int64) string {
	if n >= 60 {
		return strconv.FormatInt(n/60, 10) + "분 " + strconv.FormatInt(n%60, 10) + "초"
	}
	return strconv.FormatInt(n, 10) + "초"
}

func replyError(c tele.Context, cfg *config.CasinoConfig, err error) error {
	text, known := ErrorText(cfg, err)
	if !known {
		log.Error().Err(err).Str("text", c.Text()).Msg("Command failed")
	}
	return c.Reply(text)
}

// displayName prefers the username and falls back to the first name.
func displayName(u *tele.User) string {
	if u.Username != "" {
		return u.Username
	}
	return u.FirstName
}

// serverID is the chat the command came from. Private chats use the
// user's own ID.
func serverID(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	if sender := c.Sender(); sender != nil {
		return sender.ID
	}
	return 0
}
