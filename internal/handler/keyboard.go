package handler

import (
	"strings"

	"github.com/samber/lo"
	tele "gopkg.in/telebot.v3"

	"telegram-casino-bot/internal/game"
)

// ChoiceUnique is the callback endpoint of every game choice button.
const ChoiceUnique = "game"

// ChoiceEndpoint is the button registered with the bot for game choices.
var ChoiceEndpoint = &tele.Btn{Unique: ChoiceUnique}

// maxButtonsPerRow keeps dice faces on one row and everything else readable.
const maxButtonsPerRow = 3

// BuildChoicePanel creates an inline keyboard for the prompt's choices.
// Button payloads are "<session>|<choice key>".
func BuildChoicePanel(sessionID string, choices []game.Choice) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}

	buttons := lo.Map(choices, func(c game.Choice, _ int) tele.Btn {
		return markup.Data(c.Label, ChoiceUnique, sessionID, c.Key)
	})
	rows := lo.Map(lo.Chunk(buttons, maxButtonsPerRow), func(btns []tele.Btn, _ int) tele.Row {
		return markup.Row(btns...)
	})

	markup.Inline(rows...)
	return markup
}

// DecodeChoice splits a choice callback payload.
func DecodeChoice(data string) (sessionID, key string, ok bool) {
	data = strings.TrimPrefix(data, "\f")
	data = strings.TrimPrefix(data, ChoiceUnique+"|")
	sessionID, key, ok = strings.Cut(data, "|")
	if !ok || sessionID == "" || key == "" {
		return "", "", false
	}
	return sessionID, key, true
}
