package casino

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"telegram-casino-bot/internal/game"
	"telegram-casino-bot/internal/pkg/money"
)

// Tone is the colour of an outcome card.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneWin
	ToneLose
	ToneJackpot
)

// Emoji returns a marker for chat clients without embed colours.
func (t Tone) Emoji() string {
	switch t {
	case ToneWin:
		return "🟢"
	case ToneLose:
		return "🔴"
	case ToneJackpot:
		return "🟡"
	default:
		return "⚪"
	}
}

// Outcome is the rendered result of one play.
type Outcome struct {
	SessionID uuid.UUID
	Game      game.Type
	Result    game.Outcome
	TimedOut  bool

	Bet        int64
	Multiplier decimal.Decimal // zero unless won
	Winnings   int64           // before tax
	Tax        int64
	Change     int64 // signed balance change
	Balance    int64
	Pool       int64 // jackpot plays only

	Title       string
	Description string
	Tone        Tone
}

// Text renders the outcome as a chat message.
func (o *Outcome) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", o.Tone.Emoji(), o.Title)
	if o.Description != "" {
		b.WriteString(o.Description)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "배팅: %s\n", money.Coins(o.Bet))
	switch {
	case o.Winnings > 0:
		if !o.Multiplier.IsZero() {
			fmt.Fprintf(&b, "배율: x%s\n", o.Multiplier.StringFixed(2))
		}
		fmt.Fprintf(&b, "당첨금: %s\n세금: %s\n변동: %s\n", money.Coins(o.Winnings), money.Coins(o.Tax), signed(o.Change))
	case o.Change < 0:
		fmt.Fprintf(&b, "변동: %s\n", signed(o.Change))
	}
	fmt.Fprintf(&b, "잔액: %s", money.Coins(o.Balance))
	return b.String()
}

func title(g game.Game, res game.Outcome, timedOut bool) (string, Tone) {
	name := g.Name()
	switch {
	case timedOut:
		return name + " - 시간 초과", ToneLose
	case res == game.Win:
		return name + " - 승리!", ToneWin
	case res == game.Push:
		return name + " - 무승부", ToneNeutral
	case res == game.Fold:
		return name + " - 다이", ToneLose
	default:
		return name + " - 패배", ToneLose
	}
}

func signed(n int64) string {
	if n > 0 {
		return "+" + money.Coins(n)
	}
	return money.Coins(n)
}
