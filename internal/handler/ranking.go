package handler

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v3"

	"telegram-casino-bot/internal/config"
	"telegram-casino-bot/internal/model"
	"telegram-casino-bot/internal/pkg/money"
	"telegram-casino-bot/internal/service"
)

// RankingLimit is the number of rows shown per leaderboard.
const RankingLimit = 10

var medals = []string{"🥇", "🥈", "🥉"}

// RankingHandler handles ranking-related commands.
type RankingHandler struct {
	cfg     *config.CasinoConfig
	ranking *service.RankingService
}

// NewRankingHandler creates a new RankingHandler.
func NewRankingHandler(cfg *config.CasinoConfig, ranking *service.RankingService) *RankingHandler {
	return &RankingHandler{cfg: cfg, ranking: ranking}
}

// HandleRank handles /rank: the richest users of this chat.
func (h *RankingHandler) HandleRank(c tele.Context) error {
	entries, err := h.ranking.TopBalances(context.Background(), serverID(c), RankingLimit)
	if err != nil {
		return replyError(c, h.cfg, err)
	}

	var b strings.Builder
	b.WriteString("💰 부자 순위\n━━━━━━━━━━━━━━━\n")
	if len(entries) == 0 {
		b.WriteString("아직 기록이 없습니다\n")
	}
	for i, e := range entries {
		fmt.Fprintf(&b, "%s %s: %s\n", place(i), name(e.Username, e.UserID), money.Coins(e.Balance))
	}
	return c.Reply(b.String())
}

// HandleDailyTop handles /daily_top: today's biggest game winners and losers.
func (h *RankingHandler) HandleDailyTop(c tele.Context) error {
	ctx := context.Background()

	winners, err := h.ranking.DailyWinners(ctx, serverID(c), RankingLimit)
	if err != nil {
		return replyError(c, h.cfg, err)
	}
	losers, err := h.ranking.DailyLosers(ctx, serverID(c), RankingLimit)
	if err != nil {
		return replyError(c, h.cfg, err)
	}

	var b strings.Builder
	b.WriteString("📊 오늘의 게임 순위\n━━━━━━━━━━━━━━━\n")
	writeDaily(&b, "🏆 승자 TOP 10", winners)
	b.WriteString("\n")
	writeDaily(&b, "😢 패자 TOP 10", losers)
	b.WriteString("━━━━━━━━━━━━━━━")
	return c.Reply(b.String())
}

func writeDaily(b *strings.Builder, title string, rows []*model.DailyRank) {
	b.WriteString(title + "\n")
	if len(rows) == 0 {
		b.WriteString("아직 기록이 없습니다\n")
		return
	}
	for i, r := range rows {
		sign := ""
		if r.NetProfit > 0 {
			sign = "+"
		}
		fmt.Fprintf(b, "%s %s: %s%s\n", place(i), name(r.Username, r.UserID), sign, money.Format(r.NetProfit))
	}
}

func place(i int) string {
	if i < len(medals) {
		return medals[i]
	}
	return fmt.Sprintf("%d.", i+1)
}

func name(username string, userID int64) string {
	if username == "" {
		return fmt.Sprintf("User%d", userID)
	}
	return username
}
