// Package httpapi serves read-only operational endpoints next to the bot.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"telegram-casino-bot/internal/model"
)

const (
	defaultLimit = 10
	maxLimit     = 100
)

// HealthCheck reports storage health.
type HealthCheck func(ctx context.Context) error

// Jackpots reads pool amounts.
type Jackpots interface {
	Amount(ctx context.Context, serverID int64) (int64, error)
}

// Rankings reads leaderboards.
type Rankings interface {
	TopBalances(ctx context.Context, serverID int64, limit int) ([]*model.RankEntry, error)
	DailyWinners(ctx context.Context, serverID int64, limit int) ([]*model.DailyRank, error)
	DailyLosers(ctx context.Context, serverID int64, limit int) ([]*model.DailyRank, error)
}

// Server is the ops HTTP API.
type Server struct {
	engine   *gin.Engine
	addr     string
	health   HealthCheck
	jackpots Jackpots
	rankings Rankings
}

// New creates a Server listening on addr.
func New(addr string, health HealthCheck, jackpots Jackpots, rankings Rankings) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	s := &Server{engine: engine, addr: addr, health: health, jackpots: jackpots, rankings: rankings}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.healthz)

	servers := s.engine.Group("/servers/:id")
	servers.GET("/jackpot", s.jackpot)
	servers.GET("/ranking", s.ranking)
	servers.GET("/daily", s.daily)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.addr).Msg("HTTP API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) healthz(c *gin.Context) {
	if err := s.health(c.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("Health check failed")
		Error(c, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	OK(c, gin.H{"status": "ok"})
}

func (s *Server) jackpot(c *gin.Context) {
	serverID, ok := parseServerID(c)
	if !ok {
		return
	}
	amount, err := s.jackpots.Amount(c.Request.Context(), serverID)
	if err != nil {
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "failed to read jackpot")
		return
	}
	OK(c, gin.H{"server_id": serverID, "amount": amount})
}

func (s *Server) ranking(c *gin.Context) {
	serverID, ok := parseServerID(c)
	if !ok {
		return
	}
	entries, err := s.rankings.TopBalances(c.Request.Context(), serverID, parseLimit(c))
	if err != nil {
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "failed to read ranking")
		return
	}
	OK(c, entries)
}

func (s *Server) daily(c *gin.Context) {
	serverID, ok := parseServerID(c)
	if !ok {
		return
	}
	limit := parseLimit(c)
	winners, err := s.rankings.DailyWinners(c.Request.Context(), serverID, limit)
	if err != nil {
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "failed to read daily ranking")
		return
	}
	losers, err := s.rankings.DailyLosers(c.Request.Context(), serverID, limit)
	if err != nil {
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "failed to read daily ranking")
		return
	}
	OK(c, gin.H{"winners": winners, "losers": losers})
}

func parseServerID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		Error(c, http.StatusBadRequest, "server id must be an integer")
		return 0, false
	}
	return id, true
}

func parseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	return min(limit, maxLimit)
}

// requestLogger logs every request except health checks.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := log.Debug()
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Strs("errors", c.Errors.Errors()).
			Msg("Request completed")
	}
}
