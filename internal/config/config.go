// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"telegram-casino-bot/internal/tax"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Casino    CasinoConfig    `mapstructure:"casino"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token       string        `mapstructure:"token"`
	PollTimeout time.Duration `mapstructure:"poll_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or memory
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	PoolSize        int           `mapstructure:"pool_size"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// LogConfig controls the global zerolog logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// HTTPConfig holds the ops API listener configuration.
type HTTPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// AdminConfig holds admin user configuration.
type AdminConfig struct {
	IDs []int64 `mapstructure:"ids"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// CasinoConfig holds betting limits, cooldowns and per-game tuning.
type CasinoConfig struct {
	MinBet              int64                      `mapstructure:"min_bet"`
	MaxBet              int64                      `mapstructure:"max_bet"`
	MinJackpotBet       int64                      `mapstructure:"min_jackpot_bet"`
	GameCooldownSeconds int                        `mapstructure:"game_cooldown_seconds"`
	WorkCooldownSeconds int                        `mapstructure:"work_cooldown_seconds"`
	ChoiceTimeout       time.Duration              `mapstructure:"choice_timeout"`
	Games               map[string]MultiplierRange `mapstructure:"games"`
	Jackpot             JackpotConfig              `mapstructure:"jackpot"`
	Tax                 TaxConfig                  `mapstructure:"tax"`
	Transfer            TransferConfig             `mapstructure:"transfer"`
	Work                WorkConfig                 `mapstructure:"work"`
}

// MultiplierRange bounds the random profit multiplier of a game.
type MultiplierRange struct {
	Min float64 `mapstructure:"multiplier_min"`
	Max float64 `mapstructure:"multiplier_max"`
}

// Decimal returns the range bounds rounded to hundredths.
func (m MultiplierRange) Decimal() (low, high decimal.Decimal) {
	return decimal.NewFromFloat(m.Min).Round(2), decimal.NewFromFloat(m.Max).Round(2)
}

// JackpotConfig holds the shared pool settings.
type JackpotConfig struct {
	Initial            int64    `mapstructure:"initial"`
	WinCooldownSeconds int      `mapstructure:"win_cooldown_seconds"`
	WinChance          int      `mapstructure:"win_chance"` // parts per million
	ContributionRate   float64  `mapstructure:"contribution_rate"`
	ResetTimes         []string `mapstructure:"reset_times"`
	Timezone           string   `mapstructure:"timezone"`
}

// TaxConfig holds the three bracket tables. Empty tables fall back to
// the built-in defaults.
type TaxConfig struct {
	Income     []BracketConfig `mapstructure:"income"`
	Securities []BracketConfig `mapstructure:"securities"`
	Gift       []BracketConfig `mapstructure:"gift"`
}

// BracketConfig is one {threshold, rate} row. Rate is a decimal string.
type BracketConfig struct {
	Threshold int64  `mapstructure:"threshold"`
	Rate      string `mapstructure:"rate"`
}

// TransferConfig bounds transfer amounts (exclusive on both ends).
type TransferConfig struct {
	Min int64 `mapstructure:"min"`
	Max int64 `mapstructure:"max"`
}

// WorkConfig bounds the work reward.
type WorkConfig struct {
	MinReward int64 `mapstructure:"min_reward"`
	MaxReward int64 `mapstructure:"max_reward"`
}

// ClockTime is a wall-clock hour and minute.
type ClockTime struct {
	Hour   int
	Minute int
}

// String formats the time as HH:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseClock parses "HH:MM".
func ParseClock(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return ClockTime{}, fmt.Errorf("parse clock time %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// DSN returns the PostgreSQL connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name,
	)
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// e.g. BOT_TOKEN, DATABASE_HOST, CASINO_MIN_BET
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("bot.poll_timeout", "10s")

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "casino")
	v.SetDefault("database.name", "casino")
	v.SetDefault("database.pool_size", 20)
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conn_lifetime", "1h")
	v.SetDefault("database.max_conn_idle_time", "30m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", true)

	v.SetDefault("http.enabled", false)
	v.SetDefault("http.addr", ":8080")

	v.SetDefault("casino.min_bet", 100)
	v.SetDefault("casino.max_bet", 100_000_000_000)
	v.SetDefault("casino.min_jackpot_bet", 1_000)
	v.SetDefault("casino.game_cooldown_seconds", 5)
	v.SetDefault("casino.work_cooldown_seconds", 300)
	v.SetDefault("casino.choice_timeout", "30s")

	v.SetDefault("casino.games.coin.multiplier_min", 0.7)
	v.SetDefault("casino.games.coin.multiplier_max", 1.0)
	v.SetDefault("casino.games.dice.multiplier_min", 3.0)
	v.SetDefault("casino.games.dice.multiplier_max", 5.0)
	v.SetDefault("casino.games.blackjack.multiplier_min", 0.8)
	v.SetDefault("casino.games.blackjack.multiplier_max", 1.0)
	v.SetDefault("casino.games.baccarat.multiplier_min", 0.8)
	v.SetDefault("casino.games.baccarat.multiplier_max", 1.0)
	v.SetDefault("casino.games.indian_poker.multiplier_min", 0.8)
	v.SetDefault("casino.games.indian_poker.multiplier_max", 1.0)

	v.SetDefault("casino.jackpot.initial", 1_000_000)
	v.SetDefault("casino.jackpot.win_cooldown_seconds", 1800)
	v.SetDefault("casino.jackpot.win_chance", 10_000)
	v.SetDefault("casino.jackpot.contribution_rate", 1.0)
	v.SetDefault("casino.jackpot.reset_times", []string{"07:30", "12:30", "18:30"})
	v.SetDefault("casino.jackpot.timezone", "Asia/Seoul")

	v.SetDefault("casino.transfer.min", 0)
	v.SetDefault("casino.transfer.max", 1_000_000_000_000)

	v.SetDefault("casino.work.min_reward", 1_000)
	v.SetDefault("casino.work.max_reward", 10_000)
}

// Validate rejects inconsistent settings.
func (c *Config) Validate() error {
	cc := &c.Casino
	switch {
	case c.Database.Driver != DriverPostgres && c.Database.Driver != DriverMemory:
		return fmt.Errorf("%w: database.driver must be %q or %q", ErrInvalidConfig, DriverPostgres, DriverMemory)
	case cc.MinBet <= 0:
		return fmt.Errorf("%w: casino.min_bet must be positive", ErrInvalidConfig)
	case cc.MinBet >= cc.MaxBet:
		return fmt.Errorf("%w: casino.min_bet must be below casino.max_bet", ErrInvalidConfig)
	case cc.MinJackpotBet < cc.MinBet:
		return fmt.Errorf("%w: casino.min_jackpot_bet must be at least casino.min_bet", ErrInvalidConfig)
	case cc.GameCooldownSeconds < 0 || cc.WorkCooldownSeconds < 0 || cc.Jackpot.WinCooldownSeconds < 0:
		return fmt.Errorf("%w: cooldowns must not be negative", ErrInvalidConfig)
	case cc.ChoiceTimeout <= 0:
		return fmt.Errorf("%w: casino.choice_timeout must be positive", ErrInvalidConfig)
	case cc.Jackpot.Initial < 0:
		return fmt.Errorf("%w: casino.jackpot.initial must not be negative", ErrInvalidConfig)
	case cc.Jackpot.WinChance < 0 || cc.Jackpot.WinChance > 1_000_000:
		return fmt.Errorf("%w: casino.jackpot.win_chance must be within 0..1000000", ErrInvalidConfig)
	case cc.Jackpot.ContributionRate < 0 || cc.Jackpot.ContributionRate > 1:
		return fmt.Errorf("%w: casino.jackpot.contribution_rate must be within 0..1", ErrInvalidConfig)
	case cc.Transfer.Min < 0 || cc.Transfer.Min >= cc.Transfer.Max:
		return fmt.Errorf("%w: casino.transfer bounds", ErrInvalidConfig)
	case cc.Work.MinReward <= 0 || cc.Work.MinReward > cc.Work.MaxReward:
		return fmt.Errorf("%w: casino.work reward bounds", ErrInvalidConfig)
	}

	for name, r := range cc.Games {
		if r.Min <= 0 || r.Min > r.Max {
			return fmt.Errorf("%w: casino.games.%s multiplier range [%v, %v]", ErrInvalidConfig, name, r.Min, r.Max)
		}
	}
	if _, err := cc.Jackpot.Clocks(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := cc.Jackpot.Location(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := cc.Tax.Calculator(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// GameCooldown returns the per-game cooldown window.
func (c *CasinoConfig) GameCooldown() time.Duration {
	return time.Duration(c.GameCooldownSeconds) * time.Second
}

// WorkCooldown returns the work cooldown window.
func (c *CasinoConfig) WorkCooldown() time.Duration {
	return time.Duration(c.WorkCooldownSeconds) * time.Second
}

// Multiplier returns the configured range for a game, or ok=false.
func (c *CasinoConfig) Multiplier(game string) (MultiplierRange, bool) {
	r, ok := c.Games[game]
	return r, ok
}

// WinCooldown returns the jackpot win cooldown window.
func (j *JackpotConfig) WinCooldown() time.Duration {
	return time.Duration(j.WinCooldownSeconds) * time.Second
}

// Clocks parses ResetTimes, dropping duplicates.
func (j *JackpotConfig) Clocks() ([]ClockTime, error) {
	clocks := make([]ClockTime, 0, len(j.ResetTimes))
	for _, s := range j.ResetTimes {
		ct, err := ParseClock(s)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(clocks, ct) {
			clocks = append(clocks, ct)
		}
	}
	return clocks, nil
}

// Location loads the reset time zone. Empty means local time.
func (j *JackpotConfig) Location() (*time.Location, error) {
	if j.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(j.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", j.Timezone, err)
	}
	return loc, nil
}

// Contribution returns the contribution rate as a decimal.
func (j *JackpotConfig) Contribution() decimal.Decimal {
	return decimal.NewFromFloat(j.ContributionRate)
}

// Calculator builds the tax calculator, using built-in tables for any
// category left empty.
func (t *TaxConfig) Calculator() (*tax.Calculator, error) {
	income, err := buildTable(t.Income, tax.DefaultIncome())
	if err != nil {
		return nil, fmt.Errorf("casino.tax.income: %w", err)
	}
	securities, err := buildTable(t.Securities, tax.DefaultSecurities())
	if err != nil {
		return nil, fmt.Errorf("casino.tax.securities: %w", err)
	}
	gift, err := buildTable(t.Gift, tax.DefaultGift())
	if err != nil {
		return nil, fmt.Errorf("casino.tax.gift: %w", err)
	}
	return tax.New(income, securities, gift), nil
}

func buildTable(rows []BracketConfig, fallback tax.Table) (tax.Table, error) {
	if len(rows) == 0 {
		return fallback, nil
	}
	var parseErr error
	brackets := lo.Map(rows, func(r BracketConfig, _ int) tax.Bracket {
		rate, err := decimal.NewFromString(r.Rate)
		if err != nil && parseErr == nil {
			parseErr = fmt.Errorf("rate %q: %w", r.Rate, err)
		}
		return tax.Bracket{Threshold: r.Threshold, Rate: rate}
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return tax.NewTable(brackets...)
}

// IsAdmin checks if a user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	return slices.Contains(c.Admin.IDs, userID)
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	return slices.Contains(c.Whitelist.Chats, chatID)
}
