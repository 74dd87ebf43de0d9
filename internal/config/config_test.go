package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-casino-bot/internal/tax"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, int64(100), cfg.Casino.MinBet)
	assert.Equal(t, 30*time.Second, cfg.Casino.ChoiceTimeout)
	assert.Equal(t, 5*time.Second, cfg.Casino.GameCooldown())
	assert.Equal(t, 30*time.Minute, cfg.Casino.Jackpot.WinCooldown())
	assert.Equal(t, int64(1_000_000), cfg.Casino.Jackpot.Initial)

	coin, ok := cfg.Casino.Multiplier("coin")
	require.True(t, ok)
	assert.Equal(t, 0.7, coin.Min)
	assert.Equal(t, 1.0, coin.Max)

	clocks, err := cfg.Casino.Jackpot.Clocks()
	require.NoError(t, err)
	assert.Equal(t, []ClockTime{{7, 30}, {12, 30}, {18, 30}}, clocks)

	calc, err := cfg.Casino.Tax.Calculator()
	require.NoError(t, err)
	assert.NotNil(t, calc)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
bot:
  token: "abc"
casino:
  min_bet: 500
  max_bet: 1000000
  jackpot:
    reset_times: ["09:00", "09:00", "21:15"]
    timezone: "UTC"
  tax:
    gift:
      - threshold: 1000
        rate: "0.5"
      - threshold: 0
        rate: "0.25"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.Bot.Token)
	assert.Equal(t, int64(500), cfg.Casino.MinBet)

	clocks, err := cfg.Casino.Jackpot.Clocks()
	require.NoError(t, err)
	assert.Equal(t, []ClockTime{{9, 0}, {21, 15}}, clocks)

	calc, err := cfg.Casino.Tax.Calculator()
	require.NoError(t, err)
	assert.Equal(t, int64(250), calc.Tax(1000, tax.Gift))
	assert.Equal(t, int64(1000), calc.Tax(2000, tax.Gift))
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CASINO_MIN_BET", "250")
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, int64(250), cfg.Casino.MinBet)
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }},
		{"min bet not positive", func(c *Config) { c.Casino.MinBet = 0 }},
		{"min bet above max", func(c *Config) { c.Casino.MaxBet = c.Casino.MinBet }},
		{"jackpot bet below min bet", func(c *Config) { c.Casino.MinJackpotBet = c.Casino.MinBet - 1 }},
		{"bad reset time", func(c *Config) { c.Casino.Jackpot.ResetTimes = []string{"25:00"} }},
		{"bad timezone", func(c *Config) { c.Casino.Jackpot.Timezone = "Mars/Base" }},
		{"win chance too high", func(c *Config) { c.Casino.Jackpot.WinChance = 2_000_000 }},
		{"inverted multiplier", func(c *Config) {
			c.Casino.Games["coin"] = MultiplierRange{Min: 2, Max: 1}
		}},
		{"unsorted tax table", func(c *Config) {
			c.Casino.Tax.Income = []BracketConfig{{Threshold: 0, Rate: "0.1"}, {Threshold: 10, Rate: "0.2"}}
		}},
		{"bad tax rate", func(c *Config) {
			c.Casino.Tax.Gift = []BracketConfig{{Threshold: 0, Rate: "ten"}}
		}},
		{"work bounds", func(c *Config) { c.Casino.Work.MinReward = c.Casino.Work.MaxReward + 1 }},
		{"transfer bounds", func(c *Config) { c.Casino.Transfer.Min = c.Casino.Transfer.Max }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestParseClock(t *testing.T) {
	ct, err := ParseClock(" 07:05 ")
	require.NoError(t, err)
	assert.Equal(t, ClockTime{Hour: 7, Minute: 5}, ct)
	assert.Equal(t, "07:05", ct.String())

	_, err = ParseClock("7h")
	assert.Error(t, err)
}

func TestIsAdminAndWhitelist(t *testing.T) {
	cfg := &Config{Admin: AdminConfig{IDs: []int64{1, 2}}}
	assert.True(t, cfg.IsAdmin(2))
	assert.False(t, cfg.IsAdmin(3))
	assert.True(t, cfg.IsChatAllowed(99))

	cfg.Whitelist.Chats = []int64{-100}
	assert.True(t, cfg.IsChatAllowed(-100))
	assert.False(t, cfg.IsChatAllowed(99))
}
