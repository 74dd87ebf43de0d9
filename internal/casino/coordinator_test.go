package casino

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-casino-bot/internal/game"
	"telegram-casino-bot/internal/game/coin"
	"telegram-casino-bot/internal/game/gametest"
	"telegram-casino-bot/internal/model"
	"telegram-casino-bot/internal/service"
	"telegram-casino-bot/internal/tax"
)

const (
	testServer  = int64(-100)
	testInitial = int64(1_000_000)
)

// stubGame resolves to a fixed result after one prompt.
type stubGame struct {
	typ     game.Type
	result  game.Result
	entered chan struct{}
	release chan struct{}
}

func (s *stubGame) Type() game.Type     { return s.typ }
func (s *stubGame) Name() string        { return "stub" }
func (s *stubGame) Command() string     { return string(s.typ) }
func (s *stubGame) Description() string { return "" }

func (s *stubGame) Play(ctx context.Context, table game.Table, _ int64) (*game.Result, error) {
	if s.entered != nil {
		close(s.entered)
		<-s.release
	}
	if _, err := table.Ask(ctx, game.Prompt{Text: "go?", Choices: []game.Choice{{Key: "go"}}}); err != nil {
		return nil, err
	}
	res := s.result
	return &res, nil
}

type fixture struct {
	coord  *Coordinator
	ledger *service.Ledger
	store  *service.MemoryStore
}

func newFixture(t *testing.T, winChance int, games ...game.Game) *fixture {
	t.Helper()
	store := service.NewMemoryStore()
	taxes := tax.Default()
	ledger := service.NewLedger(store, taxes, service.LedgerConfig{
		JackpotInitial: testInitial,
		TransferMax:    1_000_000_000_000,
	})
	pool := service.NewJackpotPool(ledger, taxes, service.JackpotConfig{
		Initial:      testInitial,
		MinBet:       1_000,
		MaxBet:       100_000_000_000,
		WinChance:    winChance,
		Contribution: decimal.NewFromInt(1),
		WinCooldown:  30 * time.Minute,
	})

	registry := game.NewRegistry()
	for _, g := range games {
		require.NoError(t, registry.Register(g))
	}

	coord := NewCoordinator(registry, ledger, service.NewCooldownGate(store), pool, taxes, Config{
		Limits:   Limits{Min: 100, Max: 100_000_000_000},
		Cooldown: 5 * time.Second,
		Multipliers: map[game.Type]Range{
			game.Coin:      NewRange(0.7, 1.0),
			game.Blackjack: NewRange(0.8, 0.8),
		},
	})
	return &fixture{coord: coord, ledger: ledger, store: store}
}

func (f *fixture) fund(t *testing.T, userID, amount int64) {
	t.Helper()
	_, err := f.store.SetBalance(context.Background(), userID, testServer, amount)
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, userID int64) int64 {
	t.Helper()
	b, err := f.store.GetBalance(context.Background(), userID, testServer)
	require.NoError(t, err)
	return b
}

func TestPlay_CoinLossScenario(t *testing.T) {
	f := newFixture(t, 0, coin.NewWith(func() coin.Side { return coin.Tails }))
	f.fund(t, 1, 10_000)

	out, err := f.coord.Play(context.Background(), Request{
		UserID: 1, ServerID: testServer, Game: game.Coin, BetArg: "1000",
	}, gametest.NewTable("앞"))
	require.NoError(t, err)

	assert.Equal(t, game.Lose, out.Result)
	assert.Equal(t, int64(-1_000), out.Change)
	assert.Equal(t, int64(9_000), out.Balance)
	assert.Equal(t, int64(9_000), f.balance(t, 1))
	assert.Equal(t, ToneLose, out.Tone)

	_, active := f.coord.Active(1)
	assert.False(t, active)
}

func TestPlay_CoinWinIsTaxed(t *testing.T) {
	f := newFixture(t, 0, coin.NewWith(func() coin.Side { return coin.Heads }))
	f.fund(t, 1, 10_000_000)

	out, err := f.coord.Play(context.Background(), Request{
		UserID: 1, ServerID: testServer, Game: game.Coin, BetArg: "5,000,000",
	}, gametest.NewTable("앞"))
	require.NoError(t, err)

	require.Equal(t, game.Win, out.Result)
	assert.True(t, NewRange(0.7, 1.0).Contains(out.Multiplier))
	assert.Equal(t, Winnings(5_000_000, out.Multiplier), out.Winnings)
	assert.Equal(t, tax.Default().Tax(out.Winnings, tax.Securities), out.Tax)
	assert.Equal(t, out.Winnings-out.Tax, out.Change)
	assert.Equal(t, 10_000_000+out.Change, f.balance(t, 1))
	assert.Contains(t, out.Text(), "잔액")
}

func TestPlay_AllIn(t *testing.T) {
	f := newFixture(t, 0, coin.NewWith(func() coin.Side { return coin.Tails }))
	f.fund(t, 1, 7_777)

	out, err := f.coord.Play(context.Background(), Request{
		UserID: 1, ServerID: testServer, Game: game.Coin, BetArg: "올인",
	}, gametest.NewTable("앞"))
	require.NoError(t, err)
	assert.Equal(t, int64(7_777), out.Bet)
	assert.Zero(t, f.balance(t, 1))
}

func TestPlay_Validation(t *testing.T) {
	tests := []struct {
		name    string
		balance int64
		arg     string
		want    error
	}{
		{"not a number", 10_000, "lots", ErrInvalidBet},
		{"zero", 10_000, "0", ErrInvalidBet},
		{"below minimum", 10_000, "99", ErrBetTooLow},
		{"at maximum", 200_000_000_000, "100000000000", ErrBetTooHigh},
		{"above balance", 500, "1000", service.ErrInsufficientFunds},
		{"all-in with empty wallet", 0, "all", ErrBetTooLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 0, coin.New())
			f.fund(t, 1, tt.balance)

			table := gametest.NewTable("앞")
			_, err := f.coord.Play(context.Background(), Request{
				UserID: 1, ServerID: testServer, Game: game.Coin, BetArg: tt.arg,
			}, table)
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, table.Asked())
			assert.Equal(t, tt.balance, f.balance(t, 1))

			// No cooldown consumed and the slot is free again.
			_, stamped, _ := f.store.GetCooldown(context.Background(), 1, string(game.Coin))
			assert.False(t, stamped)
			_, active := f.coord.Active(1)
			assert.False(t, active)
		})
	}
}

func TestPlay_UnknownGame(t *testing.T) {
	f := newFixture(t, 0)
	_, err := f.coord.Play(context.Background(), Request{UserID: 1, ServerID: testServer, Game: game.Dice, BetArg: "100"}, gametest.NewTable())
	assert.ErrorIs(t, err, ErrUnknownGame)
}

func TestPlay_CooldownBlocksSecondPlay(t *testing.T) {
	f := newFixture(t, 0, coin.NewWith(func() coin.Side { return coin.Tails }))
	f.fund(t, 1, 10_000)
	ctx := context.Background()
	req := Request{UserID: 1, ServerID: testServer, Game: game.Coin, BetArg: "100"}

	_, err := f.coord.Play(ctx, req, gametest.NewTable("앞"))
	require.NoError(t, err)

	_, err = f.coord.Play(ctx, req, gametest.NewTable("앞"))
	var cd *service.CooldownError
	require.ErrorAs(t, err, &cd)
	assert.Greater(t, cd.Remaining, int64(0))
	assert.LessOrEqual(t, cd.Remaining, int64(5))
	assert.Equal(t, int64(9_900), f.balance(t, 1))
}

func TestPlay_TimeoutPolicy(t *testing.T) {
	t.Run("single pick cancels", func(t *testing.T) {
		f := newFixture(t, 0, coin.New())
		f.fund(t, 1, 10_000)

		_, err := f.coord.Play(context.Background(), Request{
			UserID: 1, ServerID: testServer, Game: game.Coin, BetArg: "1000",
		}, gametest.NewTable())
		assert.ErrorIs(t, err, ErrTimeoutExpired)
		assert.Equal(t, int64(10_000), f.balance(t, 1))

		_, stamped, _ := f.store.GetCooldown(context.Background(), 1, string(game.Coin))
		assert.False(t, stamped)
	})

	t.Run("card game forfeits bet", func(t *testing.T) {
		f := newFixture(t, 0, &stubGame{typ: game.Blackjack, result: game.Result{Outcome: game.Win}})
		f.fund(t, 1, 10_000)

		out, err := f.coord.Play(context.Background(), Request{
			UserID: 1, ServerID: testServer, Game: game.Blackjack, BetArg: "1000",
		}, gametest.NewTable())
		require.NoError(t, err)
		assert.True(t, out.TimedOut)
		assert.Equal(t, int64(9_000), out.Balance)
		assert.Equal(t, int64(9_000), f.balance(t, 1))
	})
}

func TestPlay_SettlementOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		result game.Result
		change int64
	}{
		{"push keeps stake", game.Result{Outcome: game.Push}, 0},
		{"fold loses half", game.Result{Outcome: game.Fold}, -500},
		{"loss", game.Result{Outcome: game.Lose}, -1_000},
		{"win uses range", game.Result{Outcome: game.Win}, 800},
		{"win with override", game.Result{Outcome: game.Win, Multiplier: decimal.NewFromInt(8)}, 8_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 0, &stubGame{typ: game.Blackjack, result: tt.result})
			f.fund(t, 1, 10_000)

			out, err := f.coord.Play(context.Background(), Request{
				UserID: 1, ServerID: testServer, Game: game.Blackjack, BetArg: "1000",
			}, gametest.NewTable("go"))
			require.NoError(t, err)
			assert.Equal(t, tt.change, out.Change)
			assert.Equal(t, 10_000+tt.change, f.balance(t, 1))

			_, stamped, _ := f.store.GetCooldown(context.Background(), 1, string(game.Blackjack))
			assert.True(t, stamped)

			txs := f.store.Transactions()
			require.NotEmpty(t, txs)
			assert.Equal(t, model.TxTypeBlackjack, txs[len(txs)-1].Type)
		})
	}
}

func TestPlay_AdmissionRejectsConcurrentGame(t *testing.T) {
	stub := &stubGame{
		typ:     game.Blackjack,
		result:  game.Result{Outcome: game.Push},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	f := newFixture(t, 0, stub, coin.New())
	f.fund(t, 1, 10_000)
	ctx := context.Background()

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = f.coord.Play(ctx, Request{UserID: 1, ServerID: testServer, Game: game.Blackjack, BetArg: "100"}, gametest.NewTable("go"))
	}()

	<-stub.entered
	active, ok := f.coord.Active(1)
	require.True(t, ok)
	assert.Equal(t, string(game.Blackjack), active)

	_, err := f.coord.Play(ctx, Request{UserID: 1, ServerID: testServer, Game: game.Coin, BetArg: "100"}, gametest.NewTable("앞"))
	assert.ErrorIs(t, err, ErrGameInProgress)

	close(stub.release)
	wg.Wait()
	require.NoError(t, firstErr)

	_, ok = f.coord.Active(1)
	assert.False(t, ok)
}

func TestPlay_StakeCannotBeTransferredMidGame(t *testing.T) {
	stub := &stubGame{
		typ:     game.Blackjack,
		result:  game.Result{Outcome: game.Lose},
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	f := newFixture(t, 0, stub)
	f.fund(t, 1, 10_000)
	ctx := context.Background()

	var wg sync.WaitGroup
	var out *Outcome
	var playErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		out, playErr = f.coord.Play(ctx, Request{UserID: 1, ServerID: testServer, Game: game.Blackjack, BetArg: "10000"}, gametest.NewTable("go"))
	}()

	<-stub.entered
	assert.Equal(t, int64(10_000), f.ledger.Staked(1, testServer))
	_, err := f.ledger.Transfer(ctx, service.TransferRequest{From: 1, To: 2, ServerID: testServer, Amount: 9_000})
	require.ErrorIs(t, err, service.ErrFundsStaked)

	close(stub.release)
	wg.Wait()
	require.NoError(t, playErr)

	assert.Equal(t, int64(-10_000), out.Change)
	assert.Equal(t, int64(0), f.balance(t, 1))
	assert.Equal(t, int64(0), f.balance(t, 2))
	assert.Zero(t, f.ledger.Staked(1, testServer))
}

func TestPlay_StakeReleasedWithoutSettlement(t *testing.T) {
	f := newFixture(t, 0, coin.New())
	f.fund(t, 1, 10_000)

	_, err := f.coord.Play(context.Background(), Request{
		UserID: 1, ServerID: testServer, Game: game.Coin, BetArg: "올인",
	}, gametest.NewTable())
	require.ErrorIs(t, err, ErrTimeoutExpired)
	assert.Zero(t, f.ledger.Staked(1, testServer))

	_, err = f.ledger.Transfer(context.Background(), service.TransferRequest{From: 1, To: 2, ServerID: testServer, Amount: 10_000})
	assert.NoError(t, err)
}

func TestPlay_GameErrorReleasesSlot(t *testing.T) {
	f := newFixture(t, 0, coin.New())
	f.fund(t, 1, 10_000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.coord.Play(ctx, Request{UserID: 1, ServerID: testServer, Game: game.Coin, BetArg: "100"}, gametest.NewTable("앞"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	_, ok := f.coord.Active(1)
	assert.False(t, ok)
	assert.Equal(t, int64(10_000), f.balance(t, 1))
	assert.Zero(t, f.ledger.Staked(1, testServer))
}

func TestPlayJackpot(t *testing.T) {
	ctx := context.Background()

	t.Run("loss feeds pool", func(t *testing.T) {
		f := newFixture(t, 0)
		f.fund(t, 1, 100_000)

		out, err := f.coord.PlayJackpot(ctx, 1, testServer, "5000")
		require.NoError(t, err)
		assert.Equal(t, game.Lose, out.Result)
		assert.Equal(t, int64(95_000), out.Balance)
		assert.Equal(t, testInitial+5_000, out.Pool)
	})

	t.Run("win stamps win cooldown", func(t *testing.T) {
		f := newFixture(t, 1_000_000)
		f.fund(t, 1, 100_000)

		out, err := f.coord.PlayJackpot(ctx, 1, testServer, "5000")
		require.NoError(t, err)
		require.Equal(t, game.Win, out.Result)
		assert.Equal(t, ToneJackpot, out.Tone)
		assert.Equal(t, (testInitial+5_000)/10, out.Winnings)

		_, err = f.coord.PlayJackpot(ctx, 1, testServer, "5000")
		var cd *service.CooldownError
		assert.ErrorAs(t, err, &cd)
	})

	t.Run("bet must be a percent of balance", func(t *testing.T) {
		f := newFixture(t, 0)
		f.fund(t, 1, 1_000_000)

		_, err := f.coord.PlayJackpot(ctx, 1, testServer, "1000")
		assert.ErrorIs(t, err, service.ErrJackpotBetTooSmall)
	})

	t.Run("win cooldown blocks entry", func(t *testing.T) {
		f := newFixture(t, 0)
		f.fund(t, 1, 100_000)
		require.NoError(t, f.store.StampCooldown(ctx, 1, model.ActionJackpotWin, time.Now()))

		_, err := f.coord.PlayJackpot(ctx, 1, testServer, "5000")
		assert.ErrorIs(t, err, ErrJackpotCooldown)
		assert.Equal(t, int64(100_000), f.balance(t, 1))
	})
}
