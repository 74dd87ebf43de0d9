package service

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"telegram-casino-bot/internal/model"
)

type accountKey struct {
	userID, serverID int64
}

type cooldownKey struct {
	userID int64
	action string
}

type memState struct {
	balances  map[accountKey]int64
	jackpots  map[int64]int64
	cooldowns map[cooldownKey]time.Time
	txs       []*model.Transaction
}

func (s memState) clone() memState {
	return memState{
		balances:  maps.Clone(s.balances),
		jackpots:  maps.Clone(s.jackpots),
		cooldowns: maps.Clone(s.cooldowns),
		txs:       slices.Clone(s.txs),
	}
}

// MemoryStore is a process-local Store for development runs without
// PostgreSQL. Transactions are serialized and roll back by restoring a
// snapshot.
type MemoryStore struct {
	txMu sync.Mutex

	mu       sync.Mutex
	state    memState
	users    map[int64]string
	nextID   int64
	failures map[string]error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: memState{
			balances:  make(map[accountKey]int64),
			jackpots:  make(map[int64]int64),
			cooldowns: make(map[cooldownKey]time.Time),
		},
		users:    make(map[int64]string),
		failures: make(map[string]error),
	}
}

// FailOn makes the named method return err until cleared with a nil err.
func (m *MemoryStore) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, method)
		return
	}
	m.failures[method] = err
}

func (m *MemoryStore) fail(method string) error {
	return m.failures[method]
}

// WithTx runs fn serialized with other transactions. Its writes are
// undone if fn fails or ctx ends before the commit.
func (m *MemoryStore) WithTx(ctx context.Context, fn func(Repos) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	m.mu.Lock()
	snapshot := m.state.clone()
	m.mu.Unlock()

	err := fn(m)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		m.mu.Lock()
		m.state = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *MemoryStore) GetBalance(_ context.Context, userID, serverID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetBalance"); err != nil {
		return 0, err
	}
	return m.state.balances[accountKey{userID, serverID}], nil
}

func (m *MemoryStore) AddBalance(_ context.Context, userID, serverID, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("AddBalance"); err != nil {
		return 0, err
	}
	k := accountKey{userID, serverID}
	m.state.balances[k] = max(m.state.balances[k]+delta, 0)
	return m.state.balances[k], nil
}

func (m *MemoryStore) SetBalance(_ context.Context, userID, serverID, balance int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("SetBalance"); err != nil {
		return 0, err
	}
	m.state.balances[accountKey{userID, serverID}] = max(balance, 0)
	return max(balance, 0), nil
}

func (m *MemoryStore) GetJackpot(_ context.Context, serverID, initial int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetJackpot"); err != nil {
		return 0, err
	}
	amount, ok := m.state.jackpots[serverID]
	if !ok {
		m.state.jackpots[serverID] = initial
		return initial, nil
	}
	return amount, nil
}

func (m *MemoryStore) AddJackpot(_ context.Context, serverID, delta, floor int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("AddJackpot"); err != nil {
		return 0, err
	}
	amount, ok := m.state.jackpots[serverID]
	if !ok {
		amount = floor
	}
	m.state.jackpots[serverID] = max(amount+delta, floor)
	return m.state.jackpots[serverID], nil
}

func (m *MemoryStore) SetJackpot(_ context.Context, serverID, amount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("SetJackpot"); err != nil {
		return err
	}
	m.state.jackpots[serverID] = amount
	return nil
}

func (m *MemoryStore) ListJackpots(_ context.Context) ([]*model.Jackpot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := slices.Sorted(maps.Keys(m.state.jackpots))
	return lo.Map(ids, func(id int64, _ int) *model.Jackpot {
		return &model.Jackpot{ServerID: id, Amount: m.state.jackpots[id]}
	}), nil
}

func (m *MemoryStore) GetCooldown(_ context.Context, userID int64, action string) (time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("GetCooldown"); err != nil {
		return time.Time{}, false, err
	}
	t, ok := m.state.cooldowns[cooldownKey{userID, action}]
	return t, ok, nil
}

func (m *MemoryStore) StampCooldown(_ context.Context, userID int64, action string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("StampCooldown"); err != nil {
		return err
	}
	m.state.cooldowns[cooldownKey{userID, action}] = at
	return nil
}

func (m *MemoryStore) RecordTransaction(_ context.Context, tx *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("RecordTransaction"); err != nil {
		return err
	}
	m.nextID++
	tx.ID = m.nextID
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	cp := *tx
	m.state.txs = append(m.state.txs, &cp)
	return nil
}

// Transactions returns a copy of every recorded transaction, oldest first.
func (m *MemoryStore) Transactions() []model.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo.Map(m.state.txs, func(tx *model.Transaction, _ int) model.Transaction { return *tx })
}

func (m *MemoryStore) TopBalances(_ context.Context, serverID int64, limit int) ([]*model.RankEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entries []*model.RankEntry
	for k, balance := range m.state.balances {
		if k.serverID == serverID && balance > 0 {
			entries = append(entries, &model.RankEntry{UserID: k.userID, Username: m.users[k.userID], Balance: balance})
		}
	}
	slices.SortFunc(entries, func(a, b *model.RankEntry) int {
		if a.Balance != b.Balance {
			return compareDesc(a.Balance, b.Balance)
		}
		return compareDesc(b.UserID, a.UserID)
	})
	return entries[:min(limit, len(entries))], nil
}

func (m *MemoryStore) DailyWinners(_ context.Context, serverID int64, date time.Time, limit int) ([]*model.DailyRank, error) {
	ranks := m.dailyProfit(serverID, date)
	ranks = lo.Filter(ranks, func(r *model.DailyRank, _ int) bool { return r.NetProfit > 0 })
	slices.SortFunc(ranks, func(a, b *model.DailyRank) int { return compareDesc(a.NetProfit, b.NetProfit) })
	return ranks[:min(limit, len(ranks))], nil
}

func (m *MemoryStore) DailyLosers(_ context.Context, serverID int64, date time.Time, limit int) ([]*model.DailyRank, error) {
	ranks := m.dailyProfit(serverID, date)
	ranks = lo.Filter(ranks, func(r *model.DailyRank, _ int) bool { return r.NetProfit < 0 })
	slices.SortFunc(ranks, func(a, b *model.DailyRank) int { return compareDesc(b.NetProfit, a.NetProfit) })
	return ranks[:min(limit, len(ranks))], nil
}

func (m *MemoryStore) dailyProfit(serverID int64, date time.Time) []*model.DailyRank {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	end := start.AddDate(0, 0, 1)
	gameTypes := model.GameTransactionTypes()

	profit := make(map[int64]int64)
	for _, tx := range m.state.txs {
		if tx.ServerID != serverID || !slices.Contains(gameTypes, tx.Type) {
			continue
		}
		if tx.CreatedAt.Before(start) || !tx.CreatedAt.Before(end) {
			continue
		}
		profit[tx.UserID] += tx.Amount
	}
	return lo.MapToSlice(profit, func(id, p int64) *model.DailyRank {
		return &model.DailyRank{UserID: id, Username: m.users[id], NetProfit: p}
	})
}

func (m *MemoryStore) UpsertUser(_ context.Context, userID int64, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[userID] = username
	return nil
}

func (m *MemoryStore) FindUserByName(_ context.Context, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	name := strings.TrimPrefix(username, "@")
	for id, u := range m.users {
		if strings.EqualFold(u, name) {
			return &model.User{UserID: id, Username: u}, nil
		}
	}
	return nil, ErrUserNotFound
}

func compareDesc(a, b int64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}
