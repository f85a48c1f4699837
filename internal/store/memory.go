// apps/go-server/internal/store/memory.go
//
// In-memory implementation of game.Progression.
// This is a lightweight player store used in development/testing, or when
// durability is not required.
//
// Characteristics:
//   - Stores players keyed by id in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - Unknown ids (including 0, the guest/bot id) get default names and every write fails softly.

package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/robalobadob/gemclash/apps/go-server/internal/game"
)

const (
	guestName    = "Guest"
	defaultName  = "Player"
	startCoins   = 500
	leaderboardN = 10
)

type player struct {
	id       int64
	nickname string
	coins    int
	items    map[game.Asset]int
	maxScore int
	maxLevel int
}

// Memory is a map-based player store.
type Memory struct {
	mu          sync.RWMutex
	players     map[int64]*player
	nextID      int64
	unlockBonus int
	matches     []game.MatchRecord
}

// NewMemoryStore constructs an empty store. unlockBonus is the coin bonus
// granted by UnlockNextLevel.
func NewMemoryStore(unlockBonus int) *Memory {
	return &Memory{players: make(map[int64]*player), nextID: 1, unlockBonus: unlockBonus}
}

// CreatePlayer adds a player with the default wallet and returns its id.
func (m *Memory) CreatePlayer(nickname string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if nickname == "" {
		nickname = defaultName
	}
	id := m.nextID
	m.nextID++
	m.players[id] = &player{
		id:       id,
		nickname: nickname,
		coins:    startCoins,
		items:    map[game.Asset]int{},
		maxLevel: 1,
	}
	return id
}

// DisplayName implements game.Progression.
func (m *Memory) DisplayName(ctx context.Context, id int64) string {
	if id <= 0 {
		return guestName
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.players[id]; ok {
		return p.nickname
	}
	return defaultName
}

// AdjustAsset implements game.Progression.
func (m *Memory) AdjustAsset(ctx context.Context, id int64, asset game.Asset, delta int) (bool, error) {
	if !asset.Valid() {
		return false, errors.New("unknown asset " + string(asset))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok {
		return false, nil
	}
	if asset == game.AssetCoins {
		if p.coins+delta < 0 {
			return false, nil
		}
		p.coins += delta
		return true, nil
	}
	if p.items[asset]+delta < 0 {
		return false, nil
	}
	p.items[asset] += delta
	return true, nil
}

// RaiseMaxScore implements game.Progression.
func (m *Memory) RaiseMaxScore(ctx context.Context, id int64, score int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok || score <= p.maxScore {
		return false, nil
	}
	p.maxScore = score
	return true, nil
}

// UnlockNextLevel implements game.Progression.
func (m *Memory) UnlockNextLevel(ctx context.Context, id int64, cleared int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.players[id]
	if !ok || cleared != max(p.maxLevel, 1) {
		return false, nil
	}
	p.maxLevel++
	p.coins += m.unlockBonus
	return true, nil
}

// Leaderboard implements game.Progression.
func (m *Memory) Leaderboard(ctx context.Context) ([]game.LeaderRow, error) {
	m.mu.RLock()
	ps := make([]player, 0, len(m.players))
	for _, p := range m.players {
		ps = append(ps, *p)
	}
	m.mu.RUnlock()

	sort.Slice(ps, func(i, j int) bool {
		if ps[i].maxScore != ps[j].maxScore {
			return ps[i].maxScore > ps[j].maxScore
		}
		return ps[i].id < ps[j].id
	})
	if len(ps) > leaderboardN {
		ps = ps[:leaderboardN]
	}
	out := make([]game.LeaderRow, 0, len(ps))
	for _, p := range ps {
		out = append(out, game.LeaderRow{Nickname: p.nickname, Score: p.maxScore})
	}
	return out, nil
}

// Assets implements game.Profiles.
func (m *Memory) Assets(ctx context.Context, id int64) (game.PlayerAssets, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[id]
	if !ok {
		return game.PlayerAssets{}, game.ErrNotFound
	}
	return game.PlayerAssets{
		Nickname:   p.nickname,
		Coins:      p.coins,
		MaxScore:   p.maxScore,
		MaxLevel:   p.maxLevel,
		ItemBomb:   p.items[game.AssetBomb],
		ItemReset:  p.items[game.AssetReset],
		ItemFreeze: p.items[game.AssetFreeze],
	}, nil
}

// RecordMatch implements game.MatchRecorder.
func (m *Memory) RecordMatch(ctx context.Context, r game.MatchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches = append(m.matches, r)
	return nil
}

// Matches returns the recorded match history, oldest first.
func (m *Memory) Matches() []game.MatchRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]game.MatchRecord(nil), m.matches...)
}
