// apps/go-server/internal/game/gateway.go
//
// Contract between the session engine and the persistent player store.
// Implementations live in internal/store (SQLite and in-memory).
//
// Notes:
//   - Player id 0 is the bot / guest. Implementations answer it with defaults and never persist for it.
//   - Every method is called with the caller's session lock held, so implementations must not call back
//     into the Service.

package game

import "context"

// Asset names the numeric columns AdjustAsset may touch.
type Asset string

const (
	AssetCoins  Asset = "coins"
	AssetBomb   Asset = "item_bomb"
	AssetReset  Asset = "item_reset"
	AssetFreeze Asset = "item_freeze"
)

// Valid reports whether a is one of the fixed asset columns.
func (a Asset) Valid() bool {
	switch a {
	case AssetCoins, AssetBomb, AssetReset, AssetFreeze:
		return true
	}
	return false
}

// LeaderRow is one leaderboard entry.
type LeaderRow struct {
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}

// Progression is the narrow view of the player store the engine needs.
type Progression interface {
	// DisplayName returns the player's nickname, or a placeholder for unknown ids.
	DisplayName(ctx context.Context, playerID int64) string

	// AdjustAsset adds delta to asset atomically. It reports false without
	// changing anything when the result would be negative or the player is unknown.
	AdjustAsset(ctx context.Context, playerID int64, asset Asset, delta int) (bool, error)

	// RaiseMaxScore stores score only if it beats the stored maximum.
	RaiseMaxScore(ctx context.Context, playerID int64, score int) (bool, error)

	// UnlockNextLevel advances max level by one, and grants the unlock bonus,
	// only when cleared equals the player's current max level.
	UnlockNextLevel(ctx context.Context, playerID int64, cleared int) (bool, error)

	// Leaderboard returns the top 10 players by max score.
	Leaderboard(ctx context.Context) ([]LeaderRow, error)
}

// PlayerAssets is the wallet and progress shown to the client.
type PlayerAssets struct {
	Nickname   string `json:"nickname"`
	Coins      int    `json:"coins"`
	MaxScore   int    `json:"max_score"`
	MaxLevel   int    `json:"max_level"`
	ItemBomb   int    `json:"item_bomb"`
	ItemReset  int    `json:"item_reset"`
	ItemFreeze int    `json:"item_freeze"`
}

// Profiles is implemented by stores that can report a full wallet.
type Profiles interface {
	Assets(ctx context.Context, playerID int64) (PlayerAssets, error)
}

// MatchRecord is one settled timed match from a single player's side.
type MatchRecord struct {
	SessionID     string
	PlayerID      int64
	Mode          Mode
	OpponentName  string
	Score         int
	OpponentScore int
	Outcome       string // win, loss, draw
	Coins         int
}

// MatchRecorder is implemented by stores that keep match history.
type MatchRecorder interface {
	RecordMatch(ctx context.Context, m MatchRecord) error
}
