// apps/go-server/internal/store/sqlite.go
//
// SQLite implementation of game.Progression, game.Profiles and game.MatchRecorder.
// Responsibilities:
//   - Player wallet/progress reads and single-statement conditional updates.
//   - Top-10 leaderboard by max score.
//   - Settled match history (match_results).
//
// Notes:
//   - Schema lives in assets/sql and is applied by the migrate command before use.
//   - Every write is one UPDATE whose WHERE clause carries the guard, so concurrent
//     callers never read-modify-write in Go.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/robalobadob/gemclash/apps/go-server/internal/game"
)

// assetColumns whitelists the columns AdjustAsset may interpolate.
var assetColumns = map[game.Asset]string{
	game.AssetCoins:  "coins",
	game.AssetBomb:   "item_bomb",
	game.AssetReset:  "item_reset",
	game.AssetFreeze: "item_freeze",
}

// SQLite is a player store over a migrated *sql.DB.
type SQLite struct {
	db          *sql.DB
	unlockBonus int
}

// NewSQLiteStore wraps db. unlockBonus is the coin bonus granted by UnlockNextLevel.
func NewSQLiteStore(db *sql.DB, unlockBonus int) *SQLite {
	return &SQLite{db: db, unlockBonus: unlockBonus}
}

// CreatePlayer inserts a player with the default wallet.
func (s *SQLite) CreatePlayer(ctx context.Context, nickname string) (int64, error) {
	if nickname == "" {
		nickname = defaultName
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO players(nickname) VALUES (?)`, nickname)
	if err != nil {
		return 0, fmt.Errorf("insert player: %w", err)
	}
	return res.LastInsertId()
}

// DisplayName implements game.Progression.
func (s *SQLite) DisplayName(ctx context.Context, id int64) string {
	if id <= 0 {
		return guestName
	}
	var name string
	if err := s.db.QueryRowContext(ctx, `SELECT nickname FROM players WHERE id=?`, id).Scan(&name); err != nil || name == "" {
		return defaultName
	}
	return name
}

// AdjustAsset implements game.Progression.
func (s *SQLite) AdjustAsset(ctx context.Context, id int64, asset game.Asset, delta int) (bool, error) {
	col, ok := assetColumns[asset]
	if !ok {
		return false, fmt.Errorf("unknown asset %q", asset)
	}
	if id <= 0 {
		return false, nil
	}
	q := fmt.Sprintf(`UPDATE players SET %[1]s = %[1]s + ? WHERE id=? AND %[1]s + ? >= 0`, col)
	return s.exec(ctx, q, delta, id, delta)
}

// RaiseMaxScore implements game.Progression.
func (s *SQLite) RaiseMaxScore(ctx context.Context, id int64, score int) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	return s.exec(ctx, `UPDATE players SET max_score=? WHERE id=? AND max_score < ?`, score, id, score)
}

// UnlockNextLevel implements game.Progression.
func (s *SQLite) UnlockNextLevel(ctx context.Context, id int64, cleared int) (bool, error) {
	if id <= 0 {
		return false, nil
	}
	return s.exec(ctx, `
        UPDATE players
        SET max_level = MAX(max_level, 1) + 1, coins = coins + ?
        WHERE id=? AND MAX(max_level, 1) = ?`,
		s.unlockBonus, id, cleared,
	)
}

func (s *SQLite) exec(ctx context.Context, q string, args ...any) (bool, error) {
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Leaderboard implements game.Progression.
func (s *SQLite) Leaderboard(ctx context.Context) ([]game.LeaderRow, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT nickname, max_score
        FROM players
        ORDER BY max_score DESC, id ASC
        LIMIT ?`, leaderboardN,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]game.LeaderRow, 0, leaderboardN)
	for rows.Next() {
		var r game.LeaderRow
		if err := rows.Scan(&r.Nickname, &r.Score); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Assets implements game.Profiles.
func (s *SQLite) Assets(ctx context.Context, id int64) (game.PlayerAssets, error) {
	var a game.PlayerAssets
	err := s.db.QueryRowContext(ctx, `
        SELECT nickname, coins, max_score, max_level, item_bomb, item_reset, item_freeze
        FROM players WHERE id=?`, id,
	).Scan(&a.Nickname, &a.Coins, &a.MaxScore, &a.MaxLevel, &a.ItemBomb, &a.ItemReset, &a.ItemFreeze)
	if errors.Is(err, sql.ErrNoRows) {
		return game.PlayerAssets{}, game.ErrNotFound
	}
	return a, err
}

// RecordMatch implements game.MatchRecorder. A session is recorded at most once.
func (s *SQLite) RecordMatch(ctx context.Context, m game.MatchRecord) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO match_results
            (session_id, player_id, mode, opponent_name, score, opponent_score, outcome, coins)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.SessionID, m.PlayerID, string(m.Mode), m.OpponentName, m.Score, m.OpponentScore, m.Outcome, m.Coins,
	)
	return err
}

// MatchRow is one match_results row.
type MatchRow struct {
	SessionID     string `json:"session_id"`
	Mode          string `json:"mode"`
	OpponentName  string `json:"opponent_name"`
	Score         int    `json:"score"`
	OpponentScore int    `json:"opponent_score"`
	Outcome       string `json:"outcome"`
	Coins         int    `json:"coins"`
	CreatedAt     string `json:"created_at"`
}

// RecentMatches returns a player's latest settled matches, newest first.
func (s *SQLite) RecentMatches(ctx context.Context, playerID int64, limit int) ([]MatchRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT session_id, mode, opponent_name, score, opponent_score, outcome, coins, created_at
        FROM match_results
        WHERE player_id=?
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, playerID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MatchRow, 0, limit)
	for rows.Next() {
		var r MatchRow
		if err := rows.Scan(&r.SessionID, &r.Mode, &r.OpponentName, &r.Score, &r.OpponentScore, &r.Outcome, &r.Coins, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
