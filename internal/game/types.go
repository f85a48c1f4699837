// apps/go-server/internal/game/types.go
//
// Core type definitions for the match-3 session engine.
// Defines:
//   - Mode / Difficulty / Item: the enumerations clients send.
//   - Event: one animation step (swap, eliminate, refill, virus_spread, virus_spawn).
//   - Snapshot / MoveResult / ItemResult / DualState: what operations hand back to the transport.

package game

import (
	"strings"

	"github.com/robalobadob/gemclash/apps/go-server/internal/board"
)

// Mode selects the rules a session plays under.
type Mode string

const (
	ModeLevel   Mode = "level"
	ModePVE     Mode = "pve"
	ModePVP     Mode = "pvp"
	ModeEndless Mode = "endless"
)

// ParseMode normalises s. An empty string means level mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeLevel, nil
	case ModeLevel, ModePVE, ModePVP, ModeEndless:
		return m, nil
	}
	return "", ErrBadMode
}

// Difficulty of the bot opponent.
type Difficulty int

const (
	Easy   Difficulty = 1
	Normal Difficulty = 2
	Hard   Difficulty = 3
)

func (d Difficulty) Valid() bool { return d >= Easy && d <= Hard }

// Item is a consumable usable during a pvp/pve match.
type Item string

const (
	ItemBomb   Item = "bomb"
	ItemReset  Item = "reset"
	ItemFreeze Item = "freeze"
)

// ParseItem maps a client item name to an Item.
func ParseItem(s string) (Item, error) {
	switch it := Item(strings.ToLower(strings.TrimSpace(s))); it {
	case ItemBomb, ItemReset, ItemFreeze:
		return it, nil
	}
	return "", ErrUnknownItem
}

// Asset is the inventory column holding this item.
func (it Item) Asset() Asset {
	switch it {
	case ItemBomb:
		return AssetBomb
	case ItemReset:
		return AssetReset
	default:
		return AssetFreeze
	}
}

// End reasons.
const (
	ReasonTarget       = "Target Reached"
	ReasonOutOfMoves   = "Out of Moves"
	ReasonBomb         = "Bomb Exploded"
	ReasonTimeUp       = "Time Up"
	ReasonOpponentLeft = "Opponent Left"
)

// Event types.
const (
	EventSwap        = "swap"
	EventEliminate   = "eliminate"
	EventRefill      = "refill"
	EventVirusSpread = "virus_spread"
	EventVirusSpawn  = "virus_spawn"
)

// BombInfo is a bomb in wire form.
type BombInfo struct {
	R     int `json:"r"`
	C     int `json:"c"`
	Timer int `json:"timer"`
}

// Event is one animation step. Which fields are set depends on Type.
type Event struct {
	Type    string      `json:"type"`
	From    *[2]int     `json:"from,omitempty"`
	To      *[2]int     `json:"to,omitempty"`
	Coords  [][2]int    `json:"coords,omitempty"`
	Score   int         `json:"score,omitempty"`
	Map     *board.Grid `json:"map,omitempty"`
	IceMap  *board.Ice  `json:"ice_map,omitempty"`
	BombMap []BombInfo  `json:"bomb_map,omitempty"`
	Cells   [][2]int    `json:"cells,omitempty"`
}

// LevelInfo describes the level a session is playing.
type LevelInfo struct {
	Current int    `json:"current"`
	Target  int    `json:"target"`
	Desc    string `json:"desc"`
	Moves   int    `json:"moves"`
}

// Snapshot is the state handed out when a session starts.
type Snapshot struct {
	GameUUID  string     `json:"game_uuid"`
	Mode      Mode       `json:"mode"`
	Map       board.Grid `json:"map"`
	IceMap    board.Ice  `json:"ice_map"`
	BombMap   []BombInfo `json:"bomb_map"`
	LevelInfo LevelInfo  `json:"level_info"`
}

// SpecialLayers carries the overlays next to the tile grid.
type SpecialLayers struct {
	IceMap   board.Ice  `json:"ice_map"`
	BombList []BombInfo `json:"bomb_list"`
}

// Status is the terminal bookkeeping of a session.
type Status struct {
	IsOver       bool   `json:"is_over"`
	IsWin        bool   `json:"is_win"`
	Reason       string `json:"reason"`
	MovesLeft    int    `json:"moves_left"`
	CurrentScore int    `json:"current_score"`
	TargetScore  int    `json:"target_score"`
}

// MoveResult answers ProcessMove. It is filled in on rejections too, so the
// client can resync its board.
type MoveResult struct {
	Valid            bool          `json:"valid"`
	Msg              string        `json:"msg,omitempty"`
	SyncMap          board.Grid    `json:"sync_map"`
	SpecialLayers    SpecialLayers `json:"special_layers"`
	GameStatus       Status        `json:"game_status"`
	TotalScoreGained int           `json:"total_score_gained"`
	AttackTriggered  bool          `json:"attack_triggered"`
	Events           []Event       `json:"events"`

	// Set only when a non-versus session was won by this move.
	CoinsEarned      *int  `json:"coins_earned,omitempty"`
	NewLevelUnlocked *bool `json:"new_level_unlocked,omitempty"`
}

// ItemResult answers UseItem.
type ItemResult struct {
	Msg      string     `json:"msg"`
	NewMap   board.Grid `json:"new_map"`
	NewBombs []BombInfo `json:"new_bombs"`
	Events   []Event    `json:"events"`
	Score    int        `json:"current_score"`
}

// PVEStart answers StartPVE.
type PVEStart struct {
	GameUUID   string     `json:"game_uuid"`
	AIUUID     string     `json:"ai_uuid"`
	Difficulty Difficulty `json:"difficulty"`
}

// Matchmaking statuses.
const (
	MatchWaiting = "waiting"
	MatchMatched = "matched"
)

// MatchResult answers JoinPVP.
type MatchResult struct {
	Status       string `json:"status"`
	GameUUID     string `json:"game_uuid"`
	OpponentUID  int64  `json:"opponent_uid,omitempty"`
	OpponentNick string `json:"opponent_nick,omitempty"`
}

// Poll statuses.
const (
	PollError        = "error"
	PollOpponentLeft = "opponent_left"
	PollWaiting      = "waiting"
	PollPlaying      = "playing"
)

// DualState answers a poll: own score, the opponent's board and the events
// the opponent produced since the last poll.
type DualState struct {
	Status       string      `json:"status"`
	Msg          string      `json:"msg,omitempty"`
	MyScore      int         `json:"my_score"`
	OppNickname  string      `json:"opp_nickname,omitempty"`
	IsFrozen     bool        `json:"is_frozen"`
	FreezeTimeMs int64       `json:"freeze_time_ms"`
	OppScore     int         `json:"opp_score"`
	OppEvents    []Event     `json:"opp_events"`
	OppMap       *board.Grid `json:"opp_map,omitempty"`
	OppBombList  []BombInfo  `json:"opp_bomb_list"`
	OppIsFrozen  bool        `json:"opp_is_frozen"`
	TimeLeftSec  int64       `json:"time_left_sec"`
	IsOver       bool        `json:"is_over"`
	IsWin        bool        `json:"is_win"`
	CoinsEarned  *int        `json:"coins_earned,omitempty"`
	NewHighScore bool        `json:"new_high_score,omitempty"`
}

func bombList(b board.Bombs) []BombInfo {
	ps := make(board.Set, len(b))
	for p := range b {
		ps.Add(p)
	}
	out := make([]BombInfo, 0, len(b))
	for _, p := range ps.Sorted() {
		out = append(out, BombInfo{R: p.R, C: p.C, Timer: b[p]})
	}
	return out
}

func pairs(ps []board.Pos) [][2]int {
	out := make([][2]int, len(ps))
	for i, p := range ps {
		out[i] = p.Pair()
	}
	return out
}

func refillEvent(st *board.State) Event {
	g, ice := st.Grid, st.Ice
	return Event{Type: EventRefill, Map: &g, IceMap: &ice, BombMap: bombList(st.Bombs)}
}
