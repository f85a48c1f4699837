// apps/go-server/internal/config/levels.go
//
// Level catalog.
// Responsibilities:
//   - Describe each level's target, move budget and special tiles.
//   - Apply the campaign overrides (ice/bomb upkeep, virus floor, move caps).
//   - Fall back to an unreachable target for unknown level ids.

package config

import "github.com/robalobadob/gemclash/apps/go-server/internal/board"

// Level is one entry of the level catalog.
type Level struct {
	ID          int    `yaml:"id" json:"id"`
	TargetScore int    `yaml:"target_score" json:"target_score"`
	MaxMoves    int    `yaml:"max_moves" json:"max_moves"` // -1 = unlimited
	IceCount    int    `yaml:"ice" json:"ice_count"`
	BombCount   int    `yaml:"bombs" json:"bomb_count"`
	BombFuse    int    `yaml:"bomb_fuse" json:"bomb_initial_time"`
	VirusCount  int    `yaml:"viruses" json:"virus_count"`
	Desc        string `yaml:"desc" json:"desc"`

	// Resolved-only fields, filled in from LevelMode.
	KeepIce    bool `yaml:"-" json:"-"`
	KeepBombs  bool `yaml:"-" json:"-"`
	VirusFloor int  `yaml:"-" json:"-"`

	LevelMode *Overrides `yaml:"level_mode,omitempty" json:"-"`
}

// Overrides adjust a level when it is played in campaign ("level") mode.
type Overrides struct {
	Ice        *int `yaml:"ice"`
	Bombs      *int `yaml:"bombs"`
	Viruses    *int `yaml:"viruses"`
	MaxMoves   *int `yaml:"max_moves"`
	VirusFloor int  `yaml:"virus_floor"`
	KeepIce    bool `yaml:"keep_ice"`
	KeepBombs  bool `yaml:"keep_bombs"`
}

// Unknown is returned for level ids missing from the catalog.
var Unknown = Level{ID: 0, TargetScore: 99999, MaxMoves: -1, Desc: "Unknown level"}

// Level resolves id for play. Campaign mode applies the level's overrides;
// every other mode is unlimited in moves.
func (c Config) Level(id int, campaign bool) Level {
	for _, l := range c.Levels {
		if l.ID == id {
			return l.resolve(campaign)
		}
	}
	return Unknown
}

func (l Level) resolve(campaign bool) Level {
	out := l
	out.LevelMode = nil
	if !campaign {
		out.MaxMoves = -1
		return out
	}
	if o := l.LevelMode; o != nil {
		if o.Ice != nil {
			out.IceCount = *o.Ice
		}
		if o.Bombs != nil {
			out.BombCount = *o.Bombs
		}
		if o.Viruses != nil {
			out.VirusCount = *o.Viruses
		}
		if o.MaxMoves != nil {
			out.MaxMoves = *o.MaxMoves
		}
		out.VirusFloor = o.VirusFloor
		out.KeepIce = o.KeepIce
		out.KeepBombs = o.KeepBombs
	}
	return out
}

// Specials is what board generation places for this level.
func (l Level) Specials() board.Specials {
	return board.Specials{Ice: l.IceCount, Bombs: l.BombCount, BombFuse: l.BombFuse, Viruses: l.VirusCount}
}

// Quota is what refills top the board back up to.
func (l Level) Quota() board.Quota {
	var q board.Quota
	if l.KeepIce {
		q.Ice = l.IceCount
	}
	if l.KeepBombs {
		q.Bombs = l.BombCount
		q.BombFuse = l.BombFuse
	}
	return q
}
