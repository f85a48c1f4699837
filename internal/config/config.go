// apps/go-server/internal/config/config.go
//
// Game tuning document and its validation.
// Responsibilities:
//   - Hold rewards, shop prices, bot tuning and versus timings as loaded from YAML.
//   - Convert millisecond settings into time.Duration for the engine.
//   - Reject documents the engine cannot run with.

// Package config provides YAML-based game tuning and the level catalog.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/gemclash/apps/go-server/internal/board"
)

// Config is the complete tuning document.
type Config struct {
	Rewards Rewards `yaml:"rewards"`
	Items   Items   `yaml:"items"`
	AI      AI      `yaml:"ai"`
	PVP     PVP     `yaml:"pvp"`
	Levels  []Level `yaml:"levels"`
}

// Rewards are coin payouts.
type Rewards struct {
	LevelPass      int `yaml:"level_pass"`
	UnlockBonus    int `yaml:"unlock_bonus"`
	EndlessDivisor int `yaml:"endless_divisor"`
}

// Items are shop prices in coins.
type Items struct {
	Bomb   int `yaml:"bomb"`
	Reset  int `yaml:"reset"`
	Freeze int `yaml:"freeze"`
}

// AI tunes the scripted opponent.
type AI struct {
	ThinkDelayMs     int      `yaml:"think_delay_ms"`
	NormalMistakePct int      `yaml:"normal_mistake_pct"`
	DelaysMs         AIDelays `yaml:"delays_ms"`
}

// AIDelays is the cooldown between bot moves per difficulty.
type AIDelays struct {
	Easy   int `yaml:"easy"`
	Normal int `yaml:"normal"`
	Hard   int `yaml:"hard"`
}

// PVP tunes timed head-to-head matches.
type PVP struct {
	MatchDurationMs int `yaml:"match_duration_ms"`
	AttackThreshold int `yaml:"attack_threshold"`
	FreezeMs        int `yaml:"freeze_ms"`
	ImmunityMs      int `yaml:"immunity_ms"`
}

func (p PVP) MatchDuration() time.Duration { return ms(p.MatchDurationMs) }
func (p PVP) Freeze() time.Duration        { return ms(p.FreezeMs) }
func (p PVP) Immunity() time.Duration      { return ms(p.ImmunityMs) }

func (a AI) ThinkDelay() time.Duration { return ms(a.ThinkDelayMs) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.Rewards.EndlessDivisor <= 0 {
		return errors.New("config: rewards.endless_divisor must be positive")
	}
	if c.AI.DelaysMs.Easy <= 0 || c.AI.DelaysMs.Normal <= 0 || c.AI.DelaysMs.Hard <= 0 {
		return errors.New("config: ai.delays_ms must all be positive")
	}
	if c.AI.ThinkDelayMs <= 0 {
		return errors.New("config: ai.think_delay_ms must be positive")
	}
	if c.Items.Bomb <= 0 || c.Items.Reset <= 0 || c.Items.Freeze <= 0 {
		return errors.New("config: items prices must all be positive")
	}
	if c.PVP.MatchDurationMs <= 0 {
		return errors.New("config: pvp.match_duration_ms must be positive")
	}
	if c.PVP.FreezeMs <= 0 || c.PVP.ImmunityMs <= 0 {
		return errors.New("config: pvp.freeze_ms and pvp.immunity_ms must be positive")
	}
	seen := make(map[int]bool, len(c.Levels))
	for _, l := range c.Levels {
		if l.ID <= 0 {
			return fmt.Errorf("config: level id %d must be positive", l.ID)
		}
		if seen[l.ID] {
			return fmt.Errorf("config: duplicate level id %d", l.ID)
		}
		seen[l.ID] = true
		for _, mode := range []bool{false, true} {
			if v := l.resolve(mode).VirusCount; v < 0 || v >= board.Size*board.Size {
				return fmt.Errorf("config: level %d virus count %d out of range", l.ID, v)
			}
		}
	}
	return nil
}
