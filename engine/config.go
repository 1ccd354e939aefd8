package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var ErrInvalidConfig = errors.New("invalid search config")

// Config holds the tunables of one Searcher. The zero value is not usable, start
// from DefaultConfig.
type Config struct {
	// Plies searched full width before quiescence takes over.
	Horizon int `json:"horizon"`
	// Absolute ply at which quiescence stops recursing.
	QuiescenceCeiling int `json:"quiescence_ceiling"`
	// Quiet checking moves are only tried in quiescence below this ply.
	CheckingMovesCeiling int `json:"checking_moves_ceiling"`

	KillerSlots int `json:"killer_slots"`
	// Captures are stored as killers too unless this is false.
	KillerCaptures bool `json:"killer_captures"`

	HashMoveScore   int32 `json:"hash_move_score"`
	KillerMoveScore int32 `json:"killer_move_score"`

	// The cache is always probed; entries are only written when CacheWrites is set.
	CacheWrites bool `json:"cache_writes"`
	CacheSizeMB int  `json:"cache_size_mb"`
}

func DefaultConfig() Config {
	return Config{
		Horizon:              6,
		QuiescenceCeiling:    27,
		CheckingMovesCeiling: 17,

		KillerSlots:    2,
		KillerCaptures: true,

		// Above any MVV-LVA or promotion score the evaluator hands out.
		HashMoveScore:   30000,
		KillerMoveScore: 2000,

		CacheWrites: false,
		CacheSizeMB: 16,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Horizon < 1:
		return fmt.Errorf("%w: horizon must be at least 1, got %d", ErrInvalidConfig, c.Horizon)
	case c.QuiescenceCeiling < c.Horizon:
		return fmt.Errorf("%w: quiescence ceiling %d is below the horizon %d", ErrInvalidConfig, c.QuiescenceCeiling, c.Horizon)
	case c.QuiescenceCeiling > MaxPly-1:
		return fmt.Errorf("%w: quiescence ceiling %d exceeds %d", ErrInvalidConfig, c.QuiescenceCeiling, MaxPly-1)
	case c.CheckingMovesCeiling < 0:
		return fmt.Errorf("%w: checking moves ceiling must not be negative", ErrInvalidConfig)
	case c.KillerSlots < 0 || c.KillerSlots > MaxKillerSlots:
		return fmt.Errorf("%w: killer slots must be within [0, %d], got %d", ErrInvalidConfig, MaxKillerSlots, c.KillerSlots)
	case c.CacheSizeMB < 0:
		return fmt.Errorf("%w: cache size must not be negative", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads a JSON file on top of DefaultConfig, so a file only needs the
// keys it changes.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
