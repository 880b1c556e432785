// internal/config/config.go
//
// Process configuration.
// Responsibilities:
//   - Load a local .env file when present (godotenv).
//   - Parse environment variables into a typed Config (caarlos0/env).
//   - Translate the scoring keys into game options.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/robalobadob/homophones/internal/game"
)

const devSecret = "dev_secret_change_me"

// Config is the full set of server settings.
type Config struct {
	Port     string `env:"PORT" envDefault:"5175"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	DBPath   string `env:"DB_PATH" envDefault:"./data/homophones.db"`

	JWTSecret      string `env:"JWT_SECRET" envDefault:"dev_secret_change_me"`
	JWTExpiresDays int    `env:"JWT_EXPIRES_DAYS" envDefault:"14"`
	CookieName     string `env:"COOKIE_NAME" envDefault:"homophones_token"`
	ClientOrigin   string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	Environment    string `env:"NODE_ENV" envDefault:"development"`

	DailySalt   string `env:"DAILY_SALT" envDefault:"homophones-daily"`
	PuzzlesFile string `env:"PUZZLES_FILE"`

	StartingGems        int  `env:"STARTING_GEMS" envDefault:"5"`
	CompletionGemReward int  `env:"COMPLETION_GEM_REWARD" envDefault:"1"`
	PointsPerHint       int  `env:"POINTS_PER_HINT" envDefault:"-2"`
	MaxFreeHints        int  `env:"MAX_FREE_HINTS" envDefault:"3"`
	GemsPerHint         int  `env:"GEMS_PER_HINT" envDefault:"1"`
	StreakMultiplier    bool `env:"STREAK_MULTIPLIER" envDefault:"true"`
	TimeBonus           bool `env:"TIME_BONUS" envDefault:"false"`

	MetricsEnabled bool          `env:"METRICS_ENABLED" envDefault:"true"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
}

// Load reads .env (if any) and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot honour.
func (c Config) Validate() error {
	switch {
	case c.Port == "":
		return errors.New("config: PORT is empty")
	case c.MaxFreeHints < 0:
		return errors.New("config: MAX_FREE_HINTS must be >= 0")
	case c.GemsPerHint < 1:
		return errors.New("config: GEMS_PER_HINT must be >= 1")
	case c.StartingGems < 0:
		return errors.New("config: STARTING_GEMS must be >= 0")
	case c.CompletionGemReward < 0:
		return errors.New("config: COMPLETION_GEM_REWARD must be >= 0")
	case c.JWTExpiresDays < 1:
		return errors.New("config: JWT_EXPIRES_DAYS must be >= 1")
	case c.Production() && c.JWTSecret == devSecret:
		return errors.New("config: JWT_SECRET must be set in production")
	}
	return nil
}

// Production reports whether cookies should be Secure/SameSite=None.
func (c Config) Production() bool { return c.Environment == "production" }

// GameOptions returns the engine options for every new session. Base points
// are left to the puzzle.
func (c Config) GameOptions() []game.Option {
	return []game.Option{
		game.WithPointsPerHint(c.PointsPerHint),
		game.WithMaxFreeHints(c.MaxFreeHints),
		game.WithGemsPerHint(c.GemsPerHint),
		game.WithStreakMultiplier(c.StreakMultiplier),
		game.WithTimeBonus(c.TimeBonus),
	}
}
