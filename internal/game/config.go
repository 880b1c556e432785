// internal/game/config.go
//
// Scoring and hint policy for one session.
// Responsibilities:
//   - Defaults for points, hint penalty, free allowance and gem cost.
//   - Functional options layered over the defaults and the puzzle's own points.

package game

import "time"

// Defaults applied when an option is not supplied.
const (
	DefaultPointsPerCorrect = 10
	DefaultPointsPerHint    = -2
	DefaultMaxFreeHints     = 3
	DefaultGemsPerHint      = 1

	// hintsPerGemBlock is how many paid hints one gem notionally unlocks
	// when computing the remaining balance.
	hintsPerGemBlock = 3
)

// Config is the resolved, immutable scoring policy of one session.
type Config struct {
	PointsPerCorrect int  `json:"pointsPerCorrect"`
	PointsPerHint    int  `json:"pointsPerHint"`
	MaxFreeHints     int  `json:"maxFreeHints"`
	GemsPerHint      int  `json:"gemsPerHint"`
	StreakMultiplier bool `json:"streakMultiplier"`
	// TimeBonus is accepted but has no effect on scoring.
	TimeBonus bool `json:"timeBonus"`
}

// Option overrides one field of the default Config.
type Option func(*options)

type options struct {
	cfg              Config
	pointsPerCorrect *int
	now              func() time.Time
	startedAt        time.Time
}

// WithPointsPerCorrect sets the base points for each correct word.
func WithPointsPerCorrect(n int) Option {
	return func(o *options) { o.pointsPerCorrect = &n }
}

// WithPointsPerHint sets the signed score adjustment applied to paid hints.
func WithPointsPerHint(n int) Option {
	return func(o *options) { o.cfg.PointsPerHint = n }
}

// WithMaxFreeHints sets how many hints are granted before gems are required.
func WithMaxFreeHints(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.cfg.MaxFreeHints = n
		}
	}
}

// WithGemsPerHint sets the gem cost of a paid hint.
func WithGemsPerHint(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cfg.GemsPerHint = n
		}
	}
}

// WithStreakMultiplier toggles the progressive streak bonus.
func WithStreakMultiplier(on bool) Option {
	return func(o *options) { o.cfg.StreakMultiplier = on }
}

// WithTimeBonus records the time bonus flag. Scoring ignores it.
func WithTimeBonus(on bool) Option {
	return func(o *options) { o.cfg.TimeBonus = on }
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithStartTime sets the clock origin instead of the construction time, so a
// session restored from storage keeps its elapsed time.
func WithStartTime(t time.Time) Option {
	return func(o *options) { o.startedAt = t }
}

// resolveOptions layers opts over the defaults. Base points come from the
// explicit option, then the puzzle, then DefaultPointsPerCorrect.
func resolveOptions(p Puzzle, opts []Option) options {
	o := options{
		cfg: Config{
			PointsPerHint:    DefaultPointsPerHint,
			MaxFreeHints:     DefaultMaxFreeHints,
			GemsPerHint:      DefaultGemsPerHint,
			StreakMultiplier: true,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	switch {
	case o.pointsPerCorrect != nil:
		o.cfg.PointsPerCorrect = *o.pointsPerCorrect
	case p.PointPerCorrectWord > 0:
		o.cfg.PointsPerCorrect = p.PointPerCorrectWord
	default:
		o.cfg.PointsPerCorrect = DefaultPointsPerCorrect
	}
	return o
}
