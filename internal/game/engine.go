// internal/game/engine.go
//
// Session engine for a single homophone puzzle attempt.
// Responsibilities:
//   - Validate submitted words (empty, duplicate, wrong, correct).
//   - Score correct words with the progressive streak bonus.
//   - Gate hints behind the free allowance and the gem balance.
//   - Detect completion and expose derived stats for result recording.
//
// Notes:
//   - Every mutation replaces the State snapshot and is reported through the
//     state sink; every player-visible outcome goes through the feedback sink.
//   - Rule violations never return errors: they produce feedback and false.
//   - The engine holds no locks. Callers own one engine per session and
//     serialise calls to it.
package game

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/samber/lo"
	"golang.org/x/text/cases"
)

// ErrEmptyPuzzle is returned by New when the puzzle has no correct words.
var ErrEmptyPuzzle = errors.New("game: puzzle has no correct words")

const (
	msgEmptyInput      = "Please enter a word before submitting."
	msgAlreadyDone     = "This game is already completed! No more words to find."
	msgDuplicate       = "You have already submitted this word! Try a different one."
	msgWrong           = "Wrong! Try again or use a hint."
	msgAllFound        = "All words have been found! No more hints needed."
	msgNoHints         = "No hints available for this game."
	msgHintsExhausted  = "You've used all available hints for this game!"
	msgNoMoreHints     = "No more hints available."
	msgNotEnoughGemsFm = "You need %d %s to get more hints. You have %d gems available."
)

// Engine owns one puzzle attempt.
type Engine struct {
	puzzle     Puzzle
	cfg        Config
	state      State
	streak     int // consecutive correct answers, reset by wrong answers and hints
	gemsSpent  int
	startedAt  time.Time
	now        func() time.Time
	fold       cases.Caser
	onState    StateSink
	onFeedback FeedbackSink
}

// New constructs an engine for p starting from initial.
// Nil sinks are allowed and behave as no-ops.
func New(p Puzzle, initial State, onState StateSink, onFeedback FeedbackSink, opts ...Option) (*Engine, error) {
	if len(p.CorrectWords) == 0 {
		return nil, ErrEmptyPuzzle
	}
	o := resolveOptions(p, opts)
	if onState == nil {
		onState = func(State) {}
	}
	if onFeedback == nil {
		onFeedback = func(Feedback) {}
	}

	p.CorrectWords = append([]string(nil), p.CorrectWords...)
	p.Hints = append([]string(nil), p.Hints...)

	e := &Engine{
		puzzle:     p,
		cfg:        o.cfg,
		now:        o.now,
		fold:       cases.Fold(),
		onState:    onState,
		onFeedback: onFeedback,
	}
	e.state = e.sanitize(initial)
	e.startedAt = o.startedAt
	if e.startedAt.IsZero() {
		e.startedAt = e.now()
	}
	return e, nil
}

// sanitize clamps a caller-supplied snapshot to the engine invariants.
func (e *Engine) sanitize(s State) State {
	s = s.clone()
	if n := len(e.puzzle.CorrectWords); len(s.UserAnswers) > n {
		s.UserAnswers = s.UserAnswers[:n]
	}
	s.Score = max(0, s.Score)
	s.Gems = max(0, s.Gems)
	s.HintsUsed = max(0, s.HintsUsed)
	s.FreeHintsUsed = min(max(0, s.FreeHintsUsed), s.HintsUsed)
	s.CurrentWordIndex = len(s.UserAnswers)
	s.IsCompleted = len(s.UserAnswers) == len(e.puzzle.CorrectWords)
	return s
}

// SubmitAnswer checks input against the remaining correct words.
// It returns true only when the word is accepted and scored.
//
// Rejections, in order:
//   - blank input
//   - session already completed
//   - word already submitted (case-insensitive)
//   - word not in the puzzle (also resets the streak)
func (e *Engine) SubmitAnswer(input string) bool {
	word := strings.TrimSpace(input)
	if word == "" {
		e.feedback(FeedbackWrong, msgEmptyInput, 0)
		return false
	}
	if e.state.IsCompleted {
		e.feedback(FeedbackWrong, msgAlreadyDone, 0)
		return false
	}

	key := e.key(word)
	if lo.ContainsBy(e.state.UserAnswers, func(a string) bool { return e.key(a) == key }) {
		e.feedback(FeedbackWrong, msgDuplicate, 0)
		return false
	}
	match, ok := lo.Find(e.puzzle.CorrectWords, func(w string) bool { return e.key(w) == key })
	if !ok {
		e.streak = 0
		e.feedback(FeedbackWrong, msgWrong, 0)
		return false
	}

	streak := e.streak + 1
	points := e.pointsFor(streak)

	next := e.state.clone()
	next.UserAnswers = append(next.UserAnswers, word)
	next.CurrentWordIndex++
	next.Score += points
	next.IsCompleted = len(next.UserAnswers) == len(e.puzzle.CorrectWords)

	e.streak = streak
	e.commit(next)

	msg := fmt.Sprintf("Correct! \"%s\" +%d points", strings.TrimSpace(match), points)
	if streak > 1 {
		msg += fmt.Sprintf(" (%dx streak!)", streak)
	}
	e.feedback(FeedbackCorrect, msg, points)
	return true
}

// UseHint reveals the next unused hint, free while the allowance lasts and
// paid in gems afterwards. Any hint resets the streak.
func (e *Engine) UseHint() bool {
	if reason, ok := e.hintBlocked(); ok {
		e.feedback(FeedbackHint, reason, 0)
		return false
	}
	free := e.state.FreeHintsUsed < e.cfg.MaxFreeHints

	text := strings.TrimSpace(e.puzzle.Hints[e.state.HintsUsed])
	if text == "" {
		e.feedback(FeedbackHint, msgNoMoreHints, 0)
		return false
	}

	next := e.state.clone()
	next.HintsUsed++
	if free {
		next.FreeHintsUsed++
	} else {
		e.gemsSpent += min(e.cfg.GemsPerHint, next.Gems)
		next.Gems = max(0, next.Gems-e.cfg.GemsPerHint)
		next.Score = max(0, next.Score+e.cfg.PointsPerHint)
	}

	e.streak = 0
	e.commit(next)

	if free {
		e.feedback(FeedbackHint, fmt.Sprintf("Free Hint %d: %s", next.FreeHintsUsed, text), 0)
	} else {
		e.feedback(FeedbackHint, fmt.Sprintf("Gem Hint: %s (Cost: %d %s)", text, e.cfg.GemsPerHint, gemWord(e.cfg.GemsPerHint)), 0)
	}
	return true
}

// hintBlocked reports the first unmet hint precondition, if any.
func (e *Engine) hintBlocked() (string, bool) {
	switch {
	case len(e.state.UserAnswers) >= len(e.puzzle.CorrectWords):
		return msgAllFound, true
	case len(e.puzzle.Hints) == 0:
		return msgNoHints, true
	case e.state.HintsUsed >= len(e.puzzle.Hints):
		return msgHintsExhausted, true
	}
	if e.state.FreeHintsUsed < e.cfg.MaxFreeHints {
		return "", false
	}
	if remaining := e.remainingGems(); remaining < e.cfg.GemsPerHint {
		return fmt.Sprintf(msgNotEnoughGemsFm, e.cfg.GemsPerHint, gemWord(e.cfg.GemsPerHint), remaining), true
	}
	return "", false
}

// CanUseHint mirrors UseHint's gating without emitting feedback.
func (e *Engine) CanUseHint() bool {
	_, blocked := e.hintBlocked()
	return !blocked
}

// RemainingFreeHints is the unused part of the free allowance.
func (e *Engine) RemainingFreeHints() int {
	return max(0, e.cfg.MaxFreeHints-e.state.FreeHintsUsed)
}

// RemainingHints counts free hints plus hints the gem balance could buy.
func (e *Engine) RemainingHints() int {
	purchasable := e.AvailableGems() / e.cfg.GemsPerHint * hintsPerGemBlock
	return e.RemainingFreeHints() + purchasable
}

// AvailableGems is the balance minus gems notionally consumed by paid hints.
func (e *Engine) AvailableGems() int {
	return max(0, e.remainingGems())
}

func (e *Engine) remainingGems() int {
	paid := e.state.HintsUsed - e.state.FreeHintsUsed
	return e.state.Gems - paid/hintsPerGemBlock
}

// HintInfo aggregates the hint queries for display.
func (e *Engine) HintInfo() HintInfo {
	return HintInfo{
		CanUseHint:         e.CanUseHint(),
		HintsUsed:          e.state.HintsUsed,
		TotalHints:         len(e.puzzle.Hints),
		FreeHintsUsed:      e.state.FreeHintsUsed,
		MaxFreeHints:       e.cfg.MaxFreeHints,
		RemainingFreeHints: e.RemainingFreeHints(),
		RemainingHints:     e.RemainingHints(),
		AvailableGems:      e.AvailableGems(),
		GemsPerHint:        e.cfg.GemsPerHint,
	}
}

// CurrentWord returns the first word, in puzzle order, not yet found.
// Answers may be submitted in any order; this is a display affordance only.
func (e *Engine) CurrentWord() (string, bool) {
	return lo.Find(e.puzzle.CorrectWords, func(w string) bool {
		k := e.key(w)
		return !lo.ContainsBy(e.state.UserAnswers, func(a string) bool { return e.key(a) == k })
	})
}

// StreakInfo projects the multiplier and points of the next correct answer.
func (e *Engine) StreakInfo() StreakInfo {
	next := e.streak + 1
	return StreakInfo{
		CurrentStreak:  e.streak,
		NextMultiplier: next,
		NextPoints:     e.pointsFor(next),
		Enabled:        e.cfg.StreakMultiplier,
	}
}

// Stats derives the session summary. Safe to call after completion.
func (e *Engine) Stats() Stats {
	elapsed := e.now().Sub(e.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	found := len(e.state.UserAnswers)

	var wpm float64
	if mins := elapsed.Minutes(); mins > 0 {
		wpm = float64(found) / mins
	}
	var accuracy float64
	if attempts := found + e.state.HintsUsed; attempts > 0 {
		accuracy = float64(found) / float64(attempts)
	}

	return Stats{
		Elapsed:        elapsed,
		ElapsedMs:      elapsed.Milliseconds(),
		WordsPerMinute: wpm,
		Accuracy:       accuracy,
		CurrentStreak:  e.streak,
		HintsUsed:      e.state.HintsUsed,
		GemsSpent:      e.gemsSpent,
		Score:          e.state.Score,
		WordsFound:     found,
		TotalWords:     len(e.puzzle.CorrectWords),
	}
}

// AddGems credits gems from outside the hint economy. Non-positive amounts
// are ignored.
func (e *Engine) AddGems(amount int) {
	if amount <= 0 {
		return
	}
	next := e.state.clone()
	next.Gems += amount
	e.commit(next)
}

// Reset clears the session counters, keeping the gem balance, and restarts
// the clock.
func (e *Engine) Reset() {
	e.streak = 0
	e.gemsSpent = 0
	e.startedAt = e.now()
	e.commit(State{UserAnswers: []string{}, Gems: e.state.Gems})
}

// State returns a copy of the current snapshot.
func (e *Engine) State() State { return e.state.clone() }

// Status reports the coarse lifecycle of the session.
func (e *Engine) Status() Status {
	switch {
	case e.state.IsCompleted:
		return StatusCompleted
	case len(e.state.UserAnswers) == 0 && e.state.HintsUsed == 0:
		return StatusNotStarted
	default:
		return StatusInProgress
	}
}

// Puzzle returns the puzzle the engine was built with.
func (e *Engine) Puzzle() Puzzle { return e.puzzle }

// Config returns the resolved scoring policy.
func (e *Engine) Config() Config { return e.cfg }

// StartedAt is the session clock origin (construction or last Reset).
func (e *Engine) StartedAt() time.Time { return e.startedAt }

// pointsFor applies the streak formula: B, or B + B*0.5*streak when the
// multiplier is on and streak > 1, rounded half away from zero.
func (e *Engine) pointsFor(streak int) int {
	base := float64(e.cfg.PointsPerCorrect)
	points := base
	if e.cfg.StreakMultiplier && streak > 1 {
		points = base + base*0.5*float64(streak)
	}
	return int(math.Round(points))
}

func (e *Engine) commit(next State) {
	e.state = next
	e.onState(next.clone())
}

func (e *Engine) feedback(kind FeedbackKind, msg string, points int) {
	e.onFeedback(Feedback{Kind: kind, Message: msg, Points: points})
}

// key normalises a word for comparison.
func (e *Engine) key(s string) string {
	return e.fold.String(strings.TrimSpace(s))
}

func gemWord(n int) string {
	if n == 1 {
		return "gem"
	}
	return "gems"
}
