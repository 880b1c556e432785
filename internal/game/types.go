// internal/game/types.go
//
// Core type definitions for the homophone session engine.
// Defines:
//   - Puzzle: the immutable challenge a session is played against.
//   - State: the externally visible snapshot of a session.
//   - Feedback: transient player-facing outcome of the last action.
//   - Config/Option: per-session scoring and hint policy.
//   - HintInfo, StreakInfo, Stats: derived read-only views.

package game

import "time"

// Puzzle is one themed passage with the words the player must correct.
type Puzzle struct {
	ID                  string   `json:"id"`
	ThemeName           string   `json:"themeName"`
	Content             string   `json:"content"`
	CorrectWords        []string `json:"correctWords"`
	Hints               []string `json:"hints,omitempty"`
	PointPerCorrectWord int      `json:"pointPerCorrectWord,omitempty"` // 0 means "use default"
	Difficulty          string   `json:"difficulty,omitempty"`
	Date                string   `json:"date,omitempty"` // YYYY-MM-DD when pinned to a day
}

// State is the snapshot handed to the state sink after every mutation.
// It is replaced wholesale, never edited in place.
type State struct {
	UserAnswers      []string `json:"userAnswers"`
	CurrentWordIndex int      `json:"currentWordIndex"`
	Score            int      `json:"score"`
	HintsUsed        int      `json:"hintsUsed"`
	FreeHintsUsed    int      `json:"freeHintsUsed"`
	Gems             int      `json:"gems"`
	IsCompleted      bool     `json:"isCompleted"`
}

// clone returns a deep copy so snapshots never share the answers slice.
func (s State) clone() State {
	out := s
	out.UserAnswers = append(make([]string, 0, len(s.UserAnswers)), s.UserAnswers...)
	return out
}

// FeedbackKind classifies a feedback event for display.
type FeedbackKind string

const (
	FeedbackCorrect FeedbackKind = "correct"
	FeedbackWrong   FeedbackKind = "wrong"
	FeedbackHint    FeedbackKind = "hint"
)

// Feedback describes the outcome of the last engine call.
type Feedback struct {
	Kind    FeedbackKind `json:"type"`
	Message string       `json:"message"`
	Points  int          `json:"points,omitempty"`
}

// StateSink receives the full new state after each mutation.
type StateSink func(State)

// FeedbackSink receives a feedback event after each player-visible call.
type FeedbackSink func(Feedback)

// Status is the coarse lifecycle of a session.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// HintInfo aggregates the hint economy for display.
type HintInfo struct {
	CanUseHint         bool `json:"canUseHint"`
	HintsUsed          int  `json:"hintsUsed"`
	TotalHints         int  `json:"totalHints"`
	FreeHintsUsed      int  `json:"freeHintsUsed"`
	MaxFreeHints       int  `json:"maxFreeHints"`
	RemainingFreeHints int  `json:"remainingFreeHints"`
	RemainingHints     int  `json:"remainingHints"`
	AvailableGems      int  `json:"availableGems"`
	GemsPerHint        int  `json:"gemsPerHint"`
}

// StreakInfo projects what the next correct answer is worth.
type StreakInfo struct {
	CurrentStreak  int  `json:"currentStreak"`
	NextMultiplier int  `json:"nextMultiplier"`
	NextPoints     int  `json:"nextPoints"`
	Enabled        bool `json:"enabled"`
}

// Stats is the derived summary used for result recording.
type Stats struct {
	Elapsed        time.Duration `json:"-"`
	ElapsedMs      int64         `json:"elapsedMs"`
	WordsPerMinute float64       `json:"wordsPerMinute"`
	Accuracy       float64       `json:"accuracy"` // found / (found + hintsUsed), 0..1
	CurrentStreak  int           `json:"currentStreak"`
	HintsUsed      int           `json:"hintsUsed"`
	GemsSpent      int           `json:"gemsSpent"`
	Score          int           `json:"score"`
	WordsFound     int           `json:"wordsFound"`
	TotalWords     int           `json:"totalWords"`
}
