// internal/results/recorder.go
//
// Bridge from finished sessions to game_results.

package results

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/homophones/internal/session"
)

// FromCompletion converts a finished session into a Result.
func FromCompletion(c session.Completion) Result {
	return Result{
		PlayerID:    c.Player.ID,
		PlayerName:  c.Player.Name,
		ChallengeID: c.Puzzle.ID,
		Theme:       c.Puzzle.ThemeName,
		Difficulty:  c.Puzzle.Difficulty,
		Score:       c.State.Score,
		WordsFound:  c.Stats.WordsFound,
		TotalWords:  c.Stats.TotalWords,
		HintsUsed:   c.Stats.HintsUsed,
		GemsSpent:   c.Stats.GemsSpent,
		ElapsedMs:   c.Stats.ElapsedMs,
		At:          c.At,
	}
}

// Recorder returns a completion handler that records each first completion.
// Failures are logged; the player's session is unaffected.
func Recorder(s *Store) session.CompletionHandler {
	return func(ctx context.Context, c session.Completion) {
		r := FromCompletion(c)
		fresh, err := s.Record(ctx, r)
		if err != nil {
			log.Warn().Err(err).Str("session", c.SessionID).Msg("record result")
			return
		}
		log.Debug().Str("player", r.PlayerID).Str("challenge", r.ChallengeID).Bool("fresh", fresh).Msg("result recorded")
	}
}
