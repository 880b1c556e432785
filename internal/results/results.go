// internal/results/results.go
//
// Finished-game persistence and leaderboards (SQLite, game_results table).
// Responsibilities:
//   - Record one result per (player, challenge); replays are ignored.
//   - Rank players per day, ISO week, month or all time.
//   - Per-player summary and recent history.
//   - Move anonymous results onto an account after signup/login.

package results

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/robalobadob/homophones/internal/daily"
)

// Period selects the leaderboard window.
type Period string

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
	AllTime Period = "alltime"
)

// ParsePeriod maps a query value to a Period; empty means Daily.
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return Daily, nil
	case Daily, Weekly, Monthly, AllTime:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period %q", s)
	}
}

// Key returns the calendar key of t for this period ("" for AllTime).
func (p Period) Key(t time.Time) string {
	switch p {
	case Weekly:
		return daily.WeekKey(t)
	case Monthly:
		return daily.MonthKey(t)
	case AllTime:
		return ""
	default:
		return daily.DateKey(t)
	}
}

func (p Period) column() string {
	switch p {
	case Weekly:
		return "week_key"
	case Monthly:
		return "month_key"
	default:
		return "date_key"
	}
}

// Result is one finished session.
type Result struct {
	PlayerID    string    `json:"playerId"`
	PlayerName  string    `json:"playerName"`
	ChallengeID string    `json:"challengeId"`
	Theme       string    `json:"theme"`
	Difficulty  string    `json:"difficulty,omitempty"`
	Score       int       `json:"score"`
	WordsFound  int       `json:"wordsFound"`
	TotalWords  int       `json:"totalWords"`
	HintsUsed   int       `json:"hintsUsed"`
	GemsSpent   int       `json:"gemsSpent"`
	ElapsedMs   int64     `json:"elapsedMs"`
	At          time.Time `json:"at"`
}

// Entry is one leaderboard row.
type Entry struct {
	Rank       int    `json:"rank"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
	Games      int    `json:"games"`
	HintsUsed  int    `json:"hintsUsed"`
	ElapsedMs  int64  `json:"elapsedMs"`
}

// Summary aggregates one player's history.
type Summary struct {
	PlayerID    string `json:"playerId"`
	GamesPlayed int    `json:"gamesPlayed"`
	TotalScore  int    `json:"totalScore"`
	BestScore   int    `json:"bestScore"`
	HintsUsed   int    `json:"hintsUsed"`
	LastPlayed  string `json:"lastPlayed,omitempty"`
}

// Store reads and writes game_results.
type Store struct {
	db *sql.DB
}

// New wraps a migrated database.
func New(db *sql.DB) *Store { return &Store{db: db} }

// Record inserts r. It reports false when the player already has a result
// for the challenge.
func (s *Store) Record(ctx context.Context, r Result) (bool, error) {
	if r.At.IsZero() {
		r.At = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO game_results
			(player_id, player_name, challenge_id, theme, difficulty,
			 date_key, week_key, month_key,
			 score, words_found, total_words, hints_used, gems_spent, elapsed_ms, created_at)
		VALUES (?,?,?,?,?, ?,?,?, ?,?,?,?,?,?,?)`,
		r.PlayerID, r.PlayerName, r.ChallengeID, r.Theme, r.Difficulty,
		daily.DateKey(r.At), daily.WeekKey(r.At), daily.MonthKey(r.At),
		r.Score, r.WordsFound, r.TotalWords, r.HintsUsed, r.GemsSpent, r.ElapsedMs,
		r.At.UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("insert result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert result: %w", err)
	}
	return n == 1, nil
}

// AlreadyPlayed reports whether player has a result for challengeID.
func (s *Store) AlreadyPlayed(ctx context.Context, playerID, challengeID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM game_results WHERE player_id=? AND challenge_id=?`, playerID, challengeID).Scan(&one)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("query result: %w", err)
	}
	return true, nil
}

// Leaderboard ranks players by total score in the period containing t.
// Ties go to fewer hints, then less time.
func (s *Store) Leaderboard(ctx context.Context, p Period, t time.Time, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	where, args := "", []any{}
	if p != AllTime {
		where = "WHERE " + p.column() + " = ?"
		args = append(args, p.Key(t))
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id, MAX(player_name), SUM(score) AS total, COUNT(*),
		       SUM(hints_used) AS hints, SUM(elapsed_ms) AS ms
		FROM game_results `+where+`
		GROUP BY player_id
		ORDER BY total DESC, hints ASC, ms ASC, player_id ASC
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.PlayerID, &e.PlayerName, &e.Score, &e.Games, &e.HintsUsed, &e.ElapsedMs); err != nil {
			return nil, fmt.Errorf("scan leaderboard: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}
	return lo.Map(out, func(e Entry, i int) Entry {
		e.Rank = i + 1
		return e
	}), nil
}

// PlayerSummary aggregates every result of playerID.
func (s *Store) PlayerSummary(ctx context.Context, playerID string) (Summary, error) {
	sum := Summary{PlayerID: playerID}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(score),0), COALESCE(MAX(score),0),
		       COALESCE(SUM(hints_used),0), COALESCE(MAX(date_key),'')
		FROM game_results WHERE player_id=?`, playerID).
		Scan(&sum.GamesPlayed, &sum.TotalScore, &sum.BestScore, &sum.HintsUsed, &sum.LastPlayed)
	if err != nil {
		return Summary{}, fmt.Errorf("query summary: %w", err)
	}
	return sum, nil
}

// Recent lists the latest results of playerID, newest first.
func (s *Store) Recent(ctx context.Context, playerID string, limit int) ([]Result, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT player_id, player_name, challenge_id, theme, difficulty,
		       score, words_found, total_words, hints_used, gems_spent, elapsed_ms, created_at
		FROM game_results WHERE player_id=?
		ORDER BY created_at DESC, id DESC LIMIT ?`, playerID, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()

	out := []Result{}
	for rows.Next() {
		var (
			r       Result
			created string
		)
		if err := rows.Scan(&r.PlayerID, &r.PlayerName, &r.ChallengeID, &r.Theme, &r.Difficulty,
			&r.Score, &r.WordsFound, &r.TotalWords, &r.HintsUsed, &r.GemsSpent, &r.ElapsedMs, &created); err != nil {
			return nil, fmt.Errorf("scan recent: %w", err)
		}
		r.At, _ = time.Parse(time.RFC3339, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Claim moves anonymous results onto an account. Challenges the account
// already has a result for keep the account's row.
func (s *Store) Claim(ctx context.Context, anonID, userID, name string) error {
	if anonID == "" || userID == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE OR IGNORE game_results SET player_id=?, player_name=? WHERE player_id=?`, userID, name, anonID)
	if err != nil {
		return fmt.Errorf("claim results: %w", err)
	}
	return nil
}
