// internal/session/manager.go
//
// Live session manager.
// Responsibilities:
//   - Own one game.Engine per session id and serialise calls to it.
//   - Capture the engine's state and feedback sinks into a per-session view.
//   - Persist session snapshots and gem wallets to a store.Store, and
//     restore sessions that are no longer in memory.
//   - Reuse a player's open session for a challenge instead of opening another.
//   - Credit the completion reward and notify the completion handler once.
//
// Notes:
//   - The wallet is shared by all of a player's sessions. Each session applies
//     only its own gem delta to it, never its absolute balance.
//   - Completed sessions leave memory; they can still be restored by id.
//   - The streak and gems-spent counters live only in the engine; a restored
//     session starts them at zero.

package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/homophones/internal/game"
	"github.com/robalobadob/homophones/internal/metrics"
	"github.com/robalobadob/homophones/internal/store"
)

var (
	// ErrNotFound is returned for unknown session ids.
	ErrNotFound = errors.New("session: not found")
	// ErrForbidden is returned when a player touches someone else's session.
	ErrForbidden = errors.New("session: not your session")
)

// Catalog resolves challenges by id when a session is restored.
type Catalog interface {
	ByID(id string) (game.Puzzle, error)
}

// Player identifies who owns a session. ID is a user id or an anonymous
// cookie id.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Completion is handed to the completion handler when a session finds its
// last word.
type Completion struct {
	SessionID string
	Player    Player
	Puzzle    game.Puzzle
	State     game.State
	Stats     game.Stats
	At        time.Time
}

// CompletionHandler is called, outside the session lock, every time a session
// finds its last word. The reward is credited only the first time.
type CompletionHandler func(ctx context.Context, c Completion)

// Options configures a Manager.
type Options struct {
	GameOptions      []game.Option
	StartingGems     int
	CompletionReward int
	OnComplete       CompletionHandler
	Clock            func() time.Time
}

// View is what callers see after every operation.
type View struct {
	SessionID   string          `json:"sessionId"`
	ChallengeID string          `json:"challengeId"`
	Status      game.Status     `json:"status"`
	OK          bool            `json:"ok"`
	Feedback    *game.Feedback  `json:"feedback,omitempty"`
	State       game.State      `json:"state"`
	Hints       game.HintInfo   `json:"hints"`
	Streak      game.StreakInfo `json:"streak"`
	Stats       game.Stats      `json:"stats"`
}

// record is the persisted form of a session.
type record struct {
	ID          string     `json:"id"`
	Player      Player     `json:"player"`
	ChallengeID string     `json:"challengeId"`
	State       game.State `json:"state"`
	StartedAt   time.Time  `json:"startedAt"`
	Rewarded    bool       `json:"rewarded"`
}

type entry struct {
	mu       sync.Mutex
	rec      record
	eng      *game.Engine
	feedback *game.Feedback
}

// Manager hands out and drives sessions. Safe for concurrent use.
type Manager struct {
	store   store.Store
	catalog Catalog
	opts    Options

	mu   sync.Mutex
	live map[string]*entry

	startMu  sync.Mutex // serialises open-session lookup + creation
	walletMu sync.Mutex // serialises wallet read-modify-write
}

// NewManager builds a Manager over st.
func NewManager(st store.Store, cat Catalog, opts Options) *Manager {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.OnComplete == nil {
		opts.OnComplete = func(context.Context, Completion) {}
	}
	return &Manager{store: st, catalog: cat, opts: opts, live: make(map[string]*entry)}
}

func sessionKey(id string) string    { return "session:" + id }
func walletKey(player string) string { return "gems:" + player }

// openKey indexes the player's unfinished session for a challenge.
func openKey(player, challengeID string) string { return "open:" + player + "|" + challengeID }

// Gems returns the player's wallet, or the starting balance for new players.
func (m *Manager) Gems(ctx context.Context, playerID string) (int, error) {
	b, err := m.store.Get(ctx, walletKey(playerID))
	if errors.Is(err, store.ErrNotFound) {
		return m.opts.StartingGems, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load wallet: %w", err)
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, fmt.Errorf("decode wallet: %w", err)
	}
	return n, nil
}

func (m *Manager) setGems(ctx context.Context, playerID string, n int) error {
	return m.store.Set(ctx, walletKey(playerID), []byte(strconv.Itoa(n)))
}

// adjustGems applies delta to the player's wallet, flooring at zero.
func (m *Manager) adjustGems(ctx context.Context, playerID string, delta int) error {
	if delta == 0 {
		return nil
	}
	m.walletMu.Lock()
	defer m.walletMu.Unlock()
	n, err := m.Gems(ctx, playerID)
	if err != nil {
		return err
	}
	return m.setGems(ctx, playerID, max(0, n+delta))
}

// MergeWallet moves the gems a guest earned above the starting grant onto an
// account, then drops the guest wallet. Guests who never earned anything
// leave the account untouched.
func (m *Manager) MergeWallet(ctx context.Context, fromPlayer, toPlayer string) error {
	if fromPlayer == "" || toPlayer == "" || fromPlayer == toPlayer {
		return nil
	}
	b, err := m.store.Get(ctx, walletKey(fromPlayer))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load wallet: %w", err)
	}
	guest, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("decode wallet: %w", err)
	}
	if earned := guest - m.opts.StartingGems; earned > 0 {
		if err := m.adjustGems(ctx, toPlayer, earned); err != nil {
			return fmt.Errorf("merge wallet: %w", err)
		}
	}
	if err := m.store.Delete(ctx, walletKey(fromPlayer)); err != nil {
		return fmt.Errorf("drop guest wallet: %w", err)
	}
	log.Info().Str("from", fromPlayer).Str("to", toPlayer).Int("guestGems", guest).Msg("wallet merged")
	return nil
}

// Start returns the player's unfinished session for p, or opens a fresh one
// seeded with the player's wallet.
func (m *Manager) Start(ctx context.Context, player Player, p game.Puzzle) (View, error) {
	m.startMu.Lock()
	defer m.startMu.Unlock()

	if v, ok := m.resume(ctx, player.ID, p.ID); ok {
		return v, nil
	}

	gems, err := m.Gems(ctx, player.ID)
	if err != nil {
		return View{}, err
	}

	e := &entry{rec: record{
		ID:          uuid.NewString(),
		Player:      player,
		ChallengeID: p.ID,
		State:       game.State{UserAnswers: []string{}, Gems: gems},
	}}
	if err := m.attach(e, p); err != nil {
		return View{}, err
	}
	e.rec.StartedAt = e.eng.StartedAt()

	if err := store.SetJSON(ctx, m.store, sessionKey(e.rec.ID), e.rec); err != nil {
		return View{}, fmt.Errorf("save session: %w", err)
	}
	if err := m.store.Set(ctx, openKey(player.ID, p.ID), []byte(e.rec.ID)); err != nil {
		return View{}, fmt.Errorf("save session index: %w", err)
	}

	m.mu.Lock()
	m.live[e.rec.ID] = e
	m.mu.Unlock()
	metrics.SessionsStarted.Inc()
	metrics.SessionsActive.Inc()

	log.Info().Str("session", e.rec.ID).Str("player", player.ID).Str("challenge", p.ID).Msg("session started")
	return e.view(true), nil
}

// resume looks up the open-session index. A dangling or finished entry is
// treated as absent.
func (m *Manager) resume(ctx context.Context, playerID, challengeID string) (View, bool) {
	b, err := m.store.Get(ctx, openKey(playerID, challengeID))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Str("player", playerID).Msg("load session index")
		}
		return View{}, false
	}
	v, err := m.Get(ctx, string(b), playerID)
	if err != nil || v.Status == game.StatusCompleted {
		return View{}, false
	}
	log.Debug().Str("session", v.SessionID).Str("player", playerID).Msg("session resumed")
	return v, true
}

// attach builds the engine for e, wiring its sinks into e.
func (m *Manager) attach(e *entry, p game.Puzzle) error {
	opts := append([]game.Option{game.WithClock(m.opts.Clock)}, m.opts.GameOptions...)
	if !e.rec.StartedAt.IsZero() {
		opts = append(opts, game.WithStartTime(e.rec.StartedAt))
	}
	eng, err := game.New(p, e.rec.State,
		func(s game.State) { e.rec.State = s },
		func(f game.Feedback) { e.feedback = &f },
		opts...)
	if err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	e.eng = eng
	e.rec.State = eng.State()
	return nil
}

// Get returns the current view without changing anything.
func (m *Manager) Get(ctx context.Context, id, playerID string) (View, error) {
	var v View
	err := m.with(ctx, id, playerID, func(e *entry) bool {
		v = e.view(true)
		return false
	})
	return v, err
}

// Submit plays one word.
func (m *Manager) Submit(ctx context.Context, id, playerID, word string) (View, error) {
	var v View
	var done *Completion
	err := m.with(ctx, id, playerID, func(e *entry) bool {
		wasDone := e.rec.State.IsCompleted
		ok := e.eng.SubmitAnswer(word)
		if ok {
			metrics.AnswersTotal.WithLabelValues("correct").Inc()
		} else {
			metrics.AnswersTotal.WithLabelValues("rejected").Inc()
		}
		if ok && !wasDone && e.rec.State.IsCompleted {
			done = m.complete(e)
		}
		v = e.view(ok)
		return ok
	})
	if err != nil {
		return View{}, err
	}
	if done != nil {
		m.opts.OnComplete(ctx, *done)
	}
	return v, nil
}

// complete credits the reward once per session and builds the completion
// event. Caller holds e.mu.
func (m *Manager) complete(e *entry) *Completion {
	st := e.eng.Stats()
	metrics.SessionsCompleted.Inc()
	metrics.FinalScore.Observe(float64(st.Score))

	if !e.rec.Rewarded {
		e.eng.AddGems(m.opts.CompletionReward)
		e.rec.Rewarded = true
	}
	log.Info().Str("session", e.rec.ID).Int("score", st.Score).Int("hints", st.HintsUsed).Msg("session completed")

	return &Completion{
		SessionID: e.rec.ID,
		Player:    e.rec.Player,
		Puzzle:    e.eng.Puzzle(),
		State:     e.eng.State(),
		Stats:     st,
		At:        m.opts.Clock(),
	}
}

// Hint asks for the next hint.
func (m *Manager) Hint(ctx context.Context, id, playerID string) (View, error) {
	var v View
	err := m.with(ctx, id, playerID, func(e *entry) bool {
		before := e.rec.State
		spentBefore := e.eng.Stats().GemsSpent
		ok := e.eng.UseHint()
		switch {
		case !ok:
			metrics.HintsTotal.WithLabelValues("denied").Inc()
		case e.rec.State.FreeHintsUsed > before.FreeHintsUsed:
			metrics.HintsTotal.WithLabelValues("free").Inc()
		default:
			metrics.HintsTotal.WithLabelValues("paid").Inc()
			metrics.GemsSpent.Add(float64(e.eng.Stats().GemsSpent - spentBefore))
		}
		v = e.view(ok)
		return ok
	})
	return v, err
}

// Reset restarts the session, keeping the gem balance.
func (m *Manager) Reset(ctx context.Context, id, playerID string) (View, error) {
	var v View
	err := m.with(ctx, id, playerID, func(e *entry) bool {
		e.eng.Reset()
		e.rec.StartedAt = e.eng.StartedAt()
		v = e.view(true)
		return true
	})
	return v, err
}

// with locks the session and runs fn. When fn reports a change the session
// is persisted and its gem delta applied to the wallet; persistence failures
// are logged only. A completed session is dropped from memory afterwards.
func (m *Manager) with(ctx context.Context, id, playerID string, fn func(*entry) bool) error {
	e, err := m.lookup(ctx, id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.rec.Player.ID != playerID {
		return ErrForbidden
	}
	e.feedback = nil
	gemsBefore := e.rec.State.Gems
	if fn(e) {
		if err := m.persist(ctx, e, e.rec.State.Gems-gemsBefore); err != nil {
			log.Warn().Err(err).Str("session", id).Msg("persist session")
		}
	}
	if e.rec.State.IsCompleted {
		m.retire(ctx, e)
	}
	return nil
}

// retire forgets a finished session and clears its open index. Caller holds e.mu.
func (m *Manager) retire(ctx context.Context, e *entry) {
	m.Forget(e.rec.ID)
	key := openKey(e.rec.Player.ID, e.rec.ChallengeID)
	if b, err := m.store.Get(ctx, key); err == nil && string(b) == e.rec.ID {
		if err := m.store.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("session", e.rec.ID).Msg("clear session index")
		}
	}
}

func (m *Manager) lookup(ctx context.Context, id string) (*entry, error) {
	m.mu.Lock()
	e, ok := m.live[id]
	m.mu.Unlock()
	if ok {
		return e, nil
	}

	var rec record
	if err := store.GetJSON(ctx, m.store, sessionKey(id), &rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	p, err := m.catalog.ByID(rec.ChallengeID)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", id, err)
	}
	e = &entry{rec: rec}
	if err := m.attach(e, p); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.live[id]; ok {
		return cur, nil
	}
	m.live[id] = e
	metrics.SessionsActive.Inc()
	log.Debug().Str("session", id).Msg("session restored")
	return e, nil
}

// Forget drops a session from memory. It stays in the store.
func (m *Manager) Forget(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.live[id]; ok {
		delete(m.live, id)
		metrics.SessionsActive.Dec()
	}
}

// persist writes the session and applies gemDelta to the owner's wallet.
// Caller holds e.mu.
func (m *Manager) persist(ctx context.Context, e *entry, gemDelta int) error {
	if err := store.SetJSON(ctx, m.store, sessionKey(e.rec.ID), e.rec); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := m.adjustGems(ctx, e.rec.Player.ID, gemDelta); err != nil {
		return fmt.Errorf("save wallet: %w", err)
	}
	return nil
}

func (e *entry) view(ok bool) View {
	return View{
		SessionID:   e.rec.ID,
		ChallengeID: e.rec.ChallengeID,
		Status:      e.eng.Status(),
		OK:          ok,
		Feedback:    e.feedback,
		State:       e.eng.State(),
		Hints:       e.eng.HintInfo(),
		Streak:      e.eng.StreakInfo(),
		Stats:       e.eng.Stats(),
	}
}
