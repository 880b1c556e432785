package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robalobadob/homophones/internal/game"
	"github.com/robalobadob/homophones/internal/store"
)

type fakeCatalog map[string]game.Puzzle

func (c fakeCatalog) ByID(id string) (game.Puzzle, error) {
	p, ok := c[id]
	if !ok {
		return game.Puzzle{}, errors.New("unknown challenge")
	}
	return p, nil
}

var testPuzzle = game.Puzzle{
	ID:           "weather",
	CorrectWords: []string{"great", "knew"},
	Hints:        []string{"very good", "past tense of know"},
}

var sparePuzzle = game.Puzzle{
	ID:           "spare",
	CorrectWords: []string{"buy"},
	Hints:        []string{"purchase", "not sell"},
}

type harness struct {
	st        store.Store
	mgr       *Manager
	completed []Completion
	now       time.Time
}

func newHarness(t *testing.T, st store.Store) *harness {
	t.Helper()
	h := &harness{st: st, now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	h.mgr = NewManager(st, fakeCatalog{testPuzzle.ID: testPuzzle, sparePuzzle.ID: sparePuzzle}, Options{
		GameOptions:      []game.Option{game.WithMaxFreeHints(1)},
		StartingGems:     2,
		CompletionReward: 3,
		OnComplete:       func(_ context.Context, c Completion) { h.completed = append(h.completed, c) },
		Clock:            func() time.Time { return h.now },
	})
	return h
}

var alice = Player{ID: "u-alice", Name: "alice"}

func TestStartSeedsWallet(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewMemoryStore())

	v, err := h.mgr.Start(ctx, alice, testPuzzle)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if v.SessionID == "" || v.ChallengeID != "weather" {
		t.Fatalf("view = %+v", v)
	}
	if v.Status != game.StatusNotStarted || v.State.Gems != 2 {
		t.Fatalf("status=%s gems=%d, want not_started/2", v.Status, v.State.Gems)
	}
	if v.Feedback != nil {
		t.Fatalf("unexpected feedback on start: %+v", v.Feedback)
	}

	gems, err := h.mgr.Gems(ctx, alice.ID)
	if err != nil || gems != 2 {
		t.Fatalf("Gems() = %d, %v, want 2", gems, err)
	}
}

func TestSubmitToCompletion(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewMemoryStore())
	v, _ := h.mgr.Start(ctx, alice, testPuzzle)
	id := v.SessionID

	v, err := h.mgr.Submit(ctx, id, alice.ID, "nope")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if v.OK || v.Feedback == nil || v.Feedback.Kind != game.FeedbackWrong {
		t.Fatalf("wrong word view = %+v", v)
	}

	v, _ = h.mgr.Submit(ctx, id, alice.ID, "GREAT")
	if !v.OK || v.State.Score != 10 || v.Status != game.StatusInProgress {
		t.Fatalf("after great: %+v", v)
	}
	h.now = h.now.Add(time.Minute)
	v, _ = h.mgr.Submit(ctx, id, alice.ID, "knew")
	if !v.OK || v.Status != game.StatusCompleted {
		t.Fatalf("after knew: %+v", v)
	}
	if v.State.Score != 30 {
		t.Errorf("score = %d, want 30 (10 + 20 streak)", v.State.Score)
	}
	if v.State.Gems != 5 {
		t.Errorf("gems = %d, want 2 + 3 reward", v.State.Gems)
	}
	if len(h.completed) != 1 {
		t.Fatalf("completions = %d, want 1", len(h.completed))
	}
	c := h.completed[0]
	if c.Player != alice || c.Puzzle.ID != "weather" || c.Stats.WordsFound != 2 || c.Stats.ElapsedMs != 60_000 {
		t.Fatalf("completion = %+v", c)
	}

	gems, _ := h.mgr.Gems(ctx, alice.ID)
	if gems != 5 {
		t.Fatalf("wallet = %d, want 5", gems)
	}

	// Replaying after a reset notifies again but does not pay twice.
	if _, err := h.mgr.Reset(ctx, id, alice.ID); err != nil {
		t.Fatalf("reset: %v", err)
	}
	h.mgr.Submit(ctx, id, alice.ID, "great")
	v, _ = h.mgr.Submit(ctx, id, alice.ID, "knew")
	if v.State.Gems != 5 || len(h.completed) != 2 {
		t.Fatalf("gems=%d completions=%d, want 5/2", v.State.Gems, len(h.completed))
	}
}

func TestHintSpendsWallet(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewMemoryStore())
	v, _ := h.mgr.Start(ctx, alice, testPuzzle)

	v, _ = h.mgr.Hint(ctx, v.SessionID, alice.ID)
	if !v.OK || v.State.FreeHintsUsed != 1 || v.State.Gems != 2 {
		t.Fatalf("free hint view = %+v", v)
	}
	v, _ = h.mgr.Hint(ctx, v.SessionID, alice.ID)
	if !v.OK || v.State.Gems != 1 || v.Stats.GemsSpent != 1 {
		t.Fatalf("paid hint view = %+v", v)
	}
	if v.Feedback == nil || v.Feedback.Message != "Gem Hint: past tense of know (Cost: 1 gem)" {
		t.Fatalf("feedback = %+v", v.Feedback)
	}
	if gems, _ := h.mgr.Gems(ctx, alice.ID); gems != 1 {
		t.Fatalf("wallet = %d, want 1", gems)
	}

	v, _ = h.mgr.Hint(ctx, v.SessionID, alice.ID)
	if v.OK || v.Feedback.Message != "You've used all available hints for this game!" {
		t.Fatalf("exhausted view = %+v", v)
	}
}

func TestOwnershipAndMissing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewMemoryStore())
	v, _ := h.mgr.Start(ctx, alice, testPuzzle)

	if _, err := h.mgr.Submit(ctx, v.SessionID, "u-bob", "great"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign submit err = %v, want ErrForbidden", err)
	}
	if _, err := h.mgr.Get(ctx, "missing", alice.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing get err = %v, want ErrNotFound", err)
	}
}

func TestRestoreFromStore(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	h := newHarness(t, st)
	v, _ := h.mgr.Start(ctx, alice, testPuzzle)
	h.mgr.Submit(ctx, v.SessionID, alice.ID, "great")

	// A second manager over the same store stands in for a restart.
	h2 := newHarness(t, st)
	h2.now = h.now.Add(30 * time.Second)
	got, err := h2.mgr.Get(ctx, v.SessionID, alice.ID)
	if err != nil {
		t.Fatalf("get after restart: %v", err)
	}
	if len(got.State.UserAnswers) != 1 || got.State.Score != 10 {
		t.Fatalf("restored state = %+v", got.State)
	}
	if got.Stats.ElapsedMs != 30_000 {
		t.Errorf("elapsed = %d, want clock origin kept", got.Stats.ElapsedMs)
	}

	h2.mgr.Forget(v.SessionID)
	got, err = h2.mgr.Submit(ctx, v.SessionID, alice.ID, "knew")
	if err != nil || got.Status != game.StatusCompleted {
		t.Fatalf("submit after forget: %+v, %v", got, err)
	}
}

func (m *Manager) liveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

func TestWalletSharedAcrossSessions(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewMemoryStore())
	a, _ := h.mgr.Start(ctx, alice, testPuzzle)
	b, _ := h.mgr.Start(ctx, alice, sparePuzzle)

	h.mgr.Hint(ctx, a.SessionID, alice.ID) // free
	h.mgr.Hint(ctx, a.SessionID, alice.ID) // paid
	if gems, _ := h.mgr.Gems(ctx, alice.ID); gems != 1 {
		t.Fatalf("wallet after paid hint in A = %d, want 1", gems)
	}

	// B still believes it holds 2 gems; a rejected word must not write that back.
	v, _ := h.mgr.Submit(ctx, b.SessionID, alice.ID, "zzz")
	if v.OK {
		t.Fatal("zzz accepted")
	}
	if gems, _ := h.mgr.Gems(ctx, alice.ID); gems != 1 {
		t.Fatalf("wallet after wrong word in B = %d, want 1", gems)
	}

	h.mgr.Hint(ctx, b.SessionID, alice.ID) // free
	if gems, _ := h.mgr.Gems(ctx, alice.ID); gems != 1 {
		t.Fatalf("wallet after free hint in B = %d, want 1", gems)
	}
	h.mgr.Hint(ctx, b.SessionID, alice.ID) // paid, applied as a delta
	if gems, _ := h.mgr.Gems(ctx, alice.ID); gems != 0 {
		t.Fatalf("wallet after paid hint in B = %d, want 0", gems)
	}
}

func TestStartReusesOpenSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewMemoryStore())

	first, _ := h.mgr.Start(ctx, alice, testPuzzle)
	h.mgr.Hint(ctx, first.SessionID, alice.ID)

	for i := 0; i < 100; i++ {
		v, err := h.mgr.Start(ctx, alice, testPuzzle)
		if err != nil {
			t.Fatalf("start %d: %v", i, err)
		}
		if v.SessionID != first.SessionID {
			t.Fatalf("start %d opened %s, want reuse of %s", i, v.SessionID, first.SessionID)
		}
		if v.State.FreeHintsUsed != 1 {
			t.Fatalf("free hint allowance reset: %+v", v.State)
		}
	}
	if n := h.mgr.liveCount(); n != 1 {
		t.Fatalf("live sessions = %d, want 1", n)
	}

	// Another player gets their own session.
	bob := Player{ID: "u-bob", Name: "bob"}
	if v, _ := h.mgr.Start(ctx, bob, testPuzzle); v.SessionID == first.SessionID {
		t.Fatal("bob reused alice's session")
	}

	// Finishing retires the session; the next start is fresh.
	h.mgr.Submit(ctx, first.SessionID, alice.ID, "great")
	h.mgr.Submit(ctx, first.SessionID, alice.ID, "knew")
	if n := h.mgr.liveCount(); n != 1 {
		t.Fatalf("live sessions after completion = %d, want only bob's", n)
	}
	if _, err := h.st.Get(ctx, openKey(alice.ID, testPuzzle.ID)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("open index still present: %v", err)
	}
	next, _ := h.mgr.Start(ctx, alice, testPuzzle)
	if next.SessionID == first.SessionID || next.Status != game.StatusNotStarted {
		t.Fatalf("start after completion = %+v", next)
	}

	// The finished session is still readable by id.
	done, err := h.mgr.Get(ctx, first.SessionID, alice.ID)
	if err != nil || done.Status != game.StatusCompleted {
		t.Fatalf("get finished = %+v, %v", done, err)
	}
	if n := h.mgr.liveCount(); n != 2 {
		t.Fatalf("live sessions after reading a finished one = %d, want 2", n)
	}
}

func TestMergeWallet(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewMemoryStore())
	guest := Player{ID: "anon:g1", Name: "guest"}

	v, _ := h.mgr.Start(ctx, guest, testPuzzle)
	h.mgr.Submit(ctx, v.SessionID, guest.ID, "great")
	h.mgr.Submit(ctx, v.SessionID, guest.ID, "knew")
	if gems, _ := h.mgr.Gems(ctx, guest.ID); gems != 5 {
		t.Fatalf("guest wallet = %d, want 5", gems)
	}

	if err := h.mgr.MergeWallet(ctx, guest.ID, alice.ID); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if gems, _ := h.mgr.Gems(ctx, alice.ID); gems != 5 {
		t.Fatalf("account wallet = %d, want 2 starting + 3 earned", gems)
	}
	if _, err := h.st.Get(ctx, walletKey(guest.ID)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("guest wallet not dropped: %v", err)
	}

	// Nothing earned, nothing moved.
	if err := h.mgr.MergeWallet(ctx, "anon:empty", alice.ID); err != nil {
		t.Fatalf("merge empty: %v", err)
	}
	if gems, _ := h.mgr.Gems(ctx, alice.ID); gems != 5 {
		t.Fatalf("account wallet after empty merge = %d, want 5", gems)
	}
}
