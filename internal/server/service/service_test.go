package service

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aichess/internal/board"
	"aichess/internal/rules"
	"aichess/internal/server/core"
	"aichess/internal/server/game"
	"aichess/internal/server/storage"
)

func newService(t *testing.T) *Service {
	t.Helper()
	store, err := storage.NewBadger("")
	require.NoError(t, err)

	svc := New(store)
	t.Cleanup(func() { svc.Shutdown(time.Second) })
	return svc
}

func createGame(t *testing.T, svc *Service) string {
	t.Helper()
	id := svc.GenerateGameID()
	white := core.NewPlayer(core.PlayerConfig{Type: core.PlayerHuman}, board.White)
	black := core.NewPlayer(core.PlayerConfig{Type: core.PlayerHuman}, board.Black)
	require.NoError(t, svc.CreateGame(id, white, black, rules.New()))
	return id
}

func moves(t *testing.T, svc *Service, id string) []string {
	t.Helper()
	var out []string
	require.NoError(t, svc.View(id, func(g *game.Game) { out = g.Moves() }))
	return out
}

func TestApplyMoveThroughRules(t *testing.T) {
	svc := newService(t)
	id := createGame(t, svc)

	next, m, err := svc.ApplyMove(id, "e2e4")
	require.NoError(t, err)
	assert.Equal(t, "e2e4", m.String())
	assert.Equal(t, board.Black, next.CurrentPlayer)

	_, _, err = svc.ApplyMove(id, "e4e3")
	assert.ErrorIs(t, err, rules.ErrIllegalMove)

	_, _, err = svc.ApplyMove(id, "bogus")
	assert.ErrorIs(t, err, rules.ErrNotation)

	assert.Equal(t, []string{"e2e4"}, moves(t, svc, id))

	_, _, err = svc.ApplyMove("missing", "e2e4")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestCheckmateSetsWinner(t *testing.T) {
	svc := newService(t)
	id := createGame(t, svc)

	for _, mv := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		_, _, err := svc.ApplyMove(id, mv)
		require.NoError(t, err)
	}

	var state core.State
	require.NoError(t, svc.View(id, func(g *game.Game) { state = g.State() }))
	assert.Equal(t, core.StateBlackWins, state)
}

func TestUndoAndDelete(t *testing.T) {
	svc := newService(t)
	id := createGame(t, svc)

	for _, mv := range []string{"e2e4", "e7e5"} {
		_, _, err := svc.ApplyMove(id, mv)
		require.NoError(t, err)
	}

	require.NoError(t, svc.UndoMoves(id, 1))
	assert.Equal(t, []string{"e2e4"}, moves(t, svc, id))
	assert.Error(t, svc.UndoMoves(id, 5))

	require.NoError(t, svc.DeleteGame(id))
	assert.ErrorIs(t, svc.DeleteGame(id), ErrGameNotFound)
	assert.Equal(t, 0, svc.GameCount())
}

func TestSaveAndLoad(t *testing.T) {
	svc := newService(t)
	id := createGame(t, svc)

	for _, mv := range []string{"e2e4", "f7f6", "d1h5"} {
		_, _, err := svc.ApplyMove(id, mv)
		require.NoError(t, err)
	}

	save, err := svc.SaveGame(id)
	require.NoError(t, err)
	assert.Equal(t, id, save.GameID)

	saves, err := svc.ListSaves()
	require.NoError(t, err)
	require.Len(t, saves, 1)
	assert.Equal(t, save.ID, saves[0].ID)

	loadedID, err := svc.LoadGame(save.ID)
	require.NoError(t, err)
	assert.NotEqual(t, id, loadedID)
	assert.Equal(t, moves(t, svc, id), moves(t, svc, loadedID))

	// The restored game continues independently
	_, _, err = svc.ApplyMove(loadedID, "g7g6")
	require.NoError(t, err)
	assert.Len(t, moves(t, svc, id), 3)

	require.NoError(t, svc.DeleteSave(save.ID))
	_, err = svc.LoadGame(save.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStorageDisabled(t *testing.T) {
	svc := New(nil)
	defer svc.Shutdown(time.Second)

	assert.Equal(t, "disabled", svc.GetStorageHealth())
	id := createGame(t, svc)

	_, err := svc.SaveGame(id)
	assert.ErrorIs(t, err, ErrStorageDisabled)
	_, err = svc.ListSaves()
	assert.ErrorIs(t, err, ErrStorageDisabled)
}

func TestWaitNotifiedOnMove(t *testing.T) {
	svc := newService(t)
	id := createGame(t, svc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notify := svc.RegisterWait(ctx, id, 0)
	_, _, err := svc.ApplyMove(id, "e2e4")
	require.NoError(t, err)

	select {
	case <-notify:
	case <-time.After(time.Second):
		t.Fatal("waiter was not notified")
	}
}

func TestWaitRegistryTimeout(t *testing.T) {
	w := NewWaitRegistry(50 * time.Millisecond)
	defer w.Shutdown(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	select {
	case <-w.RegisterWait(ctx, "g1", 0):
	case <-time.After(time.Second):
		t.Fatal("wait did not time out")
	}
}

func TestWaitRegistryRemoveGame(t *testing.T) {
	w := NewWaitRegistry(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notify := w.RegisterWait(ctx, "g1", 3)

	// An up to date move count does not wake the waiter
	w.NotifyGame("g1", 3)
	select {
	case <-notify:
		t.Fatal("notified without a change")
	case <-time.After(20 * time.Millisecond):
	}

	w.RemoveGame("g1")
	select {
	case <-notify:
	case <-time.After(time.Second):
		t.Fatal("remove did not wake the waiter")
	}

	cancel()
	assert.NoError(t, w.Shutdown(time.Second))
}

// failingStore refuses every audit write
type failingStore struct {
	storage.Store
}

var errDiskFull = errors.New("disk full")

func (failingStore) RecordNewGame(storage.GameRecord) error { return errDiskFull }
func (failingStore) RecordMove(storage.MoveRecord) error { return errDiskFull }
func (failingStore) DeleteUndoneMoves(string, int) error { return errDiskFull }
func (failingStore) IsHealthy() bool { return false }
func (failingStore) Close() error { return nil }

func TestAuditFailuresAreLogged(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	svc := New(failingStore{})
	t.Cleanup(func() { svc.Shutdown(time.Second) })
	id := createGame(t, svc)

	_, _, err := svc.ApplyMove(id, "e2e4")
	require.NoError(t, err)
	require.NoError(t, svc.UndoMoves(id, 1))

	out := logs.String()
	assert.Contains(t, out, "record game "+id+" failed: disk full")
	assert.Contains(t, out, "record move 1 of "+id+" failed: disk full")
	assert.Contains(t, out, "delete undone moves of "+id+" failed: disk full")
	assert.Empty(t, moves(t, svc, id))
}
