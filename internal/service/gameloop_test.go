package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gamebot/internal/apperror"
	"github.com/rocketscienceinc/gamebot/internal/config"
	"github.com/rocketscienceinc/gamebot/internal/entity"
	"github.com/rocketscienceinc/gamebot/internal/game"
	"github.com/rocketscienceinc/gamebot/internal/minimax"
	"github.com/rocketscienceinc/gamebot/internal/variant"
	"github.com/rocketscienceinc/gamebot/testing/suite"
)

const waitTimeout = 5 * time.Second

type loopFixture struct {
	loop     *GameLoop
	display  *mockDisplay
	sink     *mockSink
	renders  chan *entity.Game
	notices  chan string
	finished []*entity.Game
	mu       sync.Mutex
}

func newLoopFixture(t *testing.T, kind, playerB, houseID string, timeout time.Duration) *loopFixture {
	t.Helper()

	v, err := variant.New(kind, config.Variant{})
	require.NoError(t, err)

	var searcher game.Searcher
	if houseID != "" {
		searcher = minimax.NewSearcher(suite.NewLogger())
	}

	fixture := &loopFixture{
		display: &mockDisplay{},
		sink:    &mockSink{},
		renders: make(chan *entity.Game, 32),
		notices: make(chan string, 32),
	}

	fixture.display.On("Render", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		fixture.renders <- args.Get(1).(*entity.Game)
	})
	fixture.display.On("Notice", mock.Anything, mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		fixture.notices <- args.String(1) + ": " + args.String(2)
	})

	session := game.New("g1", v, "alice", playerB, houseID, searcher)
	recorder := NewRecorder(suite.NewLogger(), fixture.sink, true)

	fixture.loop = NewGameLoop(suite.NewLogger(), session, fixture.display, recorder, timeout,
		WithOnFinish(func(_ context.Context, snapshot *entity.Game) {
			fixture.mu.Lock()
			defer fixture.mu.Unlock()
			fixture.finished = append(fixture.finished, snapshot)
		}),
	)

	return fixture
}

func (that *loopFixture) nextRender(t *testing.T) *entity.Game {
	t.Helper()

	select {
	case rendered := <-that.renders:
		return rendered
	case <-time.After(waitTimeout):
		t.Fatal("no render")
		return nil
	}
}

func (that *loopFixture) nextNotice(t *testing.T) string {
	t.Helper()

	select {
	case notice := <-that.notices:
		return notice
	case <-time.After(waitTimeout):
		t.Fatal("no notice")
		return ""
	}
}

func (that *loopFixture) waitDone(t *testing.T) {
	t.Helper()

	select {
	case <-that.loop.Done():
	case <-time.After(waitTimeout):
		t.Fatal("loop did not finish")
	}
}

func submit(t *testing.T, loop *GameLoop, actor string, row, col int) {
	t.Helper()

	err := loop.Submit(context.Background(), game.MoveEvent{ActorID: actor, Position: entity.Position{Row: row, Col: col}})
	require.NoError(t, err)
}

func TestGameLoop_Timeout(t *testing.T) {
	// Given: a running game where bob is on the clock
	fixture := newLoopFixture(t, entity.ConnectFour, "bob", "", 250*time.Millisecond)
	fixture.sink.On("Submit", mock.Anything, resultFor("alice", entity.OutcomeWon)).Return(nil).Once()
	fixture.sink.On("Submit", mock.Anything, resultFor("bob", entity.OutcomeLost)).Return(nil).Once()

	go fixture.loop.Run(context.Background())
	fixture.nextRender(t)

	submit(t, fixture.loop, "alice", 0, 3)
	fixture.nextRender(t)

	// When: bob never answers
	fixture.waitDone(t)

	// Then: alice wins on timeout and each participant is recorded once
	final := fixture.nextRender(t)
	assert.Equal(t, entity.StatusWon, final.Status)
	assert.Equal(t, entity.ReasonTimeout, final.Reason)
	assert.Equal(t, "alice", final.Winner)

	fixture.sink.AssertExpectations(t)
	fixture.sink.AssertNumberOfCalls(t, "Submit", 2)
	require.Len(t, fixture.finished, 1)
	assert.Equal(t, entity.StatusWon, fixture.finished[0].Status)
}

func TestGameLoop_HouseAnswersBeforeRender(t *testing.T) {
	// Given: alice against the house in tic-tac-toe
	fixture := newLoopFixture(t, entity.TicTacToe, "house", "house", time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go fixture.loop.Run(ctx)
	initial := fixture.nextRender(t)
	assert.Equal(t, 0, initial.MoveCount)

	// When: alice moves
	submit(t, fixture.loop, "alice", 0, 0)

	// Then: the next render already holds the house reply with alice on turn
	rendered := fixture.nextRender(t)
	assert.Equal(t, 2, rendered.MoveCount)
	assert.Equal(t, "alice", rendered.CurrentPlayer())
	assert.Equal(t, entity.StatusOngoing, rendered.Status)
	assert.Equal(t, rendered, fixture.loop.Snapshot())
}

func TestGameLoop_RejectedMoves(t *testing.T) {
	// Given: a fresh game between two humans
	fixture := newLoopFixture(t, entity.TicTacToe, "bob", "", time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go fixture.loop.Run(ctx)
	fixture.nextRender(t)
	before := fixture.loop.Snapshot()

	// When: bob moves out of turn
	submit(t, fixture.loop, "bob", 1, 1)

	// Then: bob is told and nothing changed
	assert.Equal(t, "bob: "+apperror.ErrNotYourTurn.Error(), fixture.nextNotice(t))
	assert.Equal(t, before, fixture.loop.Snapshot())

	// When: alice moves then bob targets her cell
	submit(t, fixture.loop, "alice", 1, 1)
	fixture.nextRender(t)
	submit(t, fixture.loop, "bob", 1, 1)

	// Then: bob gets an occupied-cell notice
	assert.Equal(t, "bob: "+apperror.ErrCellOccupied.Error(), fixture.nextNotice(t))
	assert.Equal(t, 1, fixture.loop.Snapshot().MoveCount)
}

func TestGameLoop_LineWin(t *testing.T) {
	// Given: a game where alice is about to complete the top row
	fixture := newLoopFixture(t, entity.TicTacToe, "bob", "", time.Minute)
	fixture.sink.On("Submit", mock.Anything, resultFor("alice", entity.OutcomeWon)).Return(nil).Once()
	fixture.sink.On("Submit", mock.Anything, resultFor("bob", entity.OutcomeLost)).Return(nil).Once()

	go fixture.loop.Run(context.Background())
	fixture.nextRender(t)

	moves := []struct {
		actor    string
		row, col int
	}{
		{"alice", 0, 0}, {"bob", 1, 0}, {"alice", 0, 1}, {"bob", 1, 1}, {"alice", 0, 2},
	}
	for _, m := range moves {
		submit(t, fixture.loop, m.actor, m.row, m.col)
		fixture.nextRender(t)
	}

	// When: the loop ends
	fixture.waitDone(t)

	// Then: the results are in and the session no longer accepts moves
	fixture.sink.AssertExpectations(t)
	err := fixture.loop.Submit(context.Background(), game.MoveEvent{ActorID: "bob", Position: entity.Position{Row: 2, Col: 2}})
	require.ErrorIs(t, err, apperror.ErrSessionNotFound)

	final := fixture.loop.Snapshot()
	assert.Equal(t, entity.StatusWon, final.Status)
	assert.Equal(t, "alice", final.Winner)
	require.Len(t, fixture.finished, 1)
}

func TestGameLoop_Cancel(t *testing.T) {
	// Given: a running game
	fixture := newLoopFixture(t, entity.ConnectFour, "bob", "", time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	go fixture.loop.Run(ctx)
	fixture.nextRender(t)

	// When: the context is cancelled
	cancel()
	fixture.waitDone(t)

	// Then: the game is aborted by shutdown without results
	fixture.sink.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
	require.Len(t, fixture.finished, 1)
	assert.Equal(t, entity.StatusAborted, fixture.finished[0].Status)
	assert.Equal(t, entity.ReasonShutdown, fixture.finished[0].Reason)
}
