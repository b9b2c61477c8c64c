package service

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/rocketscienceinc/gamebot/internal/apperror"
	"github.com/rocketscienceinc/gamebot/internal/entity"
	"github.com/rocketscienceinc/gamebot/internal/game"
)

type resultRecorder interface {
	Record(ctx context.Context, game *entity.Game) []entity.GameResult
}

// GameHook observes a session. It runs on the loop goroutine.
type GameHook func(ctx context.Context, game *entity.Game)

type LoopOption func(*GameLoop)

// WithOnUpdate is called after every applied step, including the final one.
func WithOnUpdate(hook GameHook) LoopOption {
	return func(that *GameLoop) {
		that.onUpdate = hook
	}
}

// WithOnFinish is called once when the loop exits, after results were recorded.
func WithOnFinish(hook GameHook) LoopOption {
	return func(that *GameLoop) {
		that.onFinish = hook
	}
}

// GameLoop feeds moves and move timeouts of one session into its state machine.
// Run must be called exactly once; Submit may be called from any goroutine.
type GameLoop struct {
	logger   *slog.Logger
	session  *game.Session
	display  Display
	recorder resultRecorder
	timeout  time.Duration

	onUpdate GameHook
	onFinish GameHook

	events   chan game.MoveEvent
	done     chan struct{}
	snapshot atomic.Pointer[entity.Game]
}

func NewGameLoop(
	logger *slog.Logger,
	session *game.Session,
	display Display,
	recorder resultRecorder,
	timeout time.Duration,
	opts ...LoopOption,
) *GameLoop {
	loop := &GameLoop{
		logger:   logger.With("component", "GameLoop", "gameID", session.ID()),
		session:  session,
		display:  display,
		recorder: recorder,
		timeout:  timeout,
		onUpdate: func(context.Context, *entity.Game) {},
		onFinish: func(context.Context, *entity.Game) {},
		events:   make(chan game.MoveEvent),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(loop)
	}

	loop.snapshot.Store(session.Snapshot())

	return loop
}

func (that *GameLoop) ID() string {
	return that.session.ID()
}

// Snapshot returns the state after the last applied step.
func (that *GameLoop) Snapshot() *entity.Game {
	return that.snapshot.Load().Clone()
}

// Done is closed when the loop has exited.
func (that *GameLoop) Done() <-chan struct{} {
	return that.done
}

// Submit hands a move to the loop. It returns ErrSessionNotFound once the loop has exited.
func (that *GameLoop) Submit(ctx context.Context, event game.MoveEvent) error {
	select {
	case <-that.done:
		return apperror.ErrSessionNotFound
	default:
	}

	select {
	case that.events <- event:
		return nil
	case <-that.done:
		return apperror.ErrSessionNotFound
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (that *GameLoop) Run(ctx context.Context) {
	defer close(that.done)

	log := that.logger.With("method", "Run")

	_, err := that.session.Start()
	that.publish(ctx)
	if err != nil {
		log.Error("house failed to open the game", "error", err)
		that.finish(ctx)
		return
	}

	if that.session.IsFinished() {
		that.finish(ctx)
		return
	}

	timer := time.NewTimer(that.timeout)
	defer timer.Stop()

	armedAt := that.session.MoveCount()

	for {
		select {
		case <-ctx.Done():
			log.Info("loop cancelled", "moveCount", that.session.MoveCount())
			that.stop(context.WithoutCancel(ctx))
			return

		case event := <-that.events:
			if event.ActorID != that.session.CurrentPlayer() {
				that.notice(ctx, event.ActorID, apperror.ErrNotYourTurn)
				continue
			}

			step, err := that.session.Transition(event)
			if errors.Is(err, game.ErrHouseMove) {
				log.Error("house move failed, game aborted", "error", err)
				that.publish(ctx)
				that.finish(ctx)
				return
			}

			if err != nil {
				that.notice(ctx, event.ActorID, err)
				continue
			}

			that.publish(ctx)

			if step.Finished {
				that.finish(ctx)
				return
			}

			timer.Reset(that.timeout)
			armedAt = that.session.MoveCount()

		case <-timer.C:
			step, err := that.session.Transition(game.TimeoutEvent{MoveCount: armedAt})
			if err != nil {
				log.Error("timeout transition failed", "error", err)
				continue
			}

			if !step.Finished {
				continue
			}

			log.Info("player ran out of time", "winner", that.session.Snapshot().Winner)
			that.publish(ctx)
			that.finish(ctx)
			return
		}
	}
}

// publish stores and renders the current state.
func (that *GameLoop) publish(ctx context.Context) {
	snapshot := that.session.Snapshot()
	that.snapshot.Store(snapshot)

	that.onUpdate(ctx, snapshot)

	if err := that.display.Render(ctx, snapshot.Clone()); err != nil {
		that.logger.Warn("failed to render game", "error", err)
	}
}

func (that *GameLoop) finish(ctx context.Context) {
	snapshot := that.snapshot.Load()

	that.recorder.Record(ctx, snapshot.Clone())
	that.onFinish(ctx, snapshot.Clone())
}

// stop ends an interrupted session as aborted without recording results.
func (that *GameLoop) stop(ctx context.Context) {
	snapshot := that.session.Snapshot()
	if snapshot.IsOngoing() {
		snapshot.Status = entity.StatusAborted
		snapshot.Reason = entity.ReasonShutdown
		snapshot.UpdatedAt = time.Now().UTC()
	}

	that.snapshot.Store(snapshot)
	that.onFinish(ctx, snapshot.Clone())
}

func (that *GameLoop) notice(ctx context.Context, playerID string, reason error) {
	if err := that.display.Notice(ctx, playerID, noticeText(reason)); err != nil {
		that.logger.Warn("failed to send notice", "playerID", playerID, "error", err)
	}
}

// noticeText keeps only the user-facing part of a rejection.
func noticeText(err error) string {
	for _, known := range []error{
		apperror.ErrNotYourTurn,
		apperror.ErrCellOccupied,
		apperror.ErrColumnFull,
		apperror.ErrInvalidPosition,
		apperror.ErrGameFinished,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}

	return err.Error()
}
