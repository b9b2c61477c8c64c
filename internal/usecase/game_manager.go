package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/rocketscienceinc/gamebot/internal/apperror"
	"github.com/rocketscienceinc/gamebot/internal/config"
	"github.com/rocketscienceinc/gamebot/internal/entity"
	"github.com/rocketscienceinc/gamebot/internal/game"
	"github.com/rocketscienceinc/gamebot/internal/service"
	"github.com/rocketscienceinc/gamebot/internal/variant"
)

var ErrManagerClosed = errors.New("game manager is shut down")

type playerRepo interface {
	Seat(ctx context.Context, playerID, gameID string) error
	Release(ctx context.Context, playerID, gameID string) error
	GetByID(ctx context.Context, id string) (*entity.Player, error)
}

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, game *entity.Game) error
	GetByID(ctx context.Context, id string) (*entity.Game, error)
	DeleteByID(ctx context.Context, id string) error
}

type resultRecorder interface {
	Record(ctx context.Context, game *entity.Game) []entity.GameResult
}

// StartRequest opens a match. PlayerB may be empty when VsHouse is set.
type StartRequest struct {
	Variant string
	PlayerA string
	PlayerB string
	VsHouse bool
	Display service.Display
}

// GameManager owns the live sessions: one interaction loop per game.
type GameManager struct {
	logger   *slog.Logger
	conf     config.Game
	variants variant.Registry
	searcher game.Searcher
	recorder resultRecorder

	playerRepo playerRepo
	gameRepo   gameRepo

	shuffle func() bool

	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	mu     sync.Mutex
	loops  map[string]*service.GameLoop
	closed bool
}

func NewGameManager(
	logger *slog.Logger,
	conf config.Game,
	variants variant.Registry,
	searcher game.Searcher,
	recorder resultRecorder,
	playerRepo playerRepo,
	gameRepo gameRepo,
) *GameManager {
	ctx, cancel := context.WithCancel(context.Background())

	return &GameManager{
		logger:   logger,
		conf:     conf,
		variants: variants,
		searcher: searcher,
		recorder: recorder,

		playerRepo: playerRepo,
		gameRepo:   gameRepo,

		shuffle: func() bool { return frand.Intn(2) == 1 },

		ctx:    ctx,
		cancel: cancel,
		loops:  make(map[string]*service.GameLoop),
	}
}

func (that *GameManager) Variants() []string {
	return that.variants.Kinds()
}

func (that *GameManager) StartGame(ctx context.Context, req StartRequest) (*entity.Game, error) {
	log := that.logger.With("method", "StartGame", "variant", req.Variant, "playerID", req.PlayerA)

	if that.isClosed() {
		return nil, ErrManagerClosed
	}

	v, err := that.variants.Get(req.Variant)
	if err != nil {
		return nil, err
	}

	houseID := ""
	if req.VsHouse || req.PlayerB == "" || req.PlayerB == that.conf.HouseID {
		houseID = that.conf.HouseID
		req.PlayerB = houseID
	}

	if req.PlayerA == "" || req.PlayerA == req.PlayerB || req.PlayerA == that.conf.HouseID {
		return nil, apperror.ErrSelfPlay
	}

	players := [2]string{req.PlayerA, req.PlayerB}
	if that.conf.ShuffleSeats && that.shuffle() {
		players[0], players[1] = players[1], players[0]
	}

	gameID := uuid.NewString()

	seated := make([]string, 0, len(players))
	for _, playerID := range players {
		if playerID == houseID {
			continue
		}

		if err = that.playerRepo.Seat(ctx, playerID, gameID); err != nil {
			that.release(ctx, gameID, seated)
			return nil, fmt.Errorf("failed to seat player: %w", err)
		}

		seated = append(seated, playerID)
	}

	session := game.New(gameID, v, players[0], players[1], houseID, that.searcher)
	snapshot := session.Snapshot()

	if err = that.gameRepo.CreateOrUpdate(ctx, snapshot); err != nil {
		that.release(ctx, gameID, seated)
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	loop := service.NewGameLoop(that.logger, session, req.Display, that.recorder, that.conf.MoveTimeout,
		service.WithOnUpdate(that.saveGame),
		service.WithOnFinish(that.finishGame),
	)

	that.mu.Lock()
	if that.closed {
		that.mu.Unlock()
		that.deleteGame(ctx, snapshot)
		return nil, ErrManagerClosed
	}
	that.loops[gameID] = loop
	that.mu.Unlock()

	that.group.Go(func() error {
		loop.Run(that.ctx)
		return nil
	})

	log.Info("game started", "gameID", gameID, "playerA", players[0], "playerB", players[1])

	return snapshot, nil
}

// SubmitMove hands a move to the game's loop. Unknown and finished games yield ErrSessionNotFound.
func (that *GameManager) SubmitMove(ctx context.Context, gameID, actorID string, pos entity.Position) error {
	loop, ok := that.loop(gameID)
	if !ok {
		return fmt.Errorf("game %s: %w", gameID, apperror.ErrSessionNotFound)
	}

	if err := loop.Submit(ctx, game.MoveEvent{ActorID: actorID, Position: pos}); err != nil {
		return fmt.Errorf("game %s: %w", gameID, err)
	}

	return nil
}

// GetGame prefers the live state and falls back to the stored snapshot.
func (that *GameManager) GetGame(ctx context.Context, gameID string) (*entity.Game, error) {
	if loop, ok := that.loop(gameID); ok {
		return loop.Snapshot(), nil
	}

	stored, err := that.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return stored, nil
}

func (that *GameManager) ActiveGameOf(ctx context.Context, playerID string) (*entity.Game, error) {
	player, err := that.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}

	return that.GetGame(ctx, player.GameID)
}

// Shutdown stops every loop and waits for them to persist their last state.
func (that *GameManager) Shutdown() {
	that.mu.Lock()
	that.closed = true
	that.mu.Unlock()

	that.cancel()
	_ = that.group.Wait()

	that.logger.Info("game manager stopped")
}

func (that *GameManager) isClosed() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.closed
}

func (that *GameManager) loop(gameID string) (*service.GameLoop, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	loop, ok := that.loops[gameID]

	return loop, ok
}

func (that *GameManager) saveGame(ctx context.Context, game *entity.Game) {
	if err := that.gameRepo.CreateOrUpdate(ctx, game); err != nil {
		that.logger.Error("failed to save game", "gameID", game.ID, "error", err)
	}
}

// finishGame runs on the loop goroutine once the game is over.
func (that *GameManager) finishGame(ctx context.Context, game *entity.Game) {
	that.mu.Lock()
	delete(that.loops, game.ID)
	that.mu.Unlock()

	if game.Reason == entity.ReasonShutdown {
		that.saveGame(ctx, game)
		that.release(ctx, game.ID, game.Humans())
		return
	}

	that.deleteGame(ctx, game)
}

func (that *GameManager) deleteGame(ctx context.Context, game *entity.Game) {
	log := that.logger.With("method", "deleteGame", "gameID", game.ID)

	if err := that.gameRepo.DeleteByID(ctx, game.ID); err != nil {
		log.Error("failed to delete game", "error", err)
	}

	that.release(ctx, game.ID, game.Humans())

	log.Info("game deleted", "status", game.Status, "reason", game.Reason)
}

func (that *GameManager) release(ctx context.Context, gameID string, playerIDs []string) {
	for _, playerID := range playerIDs {
		if err := that.playerRepo.Release(ctx, playerID, gameID); err != nil {
			that.logger.Error("failed to release player", "gameID", gameID, "playerID", playerID, "error", err)
		}
	}
}
