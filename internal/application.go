package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/gamebot/internal/config"
	"github.com/rocketscienceinc/gamebot/internal/minimax"
	"github.com/rocketscienceinc/gamebot/internal/repository"
	"github.com/rocketscienceinc/gamebot/internal/repository/storage"
	"github.com/rocketscienceinc/gamebot/internal/service"
	"github.com/rocketscienceinc/gamebot/internal/usecase"
	"github.com/rocketscienceinc/gamebot/internal/variant"
	"github.com/rocketscienceinc/gamebot/transport/discord"
	"github.com/rocketscienceinc/gamebot/transport/rest"
	"github.com/rocketscienceinc/gamebot/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp wires the game engine to its storage and platforms and runs until a signal or a server failure.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.NewRedisStorage(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	variants, err := variant.NewRegistry(conf.Game)
	if err != nil {
		return fmt.Errorf("invalid game configuration: %w", err)
	}

	playerRepo := repository.NewPlayerRepository(redisStorage.Connection, conf.Redis.SessionTTL)
	gameRepo := repository.NewGameRepository(redisStorage.Connection, conf.Redis.SessionTTL)
	leaderboardRepo := repository.NewLeaderboardRepository(redisStorage.Connection)

	searcher := minimax.NewSearcher(logger)
	recorder := service.NewRecorder(logger, leaderboardRepo, conf.Game.RecordHouseResults)

	gameManager := usecase.NewGameManager(logger, conf.Game, variants, searcher, recorder, playerRepo, gameRepo)
	defer gameManager.Shutdown()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		router := rest.NewRouter(logger, rest.NewHandlers(logger, gameManager, leaderboardRepo))
		if err := rest.Start(groupCtx, logger, conf.HTTPPort, router); err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		wsServer := websocket.New(logger, gameManager)
		if err := wsServer.Start(groupCtx, conf.SocketPort); err != nil {
			return fmt.Errorf("WebSocket server error: %w", err)
		}
		return nil
	})

	if conf.Discord.Enabled() {
		group.Go(func() error {
			if err := discord.New(logger, conf.Discord, gameManager).Start(groupCtx); err != nil {
				return fmt.Errorf("discord bot error: %w", err)
			}
			return nil
		})
	} else {
		log.Info("discord token not set, bot disabled")
	}

	log.Info("application started", "variants", variants.Kinds())

	if err = group.Wait(); err != nil {
		return err
	}

	log.Info("application stopped")

	return nil
}
