package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rocketscienceinc/gamebot/internal/entity"
	"github.com/rocketscienceinc/gamebot/internal/usecase"
)

const (
	pingInterval    = 30 * time.Second
	writeTimeout    = 10 * time.Second
	sendBuffer      = 16
	shutdownTimeout = 5 * time.Second
)

var errNotConnected = errors.New("player is not connected")

type gameManager interface {
	StartGame(ctx context.Context, req usecase.StartRequest) (*entity.Game, error)
	SubmitMove(ctx context.Context, gameID, actorID string, pos entity.Position) error
	ActiveGameOf(ctx context.Context, playerID string) (*entity.Game, error)
}

type handlerFunc func(ctx context.Context, conn *connection, msg *Message) error

// Server is the socket platform: clients drive games with actions and receive every re-render.
type Server struct {
	logger   *slog.Logger
	manager  gameManager
	upgrader websocket.Upgrader

	handlers map[string]handlerFunc

	connectionsMutex sync.RWMutex
	connections      map[string]*connection
}

func New(logger *slog.Logger, manager gameManager) *Server {
	server := &Server{
		logger:  logger.With("component", "websocket"),
		manager: manager,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		connections: make(map[string]*connection),
	}

	server.handlers = map[string]handlerFunc{
		actionConnect:  server.handleConnect,
		actionGameNew:  server.handleNewGame,
		actionGameTurn: server.handleGameTurn,
	}

	return server
}

func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	return mux
}

// Start serves /ws until ctx is cancelled.
func (that *Server) Start(ctx context.Context, port string) error {
	log := that.logger.With("method", "Start", "port", port)

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           that.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("failed to shut down server", "error", err)
		}

		that.closeAll()
	}()

	log.Info("websocket server started")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	ws, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := newConnection(ws)
	go func() {
		if err := conn.writeLoop(); err != nil {
			log.Debug("writer stopped", "error", err)
		}
	}()

	log.Info("websocket connection established", "remote", r.RemoteAddr)

	that.readLoop(r.Context(), conn)
	that.handleDisconnect(conn)
}

// readLoop dispatches client messages until the connection breaks.
func (that *Server) readLoop(ctx context.Context, conn *connection) {
	log := that.logger.With("method", "readLoop")

	for {
		var msg Message
		if err := conn.ws.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("failed to read message", "error", err)
			}
			return
		}

		handler, ok := that.handlers[msg.Action]
		if !ok {
			conn.send(msg.Action, Response{Error: "unknown action"})
			continue
		}

		if err := handler(ctx, conn, &msg); err != nil {
			log.Error("failed to process message", "action", msg.Action, "error", err)
		}
	}
}

func (that *Server) register(playerID string, conn *connection) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	if previous, ok := that.connections[playerID]; ok && previous != conn {
		previous.close()
	}

	conn.playerID = playerID
	that.connections[playerID] = conn
}

func (that *Server) connectionOf(playerID string) (*connection, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	conn, ok := that.connections[playerID]

	return conn, ok
}

func (that *Server) handleDisconnect(conn *connection) {
	that.connectionsMutex.Lock()
	if current, ok := that.connections[conn.playerID]; ok && current == conn {
		delete(that.connections, conn.playerID)
	}
	that.connectionsMutex.Unlock()

	conn.close()

	that.logger.Info("player disconnected", "method", "handleDisconnect", "playerID", conn.playerID)
}

func (that *Server) closeAll() {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	for playerID, conn := range that.connections {
		conn.close()
		delete(that.connections, playerID)
	}
}
