package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/placechat/internal/domain/chat"
	"github.com/GriffinCanCode/placechat/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/placechat/internal/shared/id"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
	"github.com/GriffinCanCode/placechat/internal/shared/utils"
)

const writeTimeout = 10 * time.Second

// Client message types
const (
	TypeChat = "chat"
	TypePing = "ping"
)

// TurnRunner runs one streamed chat turn
type TurnRunner interface {
	Run(ctx context.Context, turn chat.Turn, emit chat.Emitter) (chat.Summary, error)
}

// clientMessage is one inbound frame. Chat frames carry a full ChatRequest.
type clientMessage struct {
	Type string `json:"type"`
	types.ChatRequest
}

// Handler manages WebSocket connections
type Handler struct {
	chat     TurnRunner
	upgrader websocket.Upgrader
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// NewHandler creates a WebSocket handler. allowedOrigins follows the CORS
// configuration; "*" accepts any origin.
func NewHandler(runner TurnRunner, allowedOrigins []string, logger *zap.Logger, metrics *monitoring.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		chat: runner,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger:  logger,
		metrics: metrics,
	}
}

// HandleConnection upgrades the request and serves chat turns one at a time
// until the client goes away. Frames are read on a separate goroutine so a
// closed socket cancels the turn in flight.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(utils.MaxRequestSize)

	connID := id.NewConnectionID()
	logger := h.logger.With(zap.String("connection_id", connID.String()))
	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	out := &connEmitter{conn: conn}
	if err := out.send(map[string]string{"type": "system", "connection_id": connID.String()}); err != nil {
		return
	}

	frames := make(chan []byte, 8)
	go readFrames(ctx, cancel, conn, frames, logger)

	for data := range frames {
		var msg clientMessage
		if err := sonic.Unmarshal(data, &msg); err != nil {
			if out.Emit(chat.ErrorNotice("malformed message")) != nil {
				return
			}
			continue
		}

		switch msg.Type {
		case TypePing:
			err = out.send(map[string]string{"type": "pong"})
		case TypeChat:
			err = h.handleChat(ctx, msg.ChatRequest, out, logger)
		default:
			err = out.Emit(chat.ErrorNotice(fmt.Sprintf("unknown message type %q", msg.Type)))
		}
		if err != nil {
			logger.Debug("websocket closed during write", zap.Error(err))
			return
		}
	}
}

// readFrames feeds inbound frames to the turn loop. A read failure means the
// client is gone: ctx is cancelled and frames closed.
func readFrames(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, frames chan<- []byte, logger *zap.Logger) {
	defer close(frames)
	defer cancel()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
		select {
		case frames <- data:
		case <-ctx.Done():
			return
		}
	}
}

// handleChat runs one turn. Only write failures are returned; rejected
// requests are reported to the client as an error event.
func (h *Handler) handleChat(ctx context.Context, req types.ChatRequest, out *connEmitter, logger *zap.Logger) error {
	if err := utils.ValidateChatRequest(req); err != nil {
		return out.Emit(chat.ErrorNotice(err.Error()))
	}

	summary, err := h.chat.Run(ctx, chat.Turn{
		Messages: req.Messages,
		Origin:   req.Origin,
		Language: req.Language,
	}, out)
	if errors.Is(err, chat.ErrNoUserMessage) {
		return out.Emit(chat.ErrorNotice(err.Error()))
	}
	if err != nil {
		return err
	}
	logger.Debug("websocket turn finished",
		zap.String("turn_id", summary.TurnID.String()),
		zap.String("outcome", summary.Outcome),
	)
	return nil
}

// connEmitter writes chat events as text frames
type connEmitter struct {
	conn *websocket.Conn
}

func (e *connEmitter) Emit(ev chat.Event) error {
	data, err := ev.MarshalJSON()
	if err != nil {
		return err
	}
	return e.write(data)
}

func (e *connEmitter) send(v any) error {
	data, err := sonic.Marshal(v)
	if err != nil {
		return err
	}
	return e.write(data)
}

func (e *connEmitter) write(data []byte) error {
	if err := e.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	return e.conn.WriteMessage(websocket.TextMessage, data)
}

func originChecker(allowed []string) func(*http.Request) bool {
	allowAll := len(allowed) == 0
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if allowAll || origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
