package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/placechat/internal/domain/chat"
	"github.com/GriffinCanCode/placechat/internal/shared/types"
	"github.com/GriffinCanCode/placechat/internal/shared/utils"
)

// Chat handles POST /api/chat. The response is a server-sent event stream of
// chat events; headers are only committed by the first event so requests the
// turn rejects up front still get a plain 400.
func (h *Handlers) Chat(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, utils.MaxRequestSize)

	var req types.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: invalid chat request body", utils.ErrValidation))
		return
	}
	if err := utils.ValidateChatRequest(req); err != nil {
		h.respondError(c, err)
		return
	}

	stream := newSSEStream(c)
	summary, err := h.chat.Run(c.Request.Context(), chat.Turn{
		Messages: req.Messages,
		Origin:   req.Origin,
		Language: req.Language,
	}, stream)
	if err == nil {
		return
	}
	if !stream.started {
		h.respondError(c, err)
		return
	}
	h.logger.Debug("chat stream aborted",
		zap.String("turn_id", summary.TurnID.String()),
		zap.Error(err),
	)
}

// sseStream writes chat events as "data: <json>\n\n" frames
type sseStream struct {
	c       *gin.Context
	started bool
}

func newSSEStream(c *gin.Context) *sseStream {
	return &sseStream{c: c}
}

var errClientGone = errors.New("client disconnected")

func (s *sseStream) Emit(e chat.Event) error {
	if s.c.Request.Context().Err() != nil {
		return errClientGone
	}
	data, err := e.MarshalJSON()
	if err != nil {
		return err
	}

	w := s.c.Writer
	if !s.started {
		h := w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("Connection", "keep-alive")
		h.Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		s.started = true
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("%w: %v", errClientGone, err)
	}
	w.Flush()
	return nil
}
