package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/livekit/protocol/livekit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/buildershub-receptionist/agent/contract"
	"github.com/tanpawarit/buildershub-receptionist/agent/receptionist"
	statex "github.com/tanpawarit/buildershub-receptionist/agent/state"
	toolx "github.com/tanpawarit/buildershub-receptionist/agent/tool"
	"github.com/tanpawarit/buildershub-receptionist/agent/voice"
)

// Conversation is the receptionist as seen by the HTTP surface.
type Conversation interface {
	Enter(ctx context.Context, sess contractx.Session, channel statex.Channel) error
	HandleTurn(ctx context.Context, sess contractx.Session, text string) (receptionist.Turn, error)
	Release(ctx context.Context, callID string) error
}

const defaultIdleTimeout = 15 * time.Minute

type Handlers struct {
	Executor     toolx.Executor
	Conversation Conversation
	Voice        voice.Config
	Logger       zerolog.Logger
	// IdleTimeout is how long a call may go without a turn before it is dropped.
	IdleTimeout time.Duration

	sessions *sessionRegistry
	now      func() time.Time
}

func (h *Handlers) Register(e *echo.Echo) {
	if h.sessions == nil {
		h.sessions = newSessionRegistry()
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.IdleTimeout <= 0 {
		h.IdleTimeout = defaultIdleTimeout
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")
	v1.GET("/pipeline", h.pipeline)
	v1.POST("/tools/:name", h.invokeTool)
	v1.POST("/calls", h.startCall)
	v1.POST("/calls/:id/turns", h.turn)
}

type startCallRequest struct {
	ParticipantKind string `json:"participant_kind"`
}

type startCallResponse struct {
	CallID   string         `json:"call_id"`
	Spoken   []string       `json:"spoken"`
	Pipeline voice.Pipeline `json:"pipeline"`
}

type turnRequest struct {
	Text string `json:"text"`
}

type turnResponse struct {
	CallID    string   `json:"call_id"`
	Reply     string   `json:"reply"`
	Spoken    []string `json:"spoken"`
	ToolCalls []string `json:"tool_calls,omitempty"`
	Ended     bool     `json:"ended"`
}

func (h *Handlers) pipeline(c echo.Context) error {
	kind := voice.ParseKind(c.QueryParam("participant_kind"))
	return c.JSON(http.StatusOK, h.Voice.PipelineFor(kind))
}

func (h *Handlers) invokeTool(c echo.Context) error {
	name := c.Param("name")
	if name == contractx.ToolTransferToHuman {
		return c.JSON(http.StatusConflict, contractx.Fail("transfer_to_human needs a live call; start one with POST /v1/calls"))
	}

	args := map[string]any{}
	if err := json.NewDecoder(c.Request().Body).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		return c.JSON(http.StatusBadRequest, contractx.Fail("request body must be a JSON object"))
	}

	out, err := h.Executor(c.Request().Context(), name, args)
	if err != nil {
		if te, ok := contractx.AsToolError(err); ok {
			return c.JSON(http.StatusOK, contractx.Fail(te.Message))
		}
		h.Logger.Error().Err(err).Str("tool", name).Msg("tool invocation failed")
		return c.JSON(http.StatusInternalServerError, contractx.Fail("tool failed"))
	}
	if strings.HasPrefix(out.Error, contractx.ErrUnknownTool.Error()) {
		return c.JSON(http.StatusNotFound, out.Payload())
	}
	return c.JSON(http.StatusOK, out.Payload())
}

func (h *Handlers) startCall(c echo.Context) error {
	if h.Conversation == nil {
		return c.JSON(http.StatusServiceUnavailable, contractx.Fail("conversation model is not configured"))
	}

	var req startCallRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return c.JSON(http.StatusBadRequest, contractx.Fail("invalid request body"))
	}

	kind := voice.ParseKind(req.ParticipantKind)
	channel := statex.ChannelText
	if kind == livekit.ParticipantInfo_SIP {
		channel = statex.ChannelSIP
	}

	sess := newTextSession()
	if err := h.Conversation.Enter(c.Request().Context(), sess, channel); err != nil {
		h.Logger.Error().Err(err).Str("call_id", sess.ID()).Msg("start call failed")
		return c.JSON(http.StatusInternalServerError, contractx.Fail("could not start the call"))
	}
	h.sessions.add(sess, h.now())

	return c.JSON(http.StatusCreated, startCallResponse{
		CallID:   sess.ID(),
		Spoken:   sess.drain(),
		Pipeline: h.Voice.PipelineFor(kind),
	})
}

func (h *Handlers) turn(c echo.Context) error {
	if h.Conversation == nil {
		return c.JSON(http.StatusServiceUnavailable, contractx.Fail("conversation model is not configured"))
	}

	sess, ok := h.sessions.get(c.Param("id"), h.now())
	if !ok {
		return c.JSON(http.StatusNotFound, contractx.Fail("unknown call"))
	}

	var req turnRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return c.JSON(http.StatusBadRequest, contractx.Fail("invalid request body"))
	}

	sess.turn.Lock()
	defer sess.turn.Unlock()

	if sess.Ended() {
		return c.JSON(http.StatusConflict, contractx.Fail("call has ended"))
	}

	turn, err := h.Conversation.HandleTurn(c.Request().Context(), sess, req.Text)
	switch {
	case errors.Is(err, contractx.ErrSessionEnded):
		return c.JSON(http.StatusConflict, contractx.Fail("call has ended"))
	case errors.Is(err, contractx.ErrNoSession):
		h.sessions.remove(sess.ID())
		return c.JSON(http.StatusNotFound, contractx.Fail("unknown call"))
	case errors.Is(err, contractx.ErrValidation):
		return c.JSON(http.StatusBadRequest, contractx.Fail("text is required"))
	case errors.Is(err, statex.ErrVersionConflict):
		return c.JSON(http.StatusConflict, contractx.Fail("call was updated by another turn, please retry"))
	case errors.Is(err, contractx.ErrModelInvoke), errors.Is(err, contractx.ErrSchemaViolation):
		h.Logger.Error().Err(err).Str("call_id", sess.ID()).Msg("model turn failed")
		return c.JSON(http.StatusBadGateway, contractx.Fail("the assistant is unavailable, please try again"))
	case err != nil:
		h.Logger.Error().Err(err).Str("call_id", sess.ID()).Msg("turn failed")
		return c.JSON(http.StatusInternalServerError, contractx.Fail("turn failed"))
	}

	ended := turn.Ended || sess.Ended()
	if ended {
		h.release(context.WithoutCancel(c.Request().Context()), sess.ID())
	}
	return c.JSON(http.StatusOK, turnResponse{
		CallID:    sess.ID(),
		Reply:     turn.Reply,
		Spoken:    sess.drain(),
		ToolCalls: turn.ToolCalls,
		Ended:     ended,
	})
}

func (h *Handlers) release(ctx context.Context, callID string) {
	h.sessions.remove(callID)
	if err := h.Conversation.Release(ctx, callID); err != nil {
		h.Logger.Warn().Err(err).Str("call_id", callID).Msg("release call failed")
	}
}

// Janitor drops calls that have been idle longer than IdleTimeout until ctx
// is done. Register must be called first.
func (h *Handlers) Janitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.sweep(ctx)
		}
	}
}

func (h *Handlers) sweep(ctx context.Context) int {
	ids := h.sessions.expire(h.now().Add(-h.IdleTimeout))
	for _, id := range ids {
		if h.Conversation != nil {
			if err := h.Conversation.Release(ctx, id); err != nil {
				h.Logger.Warn().Err(err).Str("call_id", id).Msg("release idle call failed")
			}
		}
		h.Logger.Info().Str("call_id", id).Msg("idle call dropped")
	}
	return len(ids)
}
