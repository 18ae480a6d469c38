package receptionist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/buildershub-receptionist/agent/contract"
	"github.com/tanpawarit/buildershub-receptionist/agent/prompt"
	statex "github.com/tanpawarit/buildershub-receptionist/agent/state"
	storex "github.com/tanpawarit/buildershub-receptionist/agent/store"
	toolx "github.com/tanpawarit/buildershub-receptionist/agent/tool"
	logx "github.com/tanpawarit/buildershub-receptionist/pkg/logger"
)

const (
	DefaultMaxToolRounds = 5

	fallbackReply    = "I'm sorry, I wasn't able to finish looking that up. Could you ask me again?"
	toolFailureReply = "That request could not be completed right now."
	callEndedReply   = "The call was transferred before this ran."
)

type Option func(*Receptionist)

func WithMaxToolRounds(n int) Option {
	return func(r *Receptionist) {
		if n > 0 {
			r.maxToolRounds = n
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Receptionist) {
		r.logger = &logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Receptionist) {
		if now != nil {
			r.now = now
		}
	}
}

// Receptionist runs the conversation for every call: it greets, feeds each
// caller turn to the model, executes the tools the model asks for and speaks
// the final answer.
type Receptionist struct {
	runner        compose.Runnable[[]*schema.Message, *schema.Message]
	execute       toolx.Executor
	store         statex.Store
	maxToolRounds int
	logger        *zerolog.Logger
	now           func() time.Time
}

// Turn is the outcome of one caller utterance.
type Turn struct {
	Reply     string   `json:"reply"`
	ToolCalls []string `json:"tool_calls,omitempty"`
	Ended     bool     `json:"ended"`
}

func New(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	dir *storex.Directory,
	infos []*schema.ToolInfo,
	execute toolx.Executor,
	store statex.Store,
	opts ...Option,
) (*Receptionist, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required", contractx.ErrValidation)
	}
	if execute == nil {
		return nil, fmt.Errorf("%w: tool executor is required", contractx.ErrValidation)
	}
	if store == nil {
		store = statex.NewMemoryStore()
	}

	system, err := prompt.SystemMessage(ctx, dir)
	if err != nil {
		return nil, err
	}

	toolModel, err := chatModel.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("%w: bind receptionist tools: %v", contractx.ErrModelInvoke, err)
	}

	runner, err := compileTurnGraph(ctx, toolModel, system)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
	}

	r := &Receptionist{
		runner:        runner,
		execute:       execute,
		store:         store,
		maxToolRounds: DefaultMaxToolRounds,
		now:           time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

func (r *Receptionist) loggerFor(callID string) zerolog.Logger {
	base := log.Logger
	if r.logger != nil {
		base = *r.logger
	}
	return logx.ForCall(base, callID)
}

// Enter opens a call and greets the caller.
func (r *Receptionist) Enter(ctx context.Context, sess contractx.Session, channel statex.Channel) error {
	logger := r.loggerFor(sess.ID())
	st := statex.NewCallState(sess.ID(), channel, r.now())
	if err := st.Validate(); err != nil {
		return err
	}

	if err := sess.Say(ctx, prompt.Greeting, true); err != nil {
		return fmt.Errorf("greet caller: %w", err)
	}
	st.Append(r.now(), schema.AssistantMessage(prompt.Greeting, nil))

	if err := r.store.Save(ctx, st); err != nil {
		return fmt.Errorf("save call state: %w", err)
	}
	logger.Info().Str("channel", string(channel)).Msg("call started")
	return nil
}

// HandleTurn answers one caller utterance. When a tool ends the call (a
// completed transfer) no reply is generated and Turn.Ended is set.
func (r *Receptionist) HandleTurn(ctx context.Context, sess contractx.Session, text string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{}, fmt.Errorf("%w: empty caller turn", contractx.ErrValidation)
	}

	logger := r.loggerFor(sess.ID())
	ctx = logger.WithContext(ctx)

	st, err := r.store.Load(ctx, sess.ID())
	if errors.Is(err, statex.ErrStateNotFound) {
		return Turn{}, fmt.Errorf("%w: %s", contractx.ErrNoSession, sess.ID())
	}
	if err != nil {
		return Turn{}, fmt.Errorf("load call state: %w", err)
	}
	if err := st.CheckOpen(); err != nil {
		return Turn{}, err
	}

	st.Append(r.now(), schema.UserMessage(text))
	ctx = contractx.WithSession(ctx, &callSession{Session: sess, state: st})

	turn, err := r.converse(ctx, logger, st)
	if err != nil {
		return Turn{}, err
	}

	if !turn.Ended {
		if err := sess.Say(ctx, turn.Reply, true); err != nil {
			logger.Warn().Err(err).Msg("reply not spoken")
		}
	}

	if err := r.store.Save(ctx, st); err != nil {
		return turn, fmt.Errorf("save call state: %w", err)
	}
	return turn, nil
}

// Release forgets a call. HandleTurn reports ErrNoSession for it afterwards.
func (r *Receptionist) Release(ctx context.Context, callID string) error {
	if err := r.store.Delete(ctx, callID); err != nil {
		return fmt.Errorf("delete call state: %w", err)
	}
	return nil
}

func (r *Receptionist) converse(ctx context.Context, logger zerolog.Logger, st *statex.CallState) (Turn, error) {
	var turn Turn

	for round := 0; ; round++ {
		msg, err := r.runner.Invoke(ctx, st.Messages)
		if err != nil {
			return Turn{}, fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
		}
		if msg == nil {
			return Turn{}, fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
		}

		if len(msg.ToolCalls) == 0 {
			st.Append(r.now(), msg)
			turn.Reply = strings.TrimSpace(msg.Content)
			if turn.Reply == "" {
				turn.Reply = fallbackReply
			}
			return turn, nil
		}

		if round >= r.maxToolRounds {
			logger.Warn().Int("rounds", round).Msg("tool round limit reached")
			st.Append(r.now(), schema.AssistantMessage(fallbackReply, nil))
			turn.Reply = fallbackReply
			return turn, nil
		}

		st.Append(r.now(), msg)
		for i, call := range msg.ToolCalls {
			turn.ToolCalls = append(turn.ToolCalls, call.Function.Name)
			content, ended := r.runTool(ctx, logger, call)
			st.Append(r.now(), schema.ToolMessage(content, call.ID))
			if ended {
				// Every tool call in history keeps its answer.
				for _, skipped := range msg.ToolCalls[i+1:] {
					st.Append(r.now(), schema.ToolMessage(encode(contractx.Fail(callEndedReply)), skipped.ID))
				}
				st.End("transferred", r.now())
				turn.Ended = true
				return turn, nil
			}
		}
	}
}

// runTool executes one call and returns the JSON the model sees. ended is set
// once the call has been handed to a person.
func (r *Receptionist) runTool(ctx context.Context, logger zerolog.Logger, call schema.ToolCall) (content string, ended bool) {
	name := call.Function.Name
	toolLogger := logger.With().Str("tool", name).Logger()

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			toolLogger.Warn().Err(err).Str("arguments", raw).Msg("tool arguments are not valid json")
			return encode(contractx.Fail("Invalid arguments for " + name + ".")), false
		}
	}

	out, err := r.execute(ctx, name, args)
	if err != nil {
		if te, ok := contractx.AsToolError(err); ok {
			toolLogger.Info().Err(te.Cause).Msg("tool returned caller-facing error")
			return encode(contractx.Fail(te.Message)), false
		}
		toolLogger.Error().Err(err).Msg("tool failed")
		return encode(contractx.Fail(toolFailureReply)), false
	}

	if res, ok := out.Result.(contractx.TransferResult); ok && res.Success {
		return encode(res), true
	}
	return encode(out.Payload()), false
}

func encode(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		raw, _ = json.Marshal(contractx.Fail(toolFailureReply))
	}
	return string(raw)
}

// callSession exposes the live transcript to tools that act on the call.
type callSession struct {
	contractx.Session
	state *statex.CallState
}

func (c *callSession) History() []contractx.ChatMessage {
	return c.state.Transcript()
}
