package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/buildershub-receptionist/agent/contract"
)

const DefaultReason = "Customer requested human assistance"

// Caller-facing phrases.
const (
	HoldMessage         = "Please hold while I connect you to a team member."
	HandoffMessage      = "You are now connected with one of our team members. I'll leave you with them. Have a great day!"
	UnavailableMessage  = "I'm sorry, I'm unable to connect you with a team member right now. Please call back or visit us in store."
	NoAnswerMessage     = "I'm sorry, no one from our team is available right now. Please call back in a few minutes or visit us in store."
	ConnectErrorMessage = "I apologize, but I'm having trouble connecting you right now. Please call back in a few minutes or visit us in store."
)

var ErrNotConfigured = errors.New("warm transfer not configured")

// Request is everything the backend needs to bring a supervisor into the call.
type Request struct {
	Destination string
	TrunkID     string
	Room        string
	History     []contractx.ChatMessage
	Reason      string
}

type HandoffResult struct {
	SupervisorIdentity string
	ParticipantID      string
}

// WarmTransfer dials a supervisor and returns once they have joined.
type WarmTransfer interface {
	Initiate(ctx context.Context, req Request) (HandoffResult, error)
}

type Option func(*Service)

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = &logger
	}
}

func WithConfigLoader(load func() (Config, error)) Option {
	return func(s *Service) {
		if load != nil {
			s.loadConfig = load
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

type Service struct {
	backend    WarmTransfer
	notifier   Notifier
	loadConfig func() (Config, error)
	logger     *zerolog.Logger
	now        func() time.Time
}

func NewService(backend WarmTransfer, opts ...Option) *Service {
	s := &Service{
		backend:    backend,
		loadConfig: LoadConfig,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) log() *zerolog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return &log.Logger
}

// Transfer hands the caller to a human. On success the caller has heard the
// hold and handoff lines and the session is shut down. Every error returned
// is a *contract.ToolError whose message can be spoken as is.
func (s *Service) Transfer(ctx context.Context, sess contractx.Session, reason string) (HandoffResult, error) {
	if reason == "" {
		reason = DefaultReason
	}
	logger := s.log().With().Str("call_id", sess.ID()).Str("reason", reason).Logger()
	logger.Info().Msg("initiating warm transfer")

	cfg, err := s.loadConfig()
	if err != nil {
		logger.Error().Err(err).Msg("cannot read warm transfer configuration")
		s.notify(ctx, sess.ID(), OutcomeUnavailable, reason, "")
		return HandoffResult{}, contractx.NewToolError(UnavailableMessage, err)
	}
	if cfg.Destination() == "" {
		logger.Error().Msg("cannot initiate warm transfer: SUPERVISOR_PHONE_NUMBER not configured")
		s.notify(ctx, sess.ID(), OutcomeUnavailable, reason, "")
		return HandoffResult{}, contractx.NewToolError(UnavailableMessage,
			fmt.Errorf("%w: supervisor phone number", ErrNotConfigured))
	}
	if cfg.TrunkID() == "" {
		logger.Error().Msg("cannot initiate warm transfer: LIVEKIT_SIP_OUTBOUND_TRUNK or SIP_OUTBOUND_TRUNK_ID not configured")
		s.notify(ctx, sess.ID(), OutcomeUnavailable, reason, "")
		return HandoffResult{}, contractx.NewToolError(UnavailableMessage,
			fmt.Errorf("%w: outbound sip trunk", ErrNotConfigured))
	}

	if err := sess.Say(ctx, HoldMessage, false); err != nil {
		return HandoffResult{}, s.fail(ctx, logger, sess.ID(), reason, err)
	}

	tctx, cancel := context.WithTimeout(ctx, cfg.timeout())
	defer cancel()

	result, err := s.backend.Initiate(tctx, Request{
		Destination: cfg.Destination(),
		TrunkID:     cfg.TrunkID(),
		Room:        sess.ID(),
		History:     sess.History(),
		Reason:      Instructions(reason),
	})
	if err != nil {
		if _, ok := contractx.AsToolError(err); !ok && errors.Is(tctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			err = contractx.NewToolError(NoAnswerMessage, err)
		}
		return HandoffResult{}, s.fail(ctx, logger, sess.ID(), reason, err)
	}

	logger.Info().Str("supervisor_identity", result.SupervisorIdentity).Msg("warm transfer completed successfully")

	if err := sess.Say(ctx, HandoffMessage, false); err != nil {
		return HandoffResult{}, s.fail(ctx, logger, sess.ID(), reason, err)
	}
	if err := sess.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("session shutdown after transfer failed")
	}

	s.notify(ctx, sess.ID(), OutcomeTransferred, reason, result.SupervisorIdentity)
	return result, nil
}

// fail logs the cause and returns the error in its caller-facing form.
func (s *Service) fail(ctx context.Context, logger zerolog.Logger, callID, reason string, err error) error {
	s.notify(ctx, callID, OutcomeFailed, reason, "")

	if te, ok := contractx.AsToolError(err); ok {
		logger.Error().Err(te.Cause).Str("message", te.Message).Msg("warm transfer failed with tool error")
		return te
	}
	logger.Error().Err(err).Msg("warm transfer failed")
	return contractx.NewToolError(ConnectErrorMessage, err)
}

// Instructions is the briefing handed to the supervisor leg.
func Instructions(reason string) string {
	return "Transfer reason: " + reason + "\n\n" +
		"Please assist this customer with extra care and patience. " +
		"The customer may need human support."
}
