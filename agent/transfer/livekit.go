package transfer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"

	contractx "github.com/tanpawarit/buildershub-receptionist/agent/contract"
)

const (
	supervisorIdentityPrefix = "supervisor-"
	supervisorDisplayName    = "Builder's Hub Team Member"
	maxTranscriptLines       = 20
)

var ErrLiveKitConfig = errors.New("livekit config incomplete")

type LiveKitConfig struct {
	URL       string `envconfig:"LIVEKIT_URL"`
	APIKey    string `envconfig:"LIVEKIT_API_KEY"`
	APISecret string `envconfig:"LIVEKIT_API_SECRET"`
}

func (c LiveKitConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.URL) == "" {
		missing = append(missing, "LIVEKIT_URL")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		missing = append(missing, "LIVEKIT_API_KEY")
	}
	if strings.TrimSpace(c.APISecret) == "" {
		missing = append(missing, "LIVEKIT_API_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrLiveKitConfig, strings.Join(missing, ", "))
	}
	return nil
}

// SIPDialer is the slice of the LiveKit SIP service used for transfers.
type SIPDialer interface {
	CreateSIPParticipant(ctx context.Context, req *livekit.CreateSIPParticipantRequest) (*livekit.SIPParticipantInfo, error)
}

// LiveKitTransfer dials the supervisor into the caller's room over an
// outbound SIP trunk and waits for them to answer.
type LiveKitTransfer struct {
	dialer SIPDialer
}

func NewLiveKitTransfer(cfg LiveKitConfig) (*LiveKitTransfer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewLiveKitTransferWithDialer(lksdk.NewSIPClient(cfg.URL, cfg.APIKey, cfg.APISecret)), nil
}

func NewLiveKitTransferWithDialer(dialer SIPDialer) *LiveKitTransfer {
	return &LiveKitTransfer{dialer: dialer}
}

type supervisorBriefing struct {
	Instructions string `json:"instructions"`
	Transcript   string `json:"transcript,omitempty"`
}

func (t *LiveKitTransfer) Initiate(ctx context.Context, req Request) (HandoffResult, error) {
	briefing, err := json.Marshal(supervisorBriefing{
		Instructions: req.Reason,
		Transcript:   Transcript(req.History, maxTranscriptLines),
	})
	if err != nil {
		return HandoffResult{}, fmt.Errorf("encode supervisor briefing: %w", err)
	}

	identity := supervisorIdentityPrefix + uuid.NewString()
	info, err := t.dialer.CreateSIPParticipant(ctx, &livekit.CreateSIPParticipantRequest{
		SipTrunkId:          req.TrunkID,
		SipCallTo:           req.Destination,
		RoomName:            req.Room,
		ParticipantIdentity: identity,
		ParticipantName:     supervisorDisplayName,
		ParticipantMetadata: string(briefing),
		WaitUntilAnswered:   true,
	})
	if err != nil {
		return HandoffResult{}, fmt.Errorf("dial supervisor: %w", err)
	}

	result := HandoffResult{SupervisorIdentity: identity}
	if info != nil {
		if info.ParticipantIdentity != "" {
			result.SupervisorIdentity = info.ParticipantIdentity
		}
		result.ParticipantID = info.ParticipantId
	}
	return result, nil
}

// Transcript renders the last max lines of a call for a human reader.
func Transcript(history []contractx.ChatMessage, max int) string {
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		text := strings.TrimSpace(msg.Content)
		if text == "" {
			continue
		}
		switch msg.Role {
		case contractx.RoleUser:
			lines = append(lines, "Caller: "+text)
		case contractx.RoleAssistant:
			lines = append(lines, "Receptionist: "+text)
		}
	}
	if max > 0 && len(lines) > max {
		lines = lines[len(lines)-max:]
	}
	return strings.Join(lines, "\n")
}
