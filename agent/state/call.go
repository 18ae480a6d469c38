package state

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/buildershub-receptionist/agent/contract"
)

type Channel string

const (
	ChannelSIP  Channel = "sip"
	ChannelText Channel = "text"
)

// CallState is everything kept about one call between turns. Messages holds
// the model conversation including tool calls; the system prompt is not stored.
type CallState struct {
	CallID    string            `json:"call_id"`
	Channel   Channel           `json:"channel"`
	Messages  []*schema.Message `json:"messages,omitempty"`
	Ended     bool              `json:"ended,omitempty"`
	EndReason string            `json:"end_reason,omitempty"`
	Version   int               `json:"version"`
	StartedAt time.Time         `json:"started_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	// version the state had when it was loaded; 0 for a call never saved.
	loadedVersion int
}

func NewCallState(callID string, channel Channel, now time.Time) *CallState {
	return &CallState{
		CallID:    callID,
		Channel:   channel,
		Version:   1,
		StartedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (c *CallState) Validate() error {
	if c == nil {
		return ErrNilCallState
	}
	if strings.TrimSpace(c.CallID) == "" {
		return ErrInvalidCall
	}
	switch c.Channel {
	case ChannelSIP, ChannelText:
	default:
		return fmt.Errorf("unknown channel %q", c.Channel)
	}
	for i, msg := range c.Messages {
		if msg == nil {
			return fmt.Errorf("message %d is nil", i)
		}
	}
	return nil
}

// Append records messages and bumps the version.
func (c *CallState) Append(now time.Time, msgs ...*schema.Message) {
	for _, msg := range msgs {
		if msg != nil {
			c.Messages = append(c.Messages, msg)
		}
	}
	c.touch(now)
}

func (c *CallState) End(reason string, now time.Time) {
	c.Ended = true
	c.EndReason = reason
	c.touch(now)
}

func (c *CallState) touch(now time.Time) {
	c.Version++
	c.UpdatedAt = now.UTC()
}

// Clone copies the message slice; the messages themselves are treated as
// immutable once appended.
func (c *CallState) Clone() *CallState {
	if c == nil {
		return nil
	}
	out := *c
	out.Messages = slices.Clone(c.Messages)
	return &out
}

// Transcript flattens the conversation into caller-visible lines plus tool
// outputs. Assistant messages that only carried tool calls are skipped.
func (c *CallState) Transcript() []contractx.ChatMessage {
	out := make([]contractx.ChatMessage, 0, len(c.Messages))
	for _, msg := range c.Messages {
		switch msg.Role {
		case schema.User:
			out = append(out, contractx.ChatMessage{Role: contractx.RoleUser, Content: msg.Content})
		case schema.Assistant:
			if strings.TrimSpace(msg.Content) == "" {
				continue
			}
			out = append(out, contractx.ChatMessage{Role: contractx.RoleAssistant, Content: msg.Content})
		case schema.Tool:
			out = append(out, contractx.ChatMessage{Role: contractx.RoleTool, Content: msg.Content})
		}
	}
	return out
}

// CheckOpen returns an error wrapping contract.ErrSessionEnded for ended calls.
func (c *CallState) CheckOpen() error {
	if c.Ended {
		return fmt.Errorf("%w: %s", contractx.ErrSessionEnded, c.CallID)
	}
	return nil
}
