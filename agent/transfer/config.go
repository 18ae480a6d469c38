package transfer

import (
	"strings"
	"time"

	configx "github.com/tanpawarit/buildershub-receptionist/pkg/config"
)

const DefaultTimeout = 45 * time.Second

// Config is read from the environment on every transfer so the supervisor
// line can be changed without restarting the agent.
type Config struct {
	SupervisorPhone string        `envconfig:"SUPERVISOR_PHONE_NUMBER"`
	OutboundTrunk   string        `envconfig:"LIVEKIT_SIP_OUTBOUND_TRUNK"`
	LegacyTrunkID   string        `envconfig:"SIP_OUTBOUND_TRUNK_ID"`
	Timeout         time.Duration `envconfig:"TRANSFER_TIMEOUT" default:"45s"`
}

// TrunkID prefers LIVEKIT_SIP_OUTBOUND_TRUNK over the older variable.
func (c Config) TrunkID() string {
	if trunk := strings.TrimSpace(c.OutboundTrunk); trunk != "" {
		return trunk
	}
	return strings.TrimSpace(c.LegacyTrunkID)
}

func (c Config) Destination() string {
	return strings.TrimSpace(c.SupervisorPhone)
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// LoadConfig reads the transfer settings from the current environment.
func LoadConfig() (Config, error) {
	conf, err := configx.Process[Config]("")
	if err != nil {
		return Config{}, err
	}
	return *conf, nil
}
