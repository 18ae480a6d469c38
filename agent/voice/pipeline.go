package voice

import (
	"strings"

	"github.com/livekit/protocol/livekit"
)

type NoiseCancellation string

const (
	NoiseCancellationBVC          NoiseCancellation = "BVC"
	NoiseCancellationBVCTelephony NoiseCancellation = "BVCTelephony"
)

// Config describes the speech pipeline the media worker runs in front of the
// receptionist. The worker itself is external; this is what it is told to use.
type Config struct {
	AgentName            string `envconfig:"AGENT_NAME" default:"hardware-store"`
	Port                 int    `envconfig:"PORT" default:"8600"`
	STTModel             string `envconfig:"STT_MODEL" default:"deepgram/nova-3"`
	STTLanguage          string `envconfig:"STT_LANGUAGE" default:"en"`
	LLMModel             string `envconfig:"VOICE_LLM_MODEL" default:"google/gemini-2.5-flash"`
	TTSModel             string `envconfig:"TTS_MODEL" default:"cartesia/sonic-3"`
	TTSVoice             string `envconfig:"TTS_VOICE" default:"9626c31c-bec5-4cca-baa8-f8ba9e84c8bc"`
	TurnDetection        string `envconfig:"TURN_DETECTION" default:"vad"`
	PreemptiveGeneration bool   `envconfig:"PREEMPTIVE_GENERATION" default:"true"`
}

// DefaultConfig mirrors the envconfig defaults for callers that skip the environment.
func DefaultConfig() Config {
	return Config{
		AgentName:            "hardware-store",
		Port:                 8600,
		STTModel:             "deepgram/nova-3",
		STTLanguage:          "en",
		LLMModel:             "google/gemini-2.5-flash",
		TTSModel:             "cartesia/sonic-3",
		TTSVoice:             "9626c31c-bec5-4cca-baa8-f8ba9e84c8bc",
		TurnDetection:        "vad",
		PreemptiveGeneration: true,
	}
}

type Pipeline struct {
	AgentName            string            `json:"agent_name"`
	STT                  string            `json:"stt"`
	STTLanguage          string            `json:"stt_language"`
	LLM                  string            `json:"llm"`
	TTS                  string            `json:"tts"`
	TTSVoice             string            `json:"tts_voice"`
	TurnDetection        string            `json:"turn_detection"`
	PreemptiveGeneration bool              `json:"preemptive_generation"`
	NoiseCancellation    NoiseCancellation `json:"noise_cancellation"`
}

// NoiseCancellationFor picks the telephony model for phone callers.
func NoiseCancellationFor(kind livekit.ParticipantInfo_Kind) NoiseCancellation {
	if kind == livekit.ParticipantInfo_SIP {
		return NoiseCancellationBVCTelephony
	}
	return NoiseCancellationBVC
}

// ParseKind maps a participant kind name such as "sip" or "SIP" to its
// protocol value. Unknown names are treated as standard participants.
func ParseKind(name string) livekit.ParticipantInfo_Kind {
	if v, ok := livekit.ParticipantInfo_Kind_value[strings.ToUpper(strings.TrimSpace(name))]; ok {
		return livekit.ParticipantInfo_Kind(v)
	}
	return livekit.ParticipantInfo_STANDARD
}

func (c Config) PipelineFor(kind livekit.ParticipantInfo_Kind) Pipeline {
	return Pipeline{
		AgentName:            c.AgentName,
		STT:                  c.STTModel,
		STTLanguage:          c.STTLanguage,
		LLM:                  c.LLMModel,
		TTS:                  c.TTSModel,
		TTSVoice:             c.TTSVoice,
		TurnDetection:        c.TurnDetection,
		PreemptiveGeneration: c.PreemptiveGeneration,
		NoiseCancellation:    NoiseCancellationFor(kind),
	}
}
