package voice

import (
	"testing"

	"github.com/livekit/protocol/livekit"
)

func TestNoiseCancellationFor(t *testing.T) {
	t.Parallel()

	cases := map[livekit.ParticipantInfo_Kind]NoiseCancellation{
		livekit.ParticipantInfo_SIP:      NoiseCancellationBVCTelephony,
		livekit.ParticipantInfo_STANDARD: NoiseCancellationBVC,
		livekit.ParticipantInfo_INGRESS:  NoiseCancellationBVC,
		livekit.ParticipantInfo_AGENT:    NoiseCancellationBVC,
	}
	for kind, want := range cases {
		if got := NoiseCancellationFor(kind); got != want {
			t.Fatalf("NoiseCancellationFor(%s) = %s, want %s", kind, got, want)
		}
	}
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	if got := ParseKind(" sip "); got != livekit.ParticipantInfo_SIP {
		t.Fatalf("ParseKind(sip) = %s", got)
	}
	if got := ParseKind("AGENT"); got != livekit.ParticipantInfo_AGENT {
		t.Fatalf("ParseKind(AGENT) = %s", got)
	}
	if got := ParseKind("carrier-pigeon"); got != livekit.ParticipantInfo_STANDARD {
		t.Fatalf("ParseKind(unknown) = %s", got)
	}
}

func TestPipelineForDefaults(t *testing.T) {
	t.Parallel()

	p := DefaultConfig().PipelineFor(livekit.ParticipantInfo_SIP)
	if p.AgentName != "hardware-store" {
		t.Fatalf("AgentName = %q", p.AgentName)
	}
	if p.STT != "deepgram/nova-3" || p.STTLanguage != "en" {
		t.Fatalf("STT = %q/%q", p.STT, p.STTLanguage)
	}
	if p.TTS != "cartesia/sonic-3" || p.TTSVoice != "9626c31c-bec5-4cca-baa8-f8ba9e84c8bc" {
		t.Fatalf("TTS = %q/%q", p.TTS, p.TTSVoice)
	}
	if p.TurnDetection != "vad" || !p.PreemptiveGeneration {
		t.Fatalf("turn handling = %q/%v", p.TurnDetection, p.PreemptiveGeneration)
	}
	if p.NoiseCancellation != NoiseCancellationBVCTelephony {
		t.Fatalf("NoiseCancellation = %s", p.NoiseCancellation)
	}
}
