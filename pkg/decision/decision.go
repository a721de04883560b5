// Package decision converts one window summary into a single mood state.
// The engine is a pure function: no state survives between windows.
package decision

import (
	"fmt"
	"time"

	"github.com/vigil-agent/go-vigil/pkg/perception"
	"github.com/vigil-agent/go-vigil/pkg/window"
)

// State is the per-window mood classification.
type State string

const (
	StateDrowsy   State = "drowsy"
	StateStressed State = "stressed"
	StateEngaged  State = "engaged"
	StateNormal   State = "normal"
	StateUnknown  State = "unknown"
)

// Decision thresholds.
const (
	// YawnDuration marks a sustained mouth-open stretch as a yawn even
	// when the per-frame sustained flag never latched.
	YawnDuration = 1600 * time.Millisecond

	// MinConfidence is the emotion confidence (percent) below which a
	// sample is too weak to drive stressed/engaged.
	MinConfidence = 60.0
)

// negative is the set of labels treated as stress indicators.
var negative = map[string]bool{
	perception.EmotionAngry:   true,
	perception.EmotionFear:    true,
	perception.EmotionSad:     true,
	perception.EmotionDisgust: true,
}

// Decision is the engine's output for one window.
type Decision struct {
	State  State  `json:"state"`
	Reason string `json:"reason"`
}

// Decide maps a window summary to a state. Rules are evaluated in fixed
// priority order and the first match wins; a confident negative emotion
// never outranks a yawn.
func Decide(s window.Summary) Decision {
	// Rule 1: sustained yawn means drowsy, whatever the face says.
	if s.Yawned || s.MaxYawnDuration >= YawnDuration {
		return Decision{
			State: StateDrowsy,
			Reason: fmt.Sprintf("yawn_detected duration=%.1fs mar=%.3f",
				s.MaxYawnDuration.Seconds(), s.MaxRatio),
		}
	}

	// Rule 2: confident negative emotion.
	if s.HasEmotion && negative[s.DominantEmotion] && s.EmotionConfidence >= MinConfidence {
		return Decision{
			State:  StateStressed,
			Reason: fmt.Sprintf("emotion=%s conf=%.1f", s.DominantEmotion, s.EmotionConfidence),
		}
	}

	// Rule 3: confident positive emotion.
	if s.HasEmotion && s.DominantEmotion == perception.EmotionHappy && s.EmotionConfidence >= MinConfidence {
		return Decision{
			State:  StateEngaged,
			Reason: fmt.Sprintf("emotion=happy conf=%.1f", s.EmotionConfidence),
		}
	}

	// Rule 4: nothing usable this window.
	if !s.HasEmotion {
		return Decision{State: StateUnknown, Reason: "no_emotion_detected"}
	}

	return Decision{
		State:  StateNormal,
		Reason: fmt.Sprintf("emotion=%s conf=%.1f", s.DominantEmotion, s.EmotionConfidence),
	}
}
