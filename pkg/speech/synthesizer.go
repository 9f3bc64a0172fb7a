// Package speech converts text into MP3 audio through an external text-to-speech service.
package speech

import (
	"context"
	"errors"
)

// ErrSynthesis marks failures of the synthesis call, including empty audio responses.
var ErrSynthesis = errors.New("speech synthesis failed")

// Synthesizer turns text into MP3 encoded audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Voice is the fixed language/voice configuration applied to every request.
type Voice struct {
	LanguageCode string
	// Name selects a specific voice, e.g. "en-US-Neural2-C". Empty lets the service choose.
	Name string
	// Gender is one of MALE, FEMALE, NEUTRAL.
	Gender string
}

// DefaultVoice is used for any field left empty.
var DefaultVoice = Voice{LanguageCode: "en-US", Gender: "NEUTRAL"}

func (v Voice) withDefaults() Voice {
	if v.LanguageCode == "" {
		v.LanguageCode = DefaultVoice.LanguageCode
	}
	if v.Gender == "" {
		v.Gender = DefaultVoice.Gender
	}
	return v
}
