package speech

import (
	"context"
	"fmt"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"
)

// GoogleConfig configures the Google Cloud Text-to-Speech client.
type GoogleConfig struct {
	// CredentialsFile is a service account JSON key. Empty uses application default credentials.
	CredentialsFile string
	Voice           Voice
}

// GoogleSynthesizer implements Synthesizer using Google Cloud Text-to-Speech.
type GoogleSynthesizer struct {
	client *texttospeech.Client
	voice  Voice
}

// NewGoogleSynthesizer dials the Text-to-Speech API.
func NewGoogleSynthesizer(ctx context.Context, cfg GoogleConfig) (*GoogleSynthesizer, error) {
	var opts []option.ClientOption
	if path := strings.TrimSpace(cfg.CredentialsFile); path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}
	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("init text-to-speech client: %w", err)
	}
	return &GoogleSynthesizer{client: client, voice: cfg.Voice.withDefaults()}, nil
}

// Synthesize returns MP3 audio for text.
func (g *GoogleSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := g.client.SynthesizeSpeech(ctx, buildRequest(text, g.voice))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSynthesis, err)
	}
	audio := resp.GetAudioContent()
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio content", ErrSynthesis)
	}
	return audio, nil
}

// Close releases the underlying gRPC connection.
func (g *GoogleSynthesizer) Close() error {
	return g.client.Close()
}

func buildRequest(text string, voice Voice) *texttospeechpb.SynthesizeSpeechRequest {
	voice = voice.withDefaults()
	return &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: voice.LanguageCode,
			Name:         voice.Name,
			SsmlGender:   parseGender(voice.Gender),
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
		},
	}
}

func parseGender(gender string) texttospeechpb.SsmlVoiceGender {
	switch strings.ToUpper(strings.TrimSpace(gender)) {
	case "MALE":
		return texttospeechpb.SsmlVoiceGender_MALE
	case "FEMALE":
		return texttospeechpb.SsmlVoiceGender_FEMALE
	case "NEUTRAL":
		return texttospeechpb.SsmlVoiceGender_NEUTRAL
	default:
		return texttospeechpb.SsmlVoiceGender_SSML_VOICE_GENDER_UNSPECIFIED
	}
}

var _ Synthesizer = (*GoogleSynthesizer)(nil)
