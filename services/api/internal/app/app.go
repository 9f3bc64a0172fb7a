package app

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"soundboard/pkg/ai"
	"soundboard/pkg/speech"
	"soundboard/pkg/storage"
	"soundboard/pkg/store"
)

const defaultExistsConcurrency = 8

// Config holds the injected clients for the core application.
type Config struct {
	Store   store.Store
	Objects storage.ObjectStore
	Speech  speech.Synthesizer
	// Generator is optional. Without it Generate returns ErrFeatureDisabled.
	Generator ai.TextGenerator
	// ExistsConcurrency bounds parallel blob checks when listing soundboards.
	ExistsConcurrency int
}

// App implements the soundboard, history, profile, feedback and report operations.
type App struct {
	store             store.Store
	objects           storage.ObjectStore
	speech            speech.Synthesizer
	generator         ai.TextGenerator
	existsConcurrency int

	now   func() time.Time
	newID func() string
}

// New constructs the application from explicit clients.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, errors.New("store required")
	}
	if cfg.Objects == nil {
		return nil, errors.New("object store required")
	}
	if cfg.Speech == nil {
		return nil, errors.New("speech synthesizer required")
	}
	limit := cfg.ExistsConcurrency
	if limit <= 0 {
		limit = defaultExistsConcurrency
	}
	return &App{
		store:             cfg.Store,
		objects:           cfg.Objects,
		speech:            cfg.Speech,
		generator:         cfg.Generator,
		existsConcurrency: limit,
		now:               func() time.Time { return time.Now().UTC() },
		newID:             uuid.NewString,
	}, nil
}

// Ping checks database connectivity.
func (a *App) Ping() error {
	return a.store.Ping()
}

// GenerationEnabled reports whether a text generator is configured.
func (a *App) GenerationEnabled() bool {
	return a.generator != nil
}
