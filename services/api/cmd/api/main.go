package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"soundboard/internal/ratelimit"
	"soundboard/internal/util"
	"soundboard/pkg/ai"
	"soundboard/pkg/speech"
	"soundboard/pkg/storage"
	"soundboard/pkg/store"
	"soundboard/services/api/internal/app"
	"soundboard/services/api/internal/config"
	"soundboard/services/api/internal/server"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		util.Fatal("failed to load config", "err", err)
	}
	logger := util.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataStore, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		util.Fatal("failed to init database", "err", err)
	}
	defer dataStore.Close()

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		util.Fatal("failed to init object storage", "driver", cfg.StorageDriver, "err", err)
	}

	synth, err := speech.NewGoogleSynthesizer(ctx, speech.GoogleConfig{
		CredentialsFile: cfg.GoogleCredentialsFile,
		Voice: speech.Voice{
			LanguageCode: cfg.VoiceLanguageCode,
			Name:         cfg.VoiceName,
			Gender:       cfg.VoiceGender,
		},
	})
	if err != nil {
		util.Fatal("failed to init text-to-speech", "err", err)
	}
	defer synth.Close()

	appCfg := app.Config{
		Store:             dataStore,
		Objects:           objects,
		Speech:            synth,
		ExistsConcurrency: cfg.StorageExistsParallel,
	}
	if cfg.GeminiAPIKey != "" {
		client, err := ai.NewGeminiClient(cfg.GeminiAPIKey)
		if err != nil {
			util.Fatal("failed to init gemini client", "err", err)
		}
		appCfg.Generator = ai.NewGeminiGenerator(client, cfg.GeminiModel)
	} else {
		logger.Info("GEMINI_API_KEY not set, /generate disabled")
	}
	appCore, err := app.New(appCfg)
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	trusted, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		util.Fatal("invalid trusted proxies", "err", err)
	}
	srvCfg := server.Config{
		App:            appCore,
		TrustedProxies: trusted,
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORSOrigin:     cfg.CORSOrigin,
	}
	if cfg.RateLimitPerMinute > 0 {
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "", cfg.RateLimitPerMinute, time.Minute)
		if err != nil {
			util.Fatal("failed to init rate limiter", "err", err)
		}
		defer limiter.Close()
		srvCfg.Limiter = limiter
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(srvCfg).Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "err", err)
		}
	}()

	slog.Info("soundboard api listening", "addr", addr, "storage", cfg.StorageDriver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "err", err)
	}
}

func newObjectStore(ctx context.Context, cfg config.FileConfig) (storage.ObjectStore, error) {
	switch cfg.StorageDriver {
	case config.StorageS3:
		st, err := storage.NewS3Store(ctx, storage.S3Config{
			Region:        cfg.S3Region,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			Bucket:        cfg.S3Bucket,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.StoragePublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	case config.StorageMemory:
		slog.Warn("using in-memory object storage; audio is lost on restart")
		return storage.NewMemoryStore(cfg.StoragePublicBaseURL), nil
	default:
		st, err := storage.NewMinioStore(storage.MinioConfig{
			Endpoint:      cfg.MinioEndpoint,
			AccessKey:     cfg.MinioAccessKey,
			SecretKey:     cfg.MinioSecretKey,
			Bucket:        cfg.MinioBucket,
			Region:        cfg.MinioRegion,
			UseSSL:        cfg.MinioUseSSL,
			PublicBaseURL: cfg.StoragePublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	}
}
