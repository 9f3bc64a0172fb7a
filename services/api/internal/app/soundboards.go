package app

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"soundboard/internal/util"
	"soundboard/pkg/domain"
	"soundboard/pkg/storage"
)

const audioContentType = "audio/mpeg"

// CreateSoundboard synthesizes text, uploads the MP3 and records the soundboard.
// The three steps run in order with no rollback; a blob uploaded before a failed
// insert is left behind and logged.
func (a *App) CreateSoundboard(ctx context.Context, title, text, email string) (domain.Soundboard, error) {
	title = strings.TrimSpace(title)
	text = strings.TrimSpace(text)
	email = strings.TrimSpace(email)
	if title == "" || text == "" || email == "" {
		return domain.Soundboard{}, fmt.Errorf("%w: title, text and email are required", ErrInvalidInput)
	}
	logger := util.LoggerFromContext(ctx)

	audio, err := a.speech.Synthesize(ctx, text)
	if err != nil {
		return domain.Soundboard{}, fmt.Errorf("%w: %w", ErrCreateSoundboard, err)
	}

	key := a.newID() + ".mp3"
	if err := a.objects.Put(ctx, key, bytes.NewReader(audio), int64(len(audio)), audioContentType); err != nil {
		return domain.Soundboard{}, fmt.Errorf("%w: %w", ErrCreateSoundboard, err)
	}

	now := a.now()
	sb := domain.Soundboard{
		ID:             a.newID(),
		Title:          title,
		Text:           text,
		AudioURL:       a.objects.PublicURL(key),
		FileName:       key,
		CreatedByEmail: email,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := a.store.SaveSoundboard(sb); err != nil {
		logger.Warn("soundboard audio orphaned", "file_name", key, "err", err)
		return domain.Soundboard{}, fmt.Errorf("%w: %w: %w", ErrCreateSoundboard, ErrPersistence, err)
	}
	logger.Info("soundboard created", "soundboard_id", sb.ID, "file_name", key, "bytes", len(audio))
	return sb, nil
}

// ListSoundboards returns the owner's soundboards, newest first, each annotated with
// whether its audio object still exists. An owner with no rows yields ErrNotFound.
func (a *App) ListSoundboards(ctx context.Context, email string) ([]domain.SoundboardView, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	rows, err := a.store.ListSoundboardsByOwner(email)
	if err != nil {
		return nil, fmt.Errorf("%w: list soundboards: %w", ErrPersistence, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no soundboards for %s", ErrNotFound, email)
	}

	logger := util.LoggerFromContext(ctx)
	views := make([]domain.SoundboardView, len(rows))
	var g errgroup.Group
	g.SetLimit(a.existsConcurrency)
	for i, sb := range rows {
		g.Go(func() error {
			presence, err := a.objects.Exists(ctx, sb.FileName)
			if err != nil {
				logger.Warn("soundboard audio check failed", "soundboard_id", sb.ID, "file_name", sb.FileName, "err", err)
			}
			views[i] = domain.SoundboardView{
				Soundboard: sb,
				FileExists: presence == storage.PresencePresent,
				FileStatus: fileStatus(presence),
			}
			return nil
		})
	}
	_ = g.Wait()
	return views, nil
}

// DeleteSoundboard removes the audio object, best effort, and then the row.
func (a *App) DeleteSoundboard(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	sb, ok, err := a.store.GetSoundboard(id)
	if err != nil {
		return fmt.Errorf("%w: get soundboard: %w", ErrPersistence, err)
	}
	if !ok {
		return fmt.Errorf("%w: soundboard %s", ErrNotFound, id)
	}
	if err := a.objects.Delete(ctx, sb.FileName); err != nil {
		util.LoggerFromContext(ctx).Warn("soundboard audio delete failed", "soundboard_id", id, "file_name", sb.FileName, "err", err)
	}
	if err := a.store.DeleteSoundboard(id); err != nil {
		return fmt.Errorf("%w: delete soundboard: %w", ErrPersistence, err)
	}
	return nil
}

func fileStatus(p storage.Presence) domain.FileStatus {
	switch p {
	case storage.PresencePresent:
		return domain.FilePresent
	case storage.PresenceAbsent:
		return domain.FileAbsent
	default:
		return domain.FileUnknown
	}
}
