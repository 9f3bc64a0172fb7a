package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"soundboard/internal/util"
	"soundboard/pkg/domain"
	"soundboard/pkg/store"
)

// ProfileImage is an uploaded profile picture.
type ProfileImage struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CreateProfile registers a profile for an email.
func (a *App) CreateProfile(name, email string) (domain.Profile, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return domain.Profile{}, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	_, exists, err := a.store.GetProfile(email)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("%w: get profile: %w", ErrPersistence, err)
	}
	if exists {
		return domain.Profile{}, fmt.Errorf("%w: profile for %s", ErrAlreadyExists, email)
	}
	now := a.now()
	p := domain.Profile{
		ID:        a.newID(),
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.CreateProfile(p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return domain.Profile{}, fmt.Errorf("%w: profile for %s", ErrAlreadyExists, email)
		}
		return domain.Profile{}, fmt.Errorf("%w: create profile: %w", ErrPersistence, err)
	}
	return p, nil
}

// GetProfile looks up a profile by email.
func (a *App) GetProfile(email string) (domain.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Profile{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	p, ok, err := a.store.GetProfile(email)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("%w: get profile: %w", ErrPersistence, err)
	}
	if !ok {
		return domain.Profile{}, fmt.Errorf("%w: profile for %s", ErrNotFound, email)
	}
	return p, nil
}

// UpdateProfile renames a profile and, when image is non-nil, uploads it and
// stores its public URL. If no profile matched, the uploaded image is removed.
func (a *App) UpdateProfile(ctx context.Context, email, name string, image *ProfileImage) (domain.Profile, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		return domain.Profile{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	logger := util.LoggerFromContext(ctx)

	var key, pictureURL string
	if image != nil {
		key = a.profileImageKey(image.Filename)
		if err := a.objects.Put(ctx, key, image.Body, image.Size, imageContentType(image)); err != nil {
			return domain.Profile{}, fmt.Errorf("upload profile image: %w", err)
		}
		pictureURL = a.objects.PublicURL(key)
	}

	matched, err := a.store.UpdateProfile(email, name, pictureURL)
	if err != nil || !matched {
		if key != "" {
			if delErr := a.objects.Delete(ctx, key); delErr != nil {
				logger.Warn("profile image cleanup failed", "key", key, "err", delErr)
			}
		}
		if err != nil {
			return domain.Profile{}, fmt.Errorf("%w: update profile: %w", ErrPersistence, err)
		}
		return domain.Profile{}, fmt.Errorf("%w: profile for %s", ErrNotFound, email)
	}
	return a.GetProfile(email)
}

func (a *App) profileImageKey(filename string) string {
	name := sanitizeFilename(filepath.Base(filename))
	if name == "" {
		name = "image"
	}
	return fmt.Sprintf("profiles/%d-%s", a.now().UnixMilli(), name)
}

func imageContentType(img *ProfileImage) string {
	if ct := strings.TrimSpace(img.ContentType); ct != "" {
		return ct
	}
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(img.Filename))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// sanitizeFilename keeps ASCII letters, digits, dot, dash and underscore,
// collapsing every other run of characters into one underscore.
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.Trim(b.String(), "_")
}
