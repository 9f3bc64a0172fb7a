package app

import (
	"errors"
	"fmt"
	"strings"

	"soundboard/pkg/domain"
	"soundboard/pkg/store"
)

// CreateHistory opens the single chat history for an email.
func (a *App) CreateHistory(email, title string) (domain.History, error) {
	email = strings.TrimSpace(email)
	title = strings.TrimSpace(title)
	if email == "" || title == "" {
		return domain.History{}, fmt.Errorf("%w: email and title are required", ErrInvalidInput)
	}
	_, exists, err := a.store.GetHistory(email)
	if err != nil {
		return domain.History{}, fmt.Errorf("%w: get history: %w", ErrPersistence, err)
	}
	if exists {
		return domain.History{}, fmt.Errorf("%w: history for %s", ErrAlreadyExists, email)
	}
	h := domain.History{
		ID:        a.newID(),
		Email:     email,
		Title:     title,
		CreatedAt: a.now(),
	}
	if err := a.store.CreateHistory(h); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return domain.History{}, fmt.Errorf("%w: history for %s", ErrAlreadyExists, email)
		}
		return domain.History{}, fmt.Errorf("%w: create history: %w", ErrPersistence, err)
	}
	return h, nil
}

// AppendMessage adds a message to an existing history.
func (a *App) AppendMessage(email, text string, isSpeechToText bool) (domain.Message, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(text) == "" {
		return domain.Message{}, fmt.Errorf("%w: email and message are required", ErrInvalidInput)
	}
	_, ok, err := a.store.GetHistory(email)
	if err != nil {
		return domain.Message{}, fmt.Errorf("%w: get history: %w", ErrPersistence, err)
	}
	if !ok {
		return domain.Message{}, fmt.Errorf("%w: history for %s", ErrNotFound, email)
	}
	msg := domain.Message{
		ID:             a.newID(),
		Email:          email,
		Message:        text,
		IsSpeechToText: isSpeechToText,
		CreatedAt:      a.now(),
	}
	if err := a.store.AppendMessage(msg); err != nil {
		return domain.Message{}, fmt.Errorf("%w: append message: %w", ErrPersistence, err)
	}
	return msg, nil
}

// GetHistory returns the history header and its messages, oldest first.
func (a *App) GetHistory(email string) (domain.Conversation, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Conversation{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	h, ok, err := a.store.GetHistory(email)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("%w: get history: %w", ErrPersistence, err)
	}
	if !ok {
		return domain.Conversation{}, fmt.Errorf("%w: history for %s", ErrNotFound, email)
	}
	msgs, err := a.store.ListMessages(email)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("%w: list messages: %w", ErrPersistence, err)
	}
	return domain.Conversation{History: h, Messages: msgs}, nil
}

// DeleteHistory removes a history and all of its messages.
func (a *App) DeleteHistory(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	_, ok, err := a.store.GetHistory(email)
	if err != nil {
		return fmt.Errorf("%w: get history: %w", ErrPersistence, err)
	}
	if !ok {
		return fmt.Errorf("%w: history for %s", ErrNotFound, email)
	}
	if err := a.store.DeleteHistory(email); err != nil {
		return fmt.Errorf("%w: delete history: %w", ErrPersistence, err)
	}
	return nil
}
