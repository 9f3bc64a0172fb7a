package store

import (
	"errors"

	"soundboard/pkg/domain"
)

// ErrDuplicate is returned when an insert violates a unique index.
var ErrDuplicate = errors.New("duplicate record")

// Store defines persistence operations for soundboards, chat history, profiles,
// feedback and reports.
type Store interface {
	// soundboards
	SaveSoundboard(domain.Soundboard) error
	ListSoundboardsByOwner(email string) ([]domain.Soundboard, error)
	GetSoundboard(id string) (domain.Soundboard, bool, error)
	DeleteSoundboard(id string) error

	// history
	CreateHistory(domain.History) error
	GetHistory(email string) (domain.History, bool, error)
	DeleteHistory(email string) error
	AppendMessage(domain.Message) error
	ListMessages(email string) ([]domain.Message, error)

	// profiles
	CreateProfile(domain.Profile) error
	GetProfile(email string) (domain.Profile, bool, error)
	UpdateProfile(email, name, pictureURL string) (bool, error)

	// feedback & reports
	SaveFeedback(domain.Feedback) (domain.Feedback, error)
	SaveReport(domain.Report) error
	ListReports(offset, limit int) ([]domain.Report, int64, error)

	Ping() error
}
