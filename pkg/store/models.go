package store

import "time"

// GORM models used for persistence.
type SoundboardModel struct {
	ID             string    `gorm:"primaryKey"`
	Title          string    `gorm:"not null"`
	Text           string    `gorm:"type:text;not null"`
	AudioURL       string    `gorm:"not null"`
	FileName       string    `gorm:"not null"`
	CreatedByEmail string    `gorm:"not null;index"`
	CreatedAt      time.Time `gorm:"not null;index"`
	UpdatedAt      time.Time `gorm:"not null"`
}

type HistoryModel struct {
	ID        string    `gorm:"primaryKey"`
	Email     string    `gorm:"uniqueIndex;not null"`
	Title     string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type MessageModel struct {
	ID             string    `gorm:"primaryKey"`
	Email          string    `gorm:"not null;index"`
	Message        string    `gorm:"type:text;not null"`
	IsSpeechToText bool      `gorm:"not null;default:false"`
	CreatedAt      time.Time `gorm:"not null;index"`
}

type ProfileModel struct {
	ID                string `gorm:"primaryKey"`
	Email             string `gorm:"uniqueIndex;not null"`
	Name              string `gorm:"not null"`
	ProfilePictureURL string
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

type FeedbackModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Comment   string    `gorm:"type:text;not null"`
	Rating    int       `gorm:"not null;check:chk_feedback_rating,rating >= 1 AND rating <= 4"`
	CreatedAt time.Time `gorm:"not null"`
}

type ReportModel struct {
	ID        string    `gorm:"primaryKey"`
	Comment   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}
