package domain

import "time"

// FileStatus reports what the blob store said about a soundboard's audio object.
type FileStatus string

const (
	FilePresent FileStatus = "present"
	FileAbsent  FileStatus = "absent"
	FileUnknown FileStatus = "unknown"
)

type Soundboard struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Text           string    `json:"text"`
	AudioURL       string    `json:"audioUrl"`
	FileName       string    `json:"fileName"`
	CreatedByEmail string    `json:"createdByEmail"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// SoundboardView is a soundboard annotated with the result of its blob existence check.
// FileExists is true only when the object was confirmed present.
type SoundboardView struct {
	Soundboard
	FileExists bool       `json:"fileExists"`
	FileStatus FileStatus `json:"fileStatus"`
}

type History struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

type Message struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Message        string    `json:"message"`
	IsSpeechToText bool      `json:"is_speech_to_text"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Conversation is a history header together with its messages, oldest first.
type Conversation struct {
	History  History   `json:"history"`
	Messages []Message `json:"messages"`
}

type Profile struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	ProfilePictureURL string    `json:"profilePictureUrl,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type Feedback struct {
	ID        uint      `json:"id"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

type Report struct {
	ID        string    `json:"id"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type ReportPage struct {
	Reports    []Report   `json:"reports"`
	Pagination Pagination `json:"pagination"`
}
