package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"soundboard/services/api/internal/app"
)

const maxJSONBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBodyBytes)).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "REQUEST_INVALID_JSON", "invalid JSON body")
		return false
	}
	return true
}

type createSoundboardRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Email string `json:"email"`
}

func (s *Server) handleSoundboards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req createSoundboardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sb, err := s.app.CreateSoundboard(r.Context(), req.Title, req.Text, req.Email)
	if err != nil {
		writeAppError(w, r, "SOUNDBOARD", err)
		return
	}
	writeData(w, r, http.StatusCreated, "soundboard created", sb)
}

// GET /soundboards/{email} and DELETE /soundboards/{id}
func (s *Server) handleSoundboardByKey(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "/soundboards/")
	if key == "" {
		writeError(w, r, http.StatusNotFound, "SYSTEM_NOT_FOUND", "not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		views, err := s.app.ListSoundboards(r.Context(), key)
		if err != nil {
			writeAppError(w, r, "SOUNDBOARD", err)
			return
		}
		writeData(w, r, http.StatusOK, "", views)
	case http.MethodDelete:
		if err := s.app.DeleteSoundboard(r.Context(), key); err != nil {
			writeAppError(w, r, "SOUNDBOARD", err)
			return
		}
		writeData(w, r, http.StatusOK, "soundboard deleted", nil)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodDelete)
	}
}

type createHistoryRequest struct {
	Email string `json:"email"`
	Title string `json:"title"`
}

type appendMessageRequest struct {
	Message        string `json:"message"`
	IsSpeechToText bool   `json:"is_speech_to_text"`
}

// POST /history/email creates a history; other segments address one by email.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	email := pathParam(r, "/history/")
	if email == "" {
		writeError(w, r, http.StatusNotFound, "SYSTEM_NOT_FOUND", "not found")
		return
	}
	switch r.Method {
	case http.MethodPost:
		if email == "email" {
			s.handleCreateHistory(w, r)
			return
		}
		var req appendMessageRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		msg, err := s.app.AppendMessage(email, req.Message, req.IsSpeechToText)
		if err != nil {
			writeAppError(w, r, "HISTORY", err)
			return
		}
		writeData(w, r, http.StatusCreated, "message added", msg)
	case http.MethodGet:
		conv, err := s.app.GetHistory(email)
		if err != nil {
			writeAppError(w, r, "HISTORY", err)
			return
		}
		writeData(w, r, http.StatusOK, "", conv)
	case http.MethodDelete:
		if err := s.app.DeleteHistory(email); err != nil {
			writeAppError(w, r, "HISTORY", err)
			return
		}
		writeData(w, r, http.StatusOK, "history deleted", nil)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (s *Server) handleCreateHistory(w http.ResponseWriter, r *http.Request) {
	var req createHistoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h, err := s.app.CreateHistory(req.Email, req.Title)
	if err != nil {
		writeAppError(w, r, "HISTORY", err)
		return
	}
	writeData(w, r, http.StatusCreated, "history created", h)
}

type profileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.app.CreateProfile(req.Name, req.Email)
	if err != nil {
		writeAppError(w, r, "PROFILE", err)
		return
	}
	writeData(w, r, http.StatusCreated, "profile created", p)
}

func (s *Server) handleProfileByEmail(w http.ResponseWriter, r *http.Request) {
	email := pathParam(r, "/profile/")
	if email == "" {
		writeError(w, r, http.StatusNotFound, "SYSTEM_NOT_FOUND", "not found")
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := s.app.GetProfile(email)
		if err != nil {
			writeAppError(w, r, "PROFILE", err)
			return
		}
		writeData(w, r, http.StatusOK, "", p)
	case http.MethodPut:
		s.handleUpdateProfile(w, r, email)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut)
	}
}

// handleUpdateProfile accepts multipart (name plus optional file "image") or a JSON name.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, email string) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var req profileRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		p, err := s.app.UpdateProfile(r.Context(), email, req.Name, nil)
		if err != nil {
			writeAppError(w, r, "PROFILE", err)
			return
		}
		writeData(w, r, http.StatusOK, "profile updated", p)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, http.StatusRequestEntityTooLarge, "PROFILE_IMAGE_TOO_LARGE", "file too large")
			return
		}
		writeError(w, r, http.StatusBadRequest, "PROFILE_INVALID_UPLOAD_FORM", "invalid form data")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var image *app.ProfileImage
	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		image = &app.ProfileImage{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Body:        file,
		}
	case !errors.Is(err, http.ErrMissingFile):
		writeError(w, r, http.StatusBadRequest, "PROFILE_INVALID_UPLOAD_FORM", "invalid image upload")
		return
	}
	p, err := s.app.UpdateProfile(r.Context(), email, r.FormValue("name"), image)
	if err != nil {
		writeAppError(w, r, "PROFILE", err)
		return
	}
	writeData(w, r, http.StatusOK, "profile updated", p)
}

type feedbackRequest struct {
	Comment string      `json:"comment"`
	Rating  json.Number `json:"rating"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req feedbackRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rating, err := strconv.Atoi(req.Rating.String())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "REQUEST_INVALID", "rating must be an integer between 1 and 4")
		return
	}
	f, err := s.app.SubmitFeedback(req.Comment, rating)
	if err != nil {
		writeAppError(w, r, "FEEDBACK", err)
		return
	}
	writeData(w, r, http.StatusCreated, "feedback submitted", f)
}

type reportRequest struct {
	Comment string `json:"comment"`
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req reportRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		rep, err := s.app.CreateReport(req.Comment)
		if err != nil {
			writeAppError(w, r, "REPORT", err)
			return
		}
		writeData(w, r, http.StatusCreated, "report submitted", rep)
	case http.MethodGet:
		page, ok := queryInt(r, "page")
		if !ok {
			writeError(w, r, http.StatusBadRequest, "REQUEST_INVALID", "page must be a positive integer")
			return
		}
		limit, ok := queryInt(r, "limit")
		if !ok {
			writeError(w, r, http.StatusBadRequest, "REQUEST_INVALID", "limit must be a positive integer")
			return
		}
		res, err := s.app.ListReports(page, limit)
		if err != nil {
			writeAppError(w, r, "REPORT", err)
			return
		}
		writeData(w, r, http.StatusOK, "", res)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// queryInt returns 0 for an absent parameter and false for anything but a positive integer.
func queryInt(r *http.Request, name string) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req generateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	text, err := s.app.Generate(r.Context(), req.Prompt)
	if err != nil {
		writeAppError(w, r, "GENERATE", err)
		return
	}
	writeData(w, r, http.StatusOK, "", generateResponse{Text: text})
}
