package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"soundboard/pkg/domain"
)

const migrateLockID int64 = 51730217

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the Postgres DB and runs auto-migrations under an advisory lock.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := withMigrationLock(db, migrate); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

// NewGormStoreWithDialector opens any GORM dialector and migrates without locking.
// Used for SQLite-backed tests and local development.
func NewGormStoreWithDialector(dialector gorm.Dialector) (*GormStore, error) {
	db, err := gorm.Open(dialector, gormConfig())
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := migrate(db); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func gormConfig() *gorm.Config {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	return &gorm.Config{Logger: gormLog, TranslateError: true}
}

func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&SoundboardModel{},
		&HistoryModel{},
		&MessageModel{},
		&ProfileModel{},
		&FeedbackModel{},
		&ReportModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

func withMigrationLock(db *gorm.DB, fn func(*gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("open sql conn: %w", err)
	}
	defer conn.Close()
	if err := execAdvisory(ctx, conn, "SELECT pg_advisory_lock($1)", migrateLockID); err != nil {
		return fmt.Errorf("acquire migrate lock: %w", err)
	}
	defer func() {
		_ = execAdvisory(ctx, conn, "SELECT pg_advisory_unlock($1)", migrateLockID)
	}()
	return fn(db)
}

func execAdvisory(ctx context.Context, conn *sql.Conn, query string, lockID int64) error {
	_, err := conn.ExecContext(ctx, query, lockID)
	return err
}

// Ping checks database connectivity.
func (s *GormStore) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SaveSoundboard inserts a soundboard row.
func (s *GormStore) SaveSoundboard(sb domain.Soundboard) error {
	model := soundboardToModel(sb)
	return s.db.Create(&model).Error
}

// ListSoundboardsByOwner returns an owner's soundboards, newest first.
func (s *GormStore) ListSoundboardsByOwner(email string) ([]domain.Soundboard, error) {
	var models []SoundboardModel
	if err := s.db.Where("created_by_email = ?", email).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	res := make([]domain.Soundboard, 0, len(models))
	for _, m := range models {
		res = append(res, soundboardFromModel(m))
	}
	return res, nil
}

// GetSoundboard retrieves a soundboard by ID.
func (s *GormStore) GetSoundboard(id string) (domain.Soundboard, bool, error) {
	var model SoundboardModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Soundboard{}, false, nil
		}
		return domain.Soundboard{}, false, err
	}
	return soundboardFromModel(model), true, nil
}

// DeleteSoundboard removes a soundboard row.
func (s *GormStore) DeleteSoundboard(id string) error {
	return s.db.Delete(&SoundboardModel{}, "id = ?", id).Error
}

// CreateHistory inserts the history header for an email.
func (s *GormStore) CreateHistory(h domain.History) error {
	model := historyToModel(h)
	return translate(s.db.Create(&model).Error)
}

// GetHistory looks up the history header for an email.
func (s *GormStore) GetHistory(email string) (domain.History, bool, error) {
	var model HistoryModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.History{}, false, nil
		}
		return domain.History{}, false, err
	}
	return historyFromModel(model), true, nil
}

// DeleteHistory removes all messages for an email, then the history header.
func (s *GormStore) DeleteHistory(email string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&MessageModel{}, "email = ?", email).Error; err != nil {
			return err
		}
		return tx.Delete(&HistoryModel{}, "email = ?", email).Error
	})
}

// AppendMessage records a chat message.
func (s *GormStore) AppendMessage(msg domain.Message) error {
	model := messageToModel(msg)
	return s.db.Create(&model).Error
}

// ListMessages returns the messages for an email in chronological order.
func (s *GormStore) ListMessages(email string) ([]domain.Message, error) {
	var models []MessageModel
	if err := s.db.Where("email = ?", email).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, err
	}
	msgs := make([]domain.Message, 0, len(models))
	for _, m := range models {
		msgs = append(msgs, messageFromModel(m))
	}
	return msgs, nil
}

// CreateProfile inserts a profile.
func (s *GormStore) CreateProfile(p domain.Profile) error {
	model := profileToModel(p)
	return translate(s.db.Create(&model).Error)
}

// GetProfile looks up a profile by email.
func (s *GormStore) GetProfile(email string) (domain.Profile, bool, error) {
	var model ProfileModel
	if err := s.db.Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Profile{}, false, nil
		}
		return domain.Profile{}, false, err
	}
	return profileFromModel(model), true, nil
}

// UpdateProfile sets the name, and the picture URL when one is given.
// It reports whether a row matched.
func (s *GormStore) UpdateProfile(email, name, pictureURL string) (bool, error) {
	updates := map[string]any{
		"name":       name,
		"updated_at": time.Now().UTC(),
	}
	if strings.TrimSpace(pictureURL) != "" {
		updates["profile_picture_url"] = pictureURL
	}
	res := s.db.Model(&ProfileModel{}).Where("email = ?", email).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SaveFeedback inserts feedback and returns it with the generated ID.
func (s *GormStore) SaveFeedback(f domain.Feedback) (domain.Feedback, error) {
	model := FeedbackModel{
		Comment:   f.Comment,
		Rating:    f.Rating,
		CreatedAt: f.CreatedAt,
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Feedback{}, err
	}
	return domain.Feedback{
		ID:        model.ID,
		Comment:   model.Comment,
		Rating:    model.Rating,
		CreatedAt: model.CreatedAt,
	}, nil
}

// SaveReport inserts a report.
func (s *GormStore) SaveReport(r domain.Report) error {
	model := ReportModel{
		ID:        r.ID,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	return s.db.Create(&model).Error
}

// ListReports returns one page of reports, newest first, and the total row count.
func (s *GormStore) ListReports(offset, limit int) ([]domain.Report, int64, error) {
	var total int64
	if err := s.db.Model(&ReportModel{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var models []ReportModel
	if err := s.db.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, err
	}
	reports := make([]domain.Report, 0, len(models))
	for _, m := range models {
		reports = append(reports, domain.Report{
			ID:        m.ID,
			Comment:   m.Comment,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		})
	}
	return reports, total, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func soundboardToModel(sb domain.Soundboard) SoundboardModel {
	return SoundboardModel{
		ID:             sb.ID,
		Title:          sb.Title,
		Text:           sb.Text,
		AudioURL:       sb.AudioURL,
		FileName:       sb.FileName,
		CreatedByEmail: sb.CreatedByEmail,
		CreatedAt:      sb.CreatedAt,
		UpdatedAt:      sb.UpdatedAt,
	}
}

func soundboardFromModel(m SoundboardModel) domain.Soundboard {
	return domain.Soundboard{
		ID:             m.ID,
		Title:          m.Title,
		Text:           m.Text,
		AudioURL:       m.AudioURL,
		FileName:       m.FileName,
		CreatedByEmail: m.CreatedByEmail,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func historyToModel(h domain.History) HistoryModel {
	return HistoryModel{
		ID:        h.ID,
		Email:     h.Email,
		Title:     h.Title,
		CreatedAt: h.CreatedAt,
	}
}

func historyFromModel(m HistoryModel) domain.History {
	return domain.History{
		ID:        m.ID,
		Email:     m.Email,
		Title:     m.Title,
		CreatedAt: m.CreatedAt,
	}
}

func messageToModel(msg domain.Message) MessageModel {
	return MessageModel{
		ID:             msg.ID,
		Email:          msg.Email,
		Message:        msg.Message,
		IsSpeechToText: msg.IsSpeechToText,
		CreatedAt:      msg.CreatedAt,
	}
}

func messageFromModel(m MessageModel) domain.Message {
	return domain.Message{
		ID:             m.ID,
		Email:          m.Email,
		Message:        m.Message,
		IsSpeechToText: m.IsSpeechToText,
		CreatedAt:      m.CreatedAt,
	}
}

func profileToModel(p domain.Profile) ProfileModel {
	return ProfileModel{
		ID:                p.ID,
		Email:             p.Email,
		Name:              p.Name,
		ProfilePictureURL: p.ProfilePictureURL,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func profileFromModel(m ProfileModel) domain.Profile {
	return domain.Profile{
		ID:                m.ID,
		Email:             m.Email,
		Name:              m.Name,
		ProfilePictureURL: m.ProfilePictureURL,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
