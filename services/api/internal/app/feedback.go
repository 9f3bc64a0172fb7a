package app

import (
	"fmt"
	"math"
	"strings"

	"soundboard/pkg/domain"
)

const (
	minRating = 1
	maxRating = 4

	defaultReportLimit = 10
	maxReportLimit     = 100
)

// SubmitFeedback records a comment with a rating between 1 and 4.
func (a *App) SubmitFeedback(comment string, rating int) (domain.Feedback, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return domain.Feedback{}, fmt.Errorf("%w: comment is required", ErrInvalidInput)
	}
	if rating < minRating || rating > maxRating {
		return domain.Feedback{}, fmt.Errorf("%w: rating must be between %d and %d", ErrInvalidInput, minRating, maxRating)
	}
	f, err := a.store.SaveFeedback(domain.Feedback{
		Comment:   comment,
		Rating:    rating,
		CreatedAt: a.now(),
	})
	if err != nil {
		return domain.Feedback{}, fmt.Errorf("%w: save feedback: %w", ErrPersistence, err)
	}
	return f, nil
}

// CreateReport records a problem report.
func (a *App) CreateReport(comment string) (domain.Report, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return domain.Report{}, fmt.Errorf("%w: comment is required", ErrInvalidInput)
	}
	now := a.now()
	r := domain.Report{
		ID:        a.newID(),
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.SaveReport(r); err != nil {
		return domain.Report{}, fmt.Errorf("%w: save report: %w", ErrPersistence, err)
	}
	return r, nil
}

// ListReports returns one page of reports, newest first. Zero page or limit
// select the defaults (1 and 10); limit is capped at 100.
func (a *App) ListReports(page, limit int) (domain.ReportPage, error) {
	if page < 0 || limit < 0 {
		return domain.ReportPage{}, fmt.Errorf("%w: page and limit must be positive", ErrInvalidInput)
	}
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = defaultReportLimit
	}
	limit = min(limit, maxReportLimit)

	reports, total, err := a.store.ListReports((page-1)*limit, limit)
	if err != nil {
		return domain.ReportPage{}, fmt.Errorf("%w: list reports: %w", ErrPersistence, err)
	}
	return domain.ReportPage{
		Reports: reports,
		Pagination: domain.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		},
	}, nil
}
