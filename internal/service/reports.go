package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/odelu/catalog/internal/document"
	"github.com/odelu/catalog/pkg/sanitizer"
)

// ReportStore is the slice of the document store the reports service uses.
type ReportStore interface {
	CreateReport(ctx context.Context, r *document.Report) (primitive.ObjectID, error)
	ReportByID(ctx context.Context, id primitive.ObjectID) (*document.Report, error)
	ListReports(ctx context.Context, status, contentType string, page, limit int) ([]document.Report, int64, error)
	UpdateReportStatus(ctx context.Context, id primitive.ObjectID, status string) error
	DeleteReport(ctx context.Context, id primitive.ObjectID) error
	ReportCountsByStatus(ctx context.Context) (map[string]int64, error)
	MovieExists(ctx context.Context, id primitive.ObjectID) (bool, error)
	ShowExists(ctx context.Context, id primitive.ObjectID) (bool, error)
	EpisodeByID(ctx context.Context, id primitive.ObjectID) (*document.Episode, error)
}

// Reports serves problem reports. Report data is admin-facing and low
// volume, so nothing here is cached.
type Reports struct {
	store ReportStore
}

// NewReports wires the reports service.
func NewReports(store ReportStore) *Reports {
	return &Reports{store: store}
}

// ReportInput is a user-filed problem report.
type ReportInput struct {
	ContentID   string `json:"contentId"`
	ContentType string `json:"contentType"`
	Reason      string `json:"reason"`
	Details     string `json:"details"`
}

// ReportPage is one page of reports with status counts for the admin view.
type ReportPage struct {
	Success    bool              `json:"success"`
	Data       []document.Report `json:"data"`
	Pagination Pagination        `json:"pagination"`
	Counts     map[string]int64  `json:"counts"`
}

var validReportStatuses = map[string]struct{}{
	document.ReportStatusPending:  {},
	document.ReportStatusReviewed: {},
	document.ReportStatusResolved: {},
}

// File stores a new report. Anonymous reports are allowed.
func (s *Reports) File(ctx context.Context, user *Identity, in ReportInput) (*document.Report, error) {
	if in.ContentType != document.TypeMovie && in.ContentType != document.TypeShow && in.ContentType != document.TypeEpisode {
		return nil, fmt.Errorf("%w: unknown content type %q", ErrValidation, in.ContentType)
	}

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: empty reason", ErrValidation)
	}

	oid, err := document.ParseID(in.ContentID)
	if err != nil {
		return nil, err
	}

	var exists bool
	switch in.ContentType {
	case document.TypeMovie:
		exists, err = s.store.MovieExists(ctx, oid)
	case document.TypeShow:
		exists, err = s.store.ShowExists(ctx, oid)
	default:
		_, err = s.store.EpisodeByID(ctx, oid)
		if err == nil {
			exists = true
		} else if errors.Is(err, document.ErrNotFound) {
			err = nil
		}
	}
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, document.ErrNotFound
	}

	report := &document.Report{
		ContentID:   oid,
		ContentType: in.ContentType,
		Reason:      reason,
		Details:     sanitizer.Comment(in.Details),
	}
	if personalized(user) {
		report.UserID = user.ID
	}

	id, err := s.store.CreateReport(ctx, report)
	if err != nil {
		return nil, err
	}
	report.ID = id
	return report, nil
}

// List returns one page of reports for the admin view, filterable by status
// and content type.
func (s *Reports) List(ctx context.Context, user *Identity, status, contentType string, page, limit int) (*ReportPage, error) {
	if !user.IsAdmin() {
		return nil, ErrForbidden
	}
	if status != "" {
		if _, ok := validReportStatuses[status]; !ok {
			return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
		}
	}
	page, limit = clampPage(page, limit, defaultPageSize, maxPageSize)

	reports, total, err := s.store.ListReports(ctx, status, contentType, page, limit)
	if err != nil {
		return nil, err
	}
	if reports == nil {
		reports = []document.Report{}
	}

	counts, err := s.store.ReportCountsByStatus(ctx)
	if err != nil {
		return nil, err
	}

	return &ReportPage{
		Success:    true,
		Data:       reports,
		Pagination: paginate(total, page, limit),
		Counts:     counts,
	}, nil
}

// Get returns a single report for the admin view.
func (s *Reports) Get(ctx context.Context, user *Identity, reportID string) (*document.Report, error) {
	if !user.IsAdmin() {
		return nil, ErrForbidden
	}

	oid, err := document.ParseID(reportID)
	if err != nil {
		return nil, err
	}
	return s.store.ReportByID(ctx, oid)
}

// SetStatus moves a report through its review lifecycle.
func (s *Reports) SetStatus(ctx context.Context, user *Identity, reportID, status string) error {
	if !user.IsAdmin() {
		return ErrForbidden
	}
	if _, ok := validReportStatuses[status]; !ok {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	oid, err := document.ParseID(reportID)
	if err != nil {
		return err
	}
	return s.store.UpdateReportStatus(ctx, oid, status)
}

// Delete removes a report.
func (s *Reports) Delete(ctx context.Context, user *Identity, reportID string) error {
	if !user.IsAdmin() {
		return ErrForbidden
	}

	oid, err := document.ParseID(reportID)
	if err != nil {
		return err
	}
	return s.store.DeleteReport(ctx, oid)
}
