// Package moderation handles reports against posts, reviews, comments,
// products and users, and the admin resolutions that act on them.
package moderation

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/auth"
	"github.com/sujalbistaa/bookit/internal/metrics"
	"github.com/sujalbistaa/bookit/internal/models"
)

const minReasonLength = 3

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(gdb *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: gdb, log: log.Named("moderation")}
}

// File records an open report against target. The target must exist.
// Posts and reviews also get their reportsCount bumped. The same reporter
// may report the same target any number of times.
func (s *Service) File(ctx context.Context, reporter auth.Principal, target Target, reason string) (*models.Report, error) {
	reason = strings.TrimSpace(reason)
	if utf8.RuneCountInString(reason) < minReasonLength {
		return nil, apperr.InvalidFields("Validation failed", map[string]string{"reason": "Reason required"})
	}
	ops, ok := opsFor(target.Kind)
	if !ok {
		return nil, apperr.InvalidFields("Validation failed", map[string]string{
			"targetType": "Target type must be one of post, comment, review, product, user",
		})
	}

	report := &models.Report{
		ReporterID: reporter.ID,
		TargetType: target.Kind,
		TargetID:   target.ID,
		Reason:     reason,
		Status:     models.ReportOpen,
		Action:     models.ActionNone,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := ops.exists(tx, target.ID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound(target.Kind.Label())
		}
		if err := tx.Create(report).Error; err != nil {
			return err
		}
		if ops.countReport != nil {
			return ops.countReport(tx, target.ID)
		}
		return nil
	})
	if err != nil {
		return nil, s.internal("Failed to submit report", err)
	}

	metrics.ReportsFiled.WithLabelValues(string(target.Kind)).Inc()
	s.log.Info("Report filed",
		zap.String("report_id", report.ID),
		zap.String("target_type", string(target.Kind)),
		zap.String("target_id", target.ID),
		zap.String("reporter_id", reporter.ID),
	)
	return report, nil
}

// List returns reports newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, admin auth.Principal, status models.ReportStatus) ([]models.Report, error) {
	if err := auth.RequireAdmin(admin); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, apperr.Invalid("Status must be one of open, resolved, dismissed")
	}

	q := s.db.WithContext(ctx).
		Preload("Reporter", func(db *gorm.DB) *gorm.DB { return db.Select("id", "username", "avatar") })
	if status != "" {
		q = q.Where("status = ?", status)
	}
	reports := []models.Report{}
	if err := q.Order("created_at DESC").Find(&reports).Error; err != nil {
		return nil, s.internal("Failed to list reports", err)
	}
	return reports, nil
}

// Resolution is an admin decision on a report. Empty fields keep their
// defaults: Status becomes resolved, Action and AdminNote keep the
// report's current values.
type Resolution struct {
	Action    models.ReportAction
	Status    models.ReportStatus
	AdminNote string
}

func (r Resolution) validate() error {
	fields := map[string]string{}
	if r.Action != "" && !r.Action.Valid() {
		fields["action"] = "Action must be one of none, deleted, warned, banned"
	}
	if r.Status != "" && !r.Status.Valid() {
		fields["status"] = "Status must be one of open, resolved, dismissed"
	}
	if len(fields) > 0 {
		return apperr.InvalidFields("Validation failed", fields)
	}
	return nil
}

// Resolve records an admin's decision and applies the requested action to
// the target in the same transaction. Resolving again overwrites the
// previous resolution and re-applies its effect; deletes of an already
// deleted target and repeated bans are no-ops.
func (s *Service) Resolve(ctx context.Context, admin auth.Principal, reportID string, res Resolution) (*models.Report, error) {
	if err := auth.RequireAdmin(admin); err != nil {
		return nil, err
	}
	if err := res.validate(); err != nil {
		return nil, err
	}

	var report models.Report
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&report, "id = ?", reportID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Report")
		}
		if err != nil {
			return err
		}

		report.Status = models.ReportResolved
		if res.Status != "" {
			report.Status = res.Status
		}
		if res.Action != "" {
			report.Action = res.Action
		}
		if note := strings.TrimSpace(res.AdminNote); note != "" {
			report.AdminNote = note
		}
		report.ResolvedBy = &admin.ID

		if err := tx.Model(&report).Updates(map[string]any{
			"status":      report.Status,
			"action":      report.Action,
			"admin_note":  report.AdminNote,
			"resolved_by": admin.ID,
		}).Error; err != nil {
			return err
		}
		return apply(tx, res.Action, Target{Kind: report.TargetType, ID: report.TargetID})
	})
	if err != nil {
		return nil, s.internal("Failed to resolve report", err)
	}

	metrics.ReportsResolved.WithLabelValues(string(report.Action)).Inc()
	s.log.Info("Report resolved",
		zap.String("report_id", report.ID),
		zap.String("status", string(report.Status)),
		zap.String("action", string(report.Action)),
		zap.String("admin_id", admin.ID),
	)
	return &report, nil
}

// apply runs the side effect of action against target. Only deleted and
// banned act on the store; deleted never removes a user and banned only
// touches user targets.
func apply(tx *gorm.DB, action models.ReportAction, target Target) error {
	ops, ok := opsFor(target.Kind)
	if !ok {
		return nil
	}
	switch action {
	case models.ActionDeleted:
		if ops.remove != nil {
			return ops.remove(tx, target.ID)
		}
	case models.ActionBanned:
		if ops.ban != nil {
			return ops.ban(tx, target.ID)
		}
	}
	return nil
}

func (s *Service) internal(msg string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	s.log.Error(msg, zap.Error(err))
	return apperr.Internal(msg, err)
}
