package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"homewatch/internal/models"
	"homewatch/internal/repository"
)

// AlertFilter narrows alert-history queries by time range and type.
type AlertFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "", or one of the condition types
}

type AlertLogService struct {
	alertRepo repository.AlertRepo
}

func NewAlertLogService(alertRepo repository.AlertRepo) *AlertLogService {
	return &AlertLogService{alertRepo: alertRepo}
}

var errInvalidTimeRange = errors.New("invalid time range: From must be <= To")

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

func (s *AlertLogService) List(ctx context.Context, f AlertFilter) ([]models.AlertRecord, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return nil, errInvalidTimeRange
	}
	return s.alertRepo.List(ctx, from, to, strings.TrimSpace(f.Type))
}
