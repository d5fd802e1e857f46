package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jansunwai/grievance-server/internal/database"
	"github.com/jansunwai/grievance-server/internal/models"
)

// ActivityLogService handles activity log business logic
type ActivityLogService struct {
	db     database.Pool
	logger *zap.SugaredLogger
}

// NewActivityLogService creates a new activity log service
func NewActivityLogService(db database.Pool, logger *zap.SugaredLogger) *ActivityLogService {
	return &ActivityLogService{db: db, logger: logger}
}

// Log records an action taken on a complaint
func (s *ActivityLogService) Log(ctx context.Context, entry *models.ActivityLogEntry) error {
	query := `
		INSERT INTO activity_logs (complaint_id, activity_type, action_description, authority, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.db.Exec(ctx, query,
		entry.ComplaintID,
		entry.ActivityType,
		entry.ActionDescription,
		entry.Authority,
		entry.Metadata,
	)

	if err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}

	s.logger.Infow("Activity logged",
		"authority", entry.Authority,
		"type", entry.ActivityType,
		"action", entry.ActionDescription,
	)

	return nil
}

// FetchByComplaint returns activity logs for a specific complaint
func (s *ActivityLogService) FetchByComplaint(ctx context.Context, complaintID uuid.UUID, limit int) ([]models.ActivityLog, error) {
	query := `
		SELECT id, complaint_id, activity_type, action_description, authority, metadata, created_at
		FROM activity_logs
		WHERE complaint_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, complaintID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.ActivityLog
	for rows.Next() {
		var log models.ActivityLog
		if err := rows.Scan(&log.ID, &log.ComplaintID, &log.ActivityType,
			&log.ActionDescription, &log.Authority, &log.Metadata,
			&log.CreatedAt); err != nil {
			continue
		}
		logs = append(logs, log)
	}

	return logs, nil
}

// FetchRecent returns recent activity logs across all complaints
func (s *ActivityLogService) FetchRecent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	query := `
		SELECT id, complaint_id, activity_type, action_description, authority, metadata, created_at
		FROM activity_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.ActivityLog
	for rows.Next() {
		var log models.ActivityLog
		if err := rows.Scan(&log.ID, &log.ComplaintID, &log.ActivityType,
			&log.ActionDescription, &log.Authority, &log.Metadata,
			&log.CreatedAt); err != nil {
			continue
		}
		logs = append(logs, log)
	}

	return logs, nil
}
