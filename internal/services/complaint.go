// Package services contains business logic layers.
// Services are called by handlers and interact with the database.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jansunwai/grievance-server/internal/database"
	"github.com/jansunwai/grievance-server/internal/models"
	"github.com/jansunwai/grievance-server/internal/validation"
)

const complaintColumns = `id, reference, subject, description, category, address, district, state, pincode,
		latitude, longitude, content_hash, status, urgency_level, resolution_details, validation, created_at, updated_at`

// ComplaintService handles complaint business logic. It also backs the
// validation engine's store interface, so the engine's duplicate
// checks query the same complaints table the service writes to.
type ComplaintService struct {
	db        database.Pool
	validator *validation.Validator
	hasher    validation.ContentHasher
	logger    *zap.SugaredLogger
}

// NewComplaintService creates a complaint service wired to the
// validation engine.
func NewComplaintService(db database.Pool, oracle validation.GeocodingOracle, vcfg validation.Config, logger *zap.SugaredLogger) *ComplaintService {
	s := &ComplaintService{
		db:     db,
		hasher: validation.SHA256Hasher{},
		logger: logger,
	}
	s.validator = validation.NewValidator(oracle, s, s.hasher, vcfg, logger)
	return s
}

// Create validates and stores a new complaint. Validation is advisory:
// it shapes the stored risk assessment but can never block creation.
func (s *ComplaintService) Create(ctx context.Context, req *models.ComplaintSubmission, content []byte) (*models.Complaint, error) {
	id := uuid.New()
	now := time.Now().UTC()

	c := &models.Complaint{
		ID:           id,
		Reference:    id.String()[:8],
		Subject:      req.Subject,
		Description:  req.Description,
		Category:     req.Category,
		Address:      req.Address,
		District:     req.District,
		State:        req.State,
		Pincode:      req.Pincode,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Status:       models.StatusPending,
		UrgencyLevel: req.UrgencyLevel,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if c.UrgencyLevel == "" {
		c.UrgencyLevel = "medium"
	}
	if len(content) > 0 {
		hash := s.hasher.Fingerprint(content)
		c.ContentHash = &hash
	}

	assessment := s.validator.Validate(ctx, validation.SubmissionContext{
		Coordinates: coordinatesOf(c),
		Address:     c.Address,
		District:    c.District,
		State:       c.State,
		Category:    c.Category,
		Content:     content,
	})
	c.Validation = &assessment

	query := `
		INSERT INTO complaints (` + complaintColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	_, err := s.db.Exec(ctx, query,
		c.ID, c.Reference, c.Subject, c.Description, c.Category,
		c.Address, c.District, c.State, c.Pincode,
		c.Latitude, c.Longitude, c.ContentHash,
		c.Status, c.UrgencyLevel, c.ResolutionDetails,
		c.Validation, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert complaint: %w", err)
	}

	s.logger.Infow("Complaint created",
		"id", c.ID,
		"district", c.District,
		"risk_level", assessment.RiskLevel,
		"needs_review", assessment.NeedsManualReview,
	)

	return c, nil
}

// GetByID returns a complaint, backfilling its risk assessment if it
// was stored before validation ran.
func (s *ComplaintService) GetByID(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id = $1`

	var c models.Complaint
	if err := s.scanComplaint(s.db.QueryRow(ctx, query, id), &c); err != nil {
		return nil, fmt.Errorf("complaint not found: %w", err)
	}

	if c.Validation == nil {
		s.Revalidate(ctx, &c)
	}
	return &c, nil
}

// List returns complaints matching the filter, newest first.
// Complaints missing an assessment are re-validated on the way out.
func (s *ComplaintService) List(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE 1=1`
	var args []any

	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.District != "" {
		args = append(args, f.District)
		query += fmt.Sprintf(" AND district = $%d", len(args))
	}
	if f.RiskLevel != "" {
		args = append(args, f.RiskLevel)
		query += fmt.Sprintf(" AND validation->>'risk_level' = $%d", len(args))
	}
	if f.NeedsReview {
		query += " AND (validation->>'needs_manual_review')::boolean = true"
	}

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()

	var complaints []models.Complaint
	for rows.Next() {
		var c models.Complaint
		if err := s.scanComplaint(rows, &c); err != nil {
			s.logger.Warnw("Skipping unreadable complaint row", "error", err)
			continue
		}
		complaints = append(complaints, c)
	}

	for i := range complaints {
		if complaints[i].Validation == nil {
			s.Revalidate(ctx, &complaints[i])
		}
	}
	return complaints, nil
}

// Revalidate re-runs the validation engine against a stored complaint
// and persists the fresh assessment, replacing any previous one
// wholesale. The complaint's own id is excluded from duplicate
// matching. A persistence failure leaves the in-memory assessment in
// place and is logged, not returned: re-validation is best-effort.
func (s *ComplaintService) Revalidate(ctx context.Context, c *models.Complaint) {
	sub := validation.SubmissionContext{
		ComplaintID: &c.ID,
		Coordinates: coordinatesOf(c),
		Address:     c.Address,
		District:    c.District,
		State:       c.State,
		Category:    c.Category,
	}
	if c.ContentHash != nil {
		sub.ContentHash = *c.ContentHash
	}

	assessment := s.validator.Validate(ctx, sub)
	c.Validation = &assessment

	_, err := s.db.Exec(ctx,
		`UPDATE complaints SET validation = $1, updated_at = $2 WHERE id = $3`,
		c.Validation, time.Now().UTC(), c.ID,
	)
	if err != nil {
		s.logger.Errorw("Failed to persist re-validation", "id", c.ID, "error", err)
	}
}

// UpdateStatus transitions a complaint's lifecycle state.
func (s *ComplaintService) UpdateStatus(ctx context.Context, id uuid.UUID, status, resolutionDetails string) error {
	if !models.ValidStatus(status) {
		return fmt.Errorf("invalid status %q", status)
	}

	var resolution *string
	if resolutionDetails != "" {
		resolution = &resolutionDetails
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE complaints SET status = $1, resolution_details = COALESCE($2, resolution_details), updated_at = $3 WHERE id = $4`,
		status, resolution, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("complaint %s not found", id)
	}
	return nil
}

// FindUnvalidated returns complaints stored without a risk assessment,
// oldest first, for the backfill worker.
func (s *ComplaintService) FindUnvalidated(ctx context.Context, limit int) ([]models.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE validation IS NULL ORDER BY created_at ASC LIMIT $1`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("find unvalidated: %w", err)
	}
	defer rows.Close()

	var complaints []models.Complaint
	for rows.Next() {
		var c models.Complaint
		if err := s.scanComplaint(rows, &c); err != nil {
			continue
		}
		complaints = append(complaints, c)
	}
	return complaints, nil
}

// FindNearby implements validation.ComplaintStore. It returns open
// complaints with coordinates in the same district and state created
// since the window start, newest first, excluding q.ExcludeID.
func (s *ComplaintService) FindNearby(ctx context.Context, q validation.NearbyQuery) ([]validation.NearbyComplaint, error) {
	query := `
		SELECT id, latitude, longitude, status
		FROM complaints
		WHERE district = $1 AND state = $2
		  AND status <> $3
		  AND created_at >= $4
		  AND latitude IS NOT NULL AND longitude IS NOT NULL
		  AND ($5::uuid IS NULL OR id <> $5)
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, q.District, q.State, models.StatusResolved, q.Since, q.ExcludeID)
	if err != nil {
		return nil, fmt.Errorf("find nearby complaints: %w", err)
	}
	defer rows.Close()

	var candidates []validation.NearbyComplaint
	for rows.Next() {
		var c validation.NearbyComplaint
		if err := rows.Scan(&c.ID, &c.Coordinate.Latitude, &c.Coordinate.Longitude, &c.Status); err != nil {
			return nil, fmt.Errorf("scan nearby complaint: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// FindByContentHash implements validation.ComplaintStore. The search
// is global by hash and time, not bounded by district or state.
func (s *ComplaintService) FindByContentHash(ctx context.Context, q validation.ContentHashQuery) ([]uuid.UUID, error) {
	query := `
		SELECT id
		FROM complaints
		WHERE content_hash = $1
		  AND created_at >= $2
		  AND ($3::uuid IS NULL OR id <> $3)
		ORDER BY created_at DESC
	`

	rows, err := s.db.Query(ctx, query, q.Hash, q.Since, q.ExcludeID)
	if err != nil {
		return nil, fmt.Errorf("find by content hash: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan content hash match: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Count returns the total number of complaints
func (s *ComplaintService) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM complaints").Scan(&count)
	return count, err
}

// GetTrends returns complaint submission trends over the last N hours
func (s *ComplaintService) GetTrends(ctx context.Context, hours int) ([]models.AnalyticsTrend, error) {
	query := `
		SELECT DATE_TRUNC('hour', created_at)::TEXT as date, COUNT(*) as count
		FROM complaints
		WHERE created_at > NOW() - INTERVAL '1 hour' * $1
		GROUP BY DATE_TRUNC('hour', created_at)
		ORDER BY date DESC
	`

	rows, err := s.db.Query(ctx, query, hours)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trends []models.AnalyticsTrend
	for rows.Next() {
		var t models.AnalyticsTrend
		if err := rows.Scan(&t.Date, &t.Count); err != nil {
			continue
		}
		trends = append(trends, t)
	}
	return trends, nil
}

// GetCategoryDistribution returns complaint categories for analytics charts
func (s *ComplaintService) GetCategoryDistribution(ctx context.Context) ([]models.CategoryDistribution, error) {
	query := `
		SELECT category, COUNT(*) as count
		FROM complaints
		WHERE category <> ''
		GROUP BY category
		ORDER BY count DESC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []models.CategoryDistribution
	for rows.Next() {
		var c models.CategoryDistribution
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			continue
		}
		cats = append(cats, c)
	}
	return cats, nil
}

// GetDistrictDistribution returns complaint counts per district
func (s *ComplaintService) GetDistrictDistribution(ctx context.Context) ([]models.DistrictDistribution, error) {
	query := `
		SELECT district, state, COUNT(*) as count
		FROM complaints
		GROUP BY district, state
		ORDER BY count DESC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dists []models.DistrictDistribution
	for rows.Next() {
		var d models.DistrictDistribution
		if err := rows.Scan(&d.District, &d.State, &d.Count); err != nil {
			continue
		}
		dists = append(dists, d)
	}
	return dists, nil
}

// GetRiskDistribution returns complaint counts per assessed risk level
func (s *ComplaintService) GetRiskDistribution(ctx context.Context) ([]models.RiskDistribution, error) {
	query := `
		SELECT validation->>'risk_level' as risk_level, COUNT(*) as count
		FROM complaints
		WHERE validation IS NOT NULL
		GROUP BY validation->>'risk_level'
		ORDER BY count DESC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []models.RiskDistribution
	for rows.Next() {
		var r models.RiskDistribution
		if err := rows.Scan(&r.RiskLevel, &r.Count); err != nil {
			continue
		}
		levels = append(levels, r)
	}
	return levels, nil
}

// scanComplaint reads one complaints row in complaintColumns order.
func (s *ComplaintService) scanComplaint(row interface{ Scan(dest ...any) error }, c *models.Complaint) error {
	return row.Scan(
		&c.ID, &c.Reference, &c.Subject, &c.Description, &c.Category,
		&c.Address, &c.District, &c.State, &c.Pincode,
		&c.Latitude, &c.Longitude, &c.ContentHash,
		&c.Status, &c.UrgencyLevel, &c.ResolutionDetails,
		&c.Validation, &c.CreatedAt, &c.UpdatedAt,
	)
}

// coordinatesOf returns the complaint's coordinates, or nil when
// either component is missing.
func coordinatesOf(c *models.Complaint) *validation.Coordinate {
	if c.Latitude == nil || c.Longitude == nil {
		return nil
	}
	return &validation.Coordinate{Latitude: *c.Latitude, Longitude: *c.Longitude}
}
