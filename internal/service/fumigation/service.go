// Package fumigation owns the fumigation lifecycle: the status state machine,
// reference validation against fields, applicators and stock, lifecycle
// timestamps and the supporting queries. The store is the single source of
// truth; every operation re-reads current state before mutating and writes
// through a check-and-set on the document version it read.
package fumigation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agrovex/campoflow/internal/audit"
	"github.com/agrovex/campoflow/internal/domain/models"
	"github.com/agrovex/campoflow/internal/session"
	"github.com/agrovex/campoflow/internal/store"
)

// transitions is the allowed-to set per current status. completed has no
// outgoing edges; cancelled can only be reactivated back to scheduled.
var transitions = map[models.FumigationStatus][]models.FumigationStatus{
	models.FumigationScheduled:  {models.FumigationInProgress, models.FumigationCancelled},
	models.FumigationInProgress: {models.FumigationCompleted, models.FumigationCancelled},
	models.FumigationCompleted:  {},
	models.FumigationCancelled:  {models.FumigationScheduled},
}

func transitionAllowed(from, to models.FumigationStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Service is the fumigation lifecycle manager.
type Service struct {
	store     store.Store
	validator *Validator
	audit     audit.Sink
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires the lifecycle manager.
func NewService(st store.Store, validator *Validator, sink audit.Sink, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = audit.NopSink{}
	}
	return &Service{
		store:     st,
		validator: validator,
		audit:     sink,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateInput carries the attributes of a new fumigation.
type CreateInput struct {
	FieldID      string
	ApplicatorID string
	Products     []string
	Dosage       map[string]float64
	Date         time.Time
	Notes        string
}

// Create validates references and inserts a new fumigation with status
// scheduled. Nothing is written when any validation fails.
func (s *Service) Create(ctx context.Context, sess session.Session, in CreateInput) (*models.Fumigation, error) {
	if in.FieldID == "" {
		return nil, ErrMissingField
	}
	if in.ApplicatorID == "" {
		return nil, ErrMissingApplicator
	}
	if len(in.Products) == 0 {
		return nil, ErrMissingProducts
	}

	if err := s.validator.ValidateReferences(ctx, in.FieldID, in.ApplicatorID, in.Products); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	date := in.Date
	if date.IsZero() {
		date = now
	}

	record := models.Fumigation{
		FieldID:      in.FieldID,
		ApplicatorID: in.ApplicatorID,
		Products:     in.Products,
		Dosage:       in.Dosage,
		Date:         date,
		Status:       models.FumigationScheduled,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	id, err := s.store.Insert(ctx, store.CollectionFumigations, record)
	if err != nil {
		return nil, fmt.Errorf("insert fumigation: %w", err)
	}
	record.ID = id
	record.Version = 1

	s.audit.Record(audit.Entry{
		Collection: store.CollectionFumigations,
		DocumentID: id,
		Action:     "create",
		Payload: map[string]any{
			"field_id":      record.FieldID,
			"applicator_id": record.ApplicatorID,
			"products":      record.Products,
			"date":          record.Date,
		},
		ActorID: sess.UserID,
	})

	s.logger.Info("fumigation created",
		zap.String("id", id),
		zap.String("field_id", record.FieldID),
		zap.String("applicator_id", record.ApplicatorID))

	return &record, nil
}

// GetByID loads a single fumigation.
func (s *Service) GetByID(ctx context.Context, id string) (*models.Fumigation, error) {
	var record models.Fumigation
	err := s.store.Get(ctx, store.CollectionFumigations, id, &record)
	if errors.Is(err, store.ErrNoDocument) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load fumigation %s: %w", id, err)
	}
	return &record, nil
}

// UpdateInput carries a partial update; nil members are left untouched.
type UpdateInput struct {
	FieldID      *string
	ApplicatorID *string
	Products     *[]string
	Dosage       *map[string]float64
	Date         *time.Time
	Status       *models.FumigationStatus
	Notes        *string
}

// Update applies a partial update. Reassigned references are re-validated; a
// status flip between the two terminal-ish states is rejected. The write is
// conditioned on the version read, so a concurrent writer surfaces as
// store.ErrConflict rather than a lost update.
func (s *Service) Update(ctx context.Context, sess session.Session, id string, in UpdateInput) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	newStatus := current.Status
	if in.Status != nil {
		newStatus = *in.Status
		if !newStatus.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, newStatus)
		}
	}

	terminalish := func(st models.FumigationStatus) bool {
		return st == models.FumigationCompleted || st == models.FumigationCancelled
	}
	if terminalish(current.Status) && terminalish(newStatus) && current.Status != newStatus {
		return &TransitionError{From: current.Status, To: newStatus}
	}

	if in.FieldID != nil {
		if *in.FieldID == "" {
			return ErrMissingField
		}
		if err := s.validator.ValidateField(ctx, *in.FieldID); err != nil {
			return err
		}
	}
	if in.ApplicatorID != nil {
		if *in.ApplicatorID == "" {
			return ErrMissingApplicator
		}
		if err := s.validator.ValidateApplicator(ctx, *in.ApplicatorID); err != nil {
			return err
		}
	}
	if in.Products != nil {
		if len(*in.Products) == 0 {
			return ErrMissingProducts
		}
		if err := s.validator.ValidateProducts(ctx, *in.Products); err != nil {
			return err
		}
	}

	now := s.now().UTC()
	fields := map[string]any{"updated_at": now}

	if in.FieldID != nil {
		fields["field_id"] = *in.FieldID
	}
	if in.ApplicatorID != nil {
		fields["applicator_id"] = *in.ApplicatorID
	}
	if in.Products != nil {
		fields["products"] = *in.Products
	}
	if in.Dosage != nil {
		fields["dosage"] = *in.Dosage
	}
	if in.Date != nil {
		fields["date"] = *in.Date
	}
	if in.Notes != nil {
		fields["notes"] = *in.Notes
	}
	if in.Status != nil {
		fields["status"] = string(newStatus)
		if newStatus == models.FumigationCompleted && current.Status != models.FumigationCompleted {
			fields["completed_at"] = now
		}
	}

	if err := s.store.UpdateVersioned(ctx, store.CollectionFumigations, id, current.Version, fields); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return ErrNotFound
		}
		return fmt.Errorf("update fumigation %s: %w", id, err)
	}

	s.audit.Record(audit.Entry{
		Collection: store.CollectionFumigations,
		DocumentID: id,
		Action:     "update",
		Payload:    fields,
		ActorID:    sess.UserID,
	})

	return nil
}

// ChangeStatus moves the fumigation along one edge of the state machine and
// stamps the matching lifecycle timestamp. started_at is set only on the
// first scheduled-to-in_progress transition and survives a cancel/reactivate
// cycle.
func (s *Service) ChangeStatus(ctx context.Context, sess session.Session, id string, rawStatus string) error {
	newStatus := models.FumigationStatus(rawStatus)
	if !newStatus.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, rawStatus)
	}

	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !transitionAllowed(current.Status, newStatus) {
		return &TransitionError{From: current.Status, To: newStatus}
	}

	now := s.now().UTC()
	fields := map[string]any{
		"status":     string(newStatus),
		"updated_at": now,
	}
	if newStatus == models.FumigationCompleted {
		fields["completed_at"] = now
	}
	if newStatus == models.FumigationInProgress && current.StartedAt == nil {
		fields["started_at"] = now
	}

	if err := s.store.UpdateVersioned(ctx, store.CollectionFumigations, id, current.Version, fields); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return ErrNotFound
		}
		return fmt.Errorf("change fumigation %s status: %w", id, err)
	}

	s.audit.Record(audit.Entry{
		Collection: store.CollectionFumigations,
		DocumentID: id,
		Action:     "change_status",
		Payload: map[string]any{
			"from": string(current.Status),
			"to":   string(newStatus),
		},
		ActorID: sess.UserID,
	})

	s.logger.Info("fumigation status changed",
		zap.String("id", id),
		zap.String("from", string(current.Status)),
		zap.String("to", string(newStatus)))

	return nil
}

// Delete removes the fumigation permanently. Active tasks cannot be deleted.
func (s *Service) Delete(ctx context.Context, sess session.Session, id string) error {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if current.Status == models.FumigationInProgress {
		return ErrDeleteInProgress
	}

	if err := s.store.Delete(ctx, store.CollectionFumigations, id); err != nil {
		if errors.Is(err, store.ErrNoDocument) {
			return ErrNotFound
		}
		return fmt.Errorf("delete fumigation %s: %w", id, err)
	}

	s.audit.Record(audit.Entry{
		Collection: store.CollectionFumigations,
		DocumentID: id,
		Action:     "delete",
		Payload: map[string]any{
			"field_id":      current.FieldID,
			"applicator_id": current.ApplicatorID,
			"products":      current.Products,
			"status":        string(current.Status),
			"date":          current.Date,
		},
		ActorID: sess.UserID,
	})

	return nil
}

// ListFilter restricts List to records matching all non-empty members.
type ListFilter struct {
	FieldID      string
	ApplicatorID string
	Status       models.FumigationStatus
}

// List returns fumigations matching the filter, in store insertion order.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]models.Fumigation, error) {
	var filters []store.Filter
	if filter.FieldID != "" {
		filters = append(filters, store.Eq("field_id", filter.FieldID))
	}
	if filter.ApplicatorID != "" {
		filters = append(filters, store.Eq("applicator_id", filter.ApplicatorID))
	}
	if filter.Status != "" {
		filters = append(filters, store.Eq("status", string(filter.Status)))
	}

	var records []models.Fumigation
	if err := s.store.Query(ctx, store.CollectionFumigations, filters, &records); err != nil {
		return nil, fmt.Errorf("list fumigations: %w", err)
	}
	return records, nil
}

// Upcoming returns scheduled fumigations whose date falls within today
// through today plus horizonDays, boundary date included.
func (s *Service) Upcoming(ctx context.Context, horizonDays int) ([]models.Fumigation, error) {
	scheduled, err := s.List(ctx, ListFilter{Status: models.FumigationScheduled})
	if err != nil {
		return nil, err
	}

	start := truncateToDate(s.now().UTC())
	end := start.AddDate(0, 0, horizonDays)

	var upcoming []models.Fumigation
	for _, record := range scheduled {
		date := truncateToDate(record.Date.UTC())
		if date.Before(start) || date.After(end) {
			continue
		}
		upcoming = append(upcoming, record)
	}
	return upcoming, nil
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Statistics aggregates counts over every fumigation record.
type Statistics struct {
	Total        int                             `json:"total"`
	ByStatus     map[models.FumigationStatus]int `json:"by_status"`
	ByField      map[string]int                  `json:"by_field"`
	ByApplicator map[string]int                  `json:"by_applicator"`
	ByMonth      map[string]int                  `json:"by_month"`
}

// Statistics reduces the whole collection into per-status, per-field,
// per-applicator and per-month counts. Nothing is persisted.
func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	records, err := s.List(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		Total:        len(records),
		ByStatus:     make(map[models.FumigationStatus]int, len(models.FumigationStatuses)),
		ByField:      make(map[string]int),
		ByApplicator: make(map[string]int),
		ByMonth:      make(map[string]int),
	}
	for _, status := range models.FumigationStatuses {
		stats.ByStatus[status] = 0
	}

	for _, record := range records {
		status := record.Status
		if status == "" {
			status = models.FumigationScheduled
		}
		stats.ByStatus[status]++

		if record.FieldID != "" {
			stats.ByField[record.FieldID]++
		}
		if record.ApplicatorID != "" {
			stats.ByApplicator[record.ApplicatorID]++
		}
		if !record.Date.IsZero() {
			stats.ByMonth[record.Date.Format("2006-01")]++
		}
	}

	return stats, nil
}
