package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Polyratings/polyratings-api/internal/models"
	"github.com/Polyratings/polyratings-api/internal/store"
)

var (
	// ErrProfessorNotFound reports a missing professor aggregate.
	ErrProfessorNotFound = errors.New("repository: professor not found")
	// ErrPendingNotFound reports a missing pending rating.
	ErrPendingNotFound = errors.New("repository: pending rating not found")
	// ErrReportNotFound reports a missing rating report.
	ErrReportNotFound = errors.New("repository: rating report not found")
	// ErrTooManyKeys rejects bulk fetches above MaxBulkKeys before any
	// fetch is attempted.
	ErrTooManyKeys = errors.New("repository: bulk request exceeds maximum batch size")
)

// CollisionError reports an attempt to overwrite an existing professor id
// with a record carrying a different name. The write is aborted; ids are
// never reused across distinct identities.
type CollisionError struct {
	ID       string
	Existing string
	Incoming string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("repository: professor id %s already belongs to %q, refusing write for %q",
		e.ID, e.Existing, e.Incoming)
}

// MaxBulkKeys caps one bulk value fetch.
const MaxBulkKeys = 100

// Submission log entries expire via store retention, not application logic.
const ratingLogTTL = 21 * 24 * time.Hour

// allProfessorsID keys the single index record holding every truncated
// professor.
const allProfessorsID = "all"

// RatingRepository is the typed persistence layer for professors, pending
// ratings and reports on top of the schema-validated store.
type RatingRepository struct {
	store  *store.Typed
	logger zerolog.Logger
}

// NewRatingRepository builds the repository.
func NewRatingRepository(typed *store.Typed, logger zerolog.Logger) *RatingRepository {
	return &RatingRepository{
		store:  typed,
		logger: logger.With().Str("component", "rating_repository").Logger(),
	}
}

// GetProfessor fetches one professor aggregate. Records written before tag
// tracking existed are normalized to carry an empty tag map.
func (r *RatingRepository) GetProfessor(ctx context.Context, id string) (*models.Professor, error) {
	var professor models.Professor
	err := r.store.Get(ctx, store.Key(store.NamespaceProfessors, id), store.SchemaProfessor, &professor)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrProfessorNotFound
	}
	if err != nil {
		return nil, err
	}

	if professor.Tags == nil {
		professor.Tags = make(map[string]int)
	}
	if professor.Reviews == nil {
		professor.Reviews = make(map[string][]models.Rating)
	}

	return &professor, nil
}

// PutProfessor overwrites the professor aggregate and refreshes its entry in
// the all-professors index. Unless skipCollisionCheck is set, writing over an
// existing id whose name differs fails with a CollisionError.
func (r *RatingRepository) PutProfessor(ctx context.Context, professor *models.Professor, skipCollisionCheck bool) error {
	if !skipCollisionCheck {
		existing, err := r.GetProfessor(ctx, professor.ID)
		if err != nil && !errors.Is(err, ErrProfessorNotFound) {
			return err
		}
		if existing != nil && existing.Name() != professor.Name() {
			return &CollisionError{ID: professor.ID, Existing: existing.Name(), Incoming: professor.Name()}
		}
	}

	// Nil slices and maps marshal to null, which the record schema rejects.
	if professor.Courses == nil {
		professor.Courses = []string{}
	}
	if professor.Reviews == nil {
		professor.Reviews = make(map[string][]models.Rating)
	}

	if err := r.store.Put(ctx, store.Key(store.NamespaceProfessors, professor.ID), store.SchemaProfessor, professor, 0); err != nil {
		return err
	}

	return r.refreshIndexEntry(ctx, professor.Truncate())
}

// GetAllProfessors returns the contents of the all-professors index record.
func (r *RatingRepository) GetAllProfessors(ctx context.Context) ([]models.TruncatedProfessor, error) {
	var index []models.TruncatedProfessor
	err := r.store.Get(ctx, store.Key(store.NamespaceProfessors, allProfessorsID), store.SchemaProfessorIndex, &index)
	if err != nil {
		return nil, err
	}
	return index, nil
}

// PutAllProfessors overwrites the all-professors index record.
func (r *RatingRepository) PutAllProfessors(ctx context.Context, index []models.TruncatedProfessor) error {
	if index == nil {
		index = []models.TruncatedProfessor{}
	}
	return r.store.Put(ctx, store.Key(store.NamespaceProfessors, allProfessorsID), store.SchemaProfessorIndex, index, 0)
}

// RemoveProfessor deletes the aggregate and drops it from the index.
func (r *RatingRepository) RemoveProfessor(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, store.Key(store.NamespaceProfessors, id)); err != nil {
		return err
	}

	index, err := r.GetAllProfessors(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	filtered := index[:0]
	for _, entry := range index {
		if entry.ID != id {
			filtered = append(filtered, entry)
		}
	}
	return r.PutAllProfessors(ctx, filtered)
}

func (r *RatingRepository) refreshIndexEntry(ctx context.Context, truncated models.TruncatedProfessor) error {
	index, err := r.GetAllProfessors(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	replaced := false
	for i, entry := range index {
		if entry.ID == truncated.ID {
			index[i] = truncated
			replaced = true
			break
		}
	}
	if !replaced {
		index = append(index, truncated)
	}

	return r.PutAllProfessors(ctx, index)
}

// GetPending fetches one pending rating from the professor queue.
func (r *RatingRepository) GetPending(ctx context.Context, id string) (*models.PendingRating, error) {
	var pending models.PendingRating
	err := r.store.Get(ctx, store.Key(store.NamespaceQueue, id), store.SchemaPendingRating, &pending)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPendingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &pending, nil
}

// PutPending writes a pending rating to the professor queue and mirrors it
// into the append-only rating log. Log entries carry the fixed retention
// expiry and are otherwise never deleted.
func (r *RatingRepository) PutPending(ctx context.Context, pending *models.PendingRating) error {
	if err := r.store.Put(ctx, store.Key(store.NamespaceQueue, pending.ID), store.SchemaPendingRating, pending, ratingLogTTL); err != nil {
		return err
	}
	return r.store.Put(ctx, store.Key(store.NamespaceRatingLog, pending.ID), store.SchemaPendingRating, pending, ratingLogTTL)
}

// RemovePending deletes a queue entry. The rating-log mirror is left for
// retention to expire.
func (r *RatingRepository) RemovePending(ctx context.Context, id string) error {
	return r.store.Delete(ctx, store.Key(store.NamespaceQueue, id))
}

// AllPending returns every entry currently in the professor queue.
func (r *RatingRepository) AllPending(ctx context.Context) ([]models.PendingRating, error) {
	ids, err := r.ListKeys(ctx, store.NamespaceQueue)
	if err != nil {
		return nil, err
	}

	pending := make([]models.PendingRating, 0, len(ids))
	for start := 0; start < len(ids); start += MaxBulkKeys {
		end := min(start+MaxBulkKeys, len(ids))
		values, err := r.GetValues(ctx, store.NamespaceQueue, ids[start:end])
		if err != nil {
			return nil, err
		}
		for _, value := range values {
			var entry models.PendingRating
			if err := json.Unmarshal(value, &entry); err != nil {
				return nil, fmt.Errorf("decode pending rating: %w", err)
			}
			pending = append(pending, entry)
		}
	}

	return pending, nil
}

// GetReport fetches the accumulated report record for a rating id.
func (r *RatingRepository) GetReport(ctx context.Context, ratingID string) (*models.RatingReport, error) {
	var report models.RatingReport
	err := r.store.Get(ctx, store.Key(store.NamespaceReports, ratingID), store.SchemaRatingReport, &report)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// AccumulateReport appends the incoming report entries onto any existing
// record for the same rating id, creating the record on first report.
func (r *RatingRepository) AccumulateReport(ctx context.Context, report models.RatingReport) error {
	existing, err := r.GetReport(ctx, report.RatingID)
	if err != nil && !errors.Is(err, ErrReportNotFound) {
		return err
	}
	if existing != nil {
		existing.Reports = append(existing.Reports, report.Reports...)
		report = *existing
	}

	return r.store.Put(ctx, store.Key(store.NamespaceReports, report.RatingID), store.SchemaRatingReport, report, 0)
}

// RemoveReport deletes the report record once an administrator has acted on
// or dismissed it.
func (r *RatingRepository) RemoveReport(ctx context.Context, ratingID string) error {
	return r.store.Delete(ctx, store.Key(store.NamespaceReports, ratingID))
}

// ListKeys walks the namespace's cursor pagination to completion and returns
// the ids of every key in it.
func (r *RatingRepository) ListKeys(ctx context.Context, ns store.Namespace) ([]string, error) {
	var ids []string
	prefix := string(ns) + ":"
	cursor := uint64(0)
	for {
		keys, next, err := r.store.List(ctx, ns, cursor)
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			ids = append(ids, key[len(prefix):])
		}
		if next == 0 {
			return ids, nil
		}
		cursor = next
	}
}

// GetValues point-fetches the values for the given ids concurrently, one
// fetch per id. Requests above MaxBulkKeys are rejected before any fetch;
// any single failure aborts the whole call.
func (r *RatingRepository) GetValues(ctx context.Context, ns store.Namespace, ids []string) ([]json.RawMessage, error) {
	if len(ids) > MaxBulkKeys {
		return nil, fmt.Errorf("%w: %d keys, maximum %d", ErrTooManyKeys, len(ids), MaxBulkKeys)
	}

	schema, err := schemaForNamespace(ns)
	if err != nil {
		return nil, err
	}

	values := make([]json.RawMessage, len(ids))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		group.Go(func() error {
			raw, err := r.store.GetRaw(groupCtx, store.Key(ns, id), schema)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", store.Key(ns, id), err)
			}
			values[i] = raw
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	return values, nil
}

// GetProfessors bulk-fetches full professor aggregates by id, preserving
// input order.
func (r *RatingRepository) GetProfessors(ctx context.Context, ids []string) ([]models.Professor, error) {
	values, err := r.GetValues(ctx, store.NamespaceProfessors, ids)
	if err != nil {
		return nil, err
	}

	professors := make([]models.Professor, len(values))
	for i, value := range values {
		if err := json.Unmarshal(value, &professors[i]); err != nil {
			return nil, fmt.Errorf("decode professor %s: %w", ids[i], err)
		}
		if professors[i].Tags == nil {
			professors[i].Tags = make(map[string]int)
		}
	}

	return professors, nil
}

func schemaForNamespace(ns store.Namespace) (store.Schema, error) {
	switch ns {
	case store.NamespaceProfessors:
		return store.SchemaProfessor, nil
	case store.NamespaceQueue, store.NamespaceRatingLog:
		return store.SchemaPendingRating, nil
	case store.NamespaceReports:
		return store.SchemaRatingReport, nil
	case store.NamespaceUsers:
		return store.SchemaUser, nil
	default:
		return "", fmt.Errorf("repository: unknown namespace %q", ns)
	}
}
