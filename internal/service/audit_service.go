package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Polyratings/polyratings-api/internal/dto"
	"github.com/Polyratings/polyratings-api/internal/models"
	"github.com/Polyratings/polyratings-api/internal/observability"
	"github.com/Polyratings/polyratings-api/internal/repository"
	"github.com/Polyratings/polyratings-api/internal/store"
)

// AuditState names the processor's lifecycle states.
type AuditState string

const (
	AuditStateIdle     AuditState = "idle"
	AuditStateRunning  AuditState = "running"
	AuditStatePaused   AuditState = "paused"
	AuditStateComplete AuditState = "complete"
	AuditStateFailed   AuditState = "failed"
)

// ErrAuditRunning rejects a start request while a scan is in flight.
var ErrAuditRunning = errors.New("service: an audit scan is already running")

// ErrAuditNotPaused rejects a resume request when there is nothing to resume.
var ErrAuditNotPaused = errors.New("service: no paused audit scan to resume")

// PageFindings is what a detector produced for one page of professors.
type PageFindings struct {
	Reports         []models.RatingReport
	DuplicatesFound int
	RatingsRescored int
	RatingsFlagged  int
}

// Detector inspects one page of full professor aggregates and emits report
// records. Detector instances are per logical run and may carry run-local
// state (the duplicate detector's dedup set); that state is never persisted,
// so a separate run can re-report the same rating.
type Detector interface {
	Name() string
	ProcessPage(ctx context.Context, professors []models.Professor) (PageFindings, error)
}

// ProgressFunc receives each page result as the scan advances.
type ProgressFunc func(dto.AuditPageResult)

// AuditProcessor runs resumable, cursor-paginated scans over the professor
// corpus. The cursor is a professor id marking the first unprocessed entry;
// a cursor whose id has vanished from the index falls back to the top, which
// is safe while the index only grows but will reprocess entries if
// professors are deleted mid-scan. A failed page freezes the scan without
// rolling back reports already written; resumption is manual via the last
// reported cursor.
type AuditProcessor struct {
	repo     *repository.RatingRepository
	pageSize int
	logger   zerolog.Logger

	mu             sync.Mutex
	state          AuditState
	detector       Detector
	nextCursor     string
	processedTotal int
	totalCorpus    int
	lastMessage    string
	pauseRequested bool
}

// NewAuditProcessor builds an idle processor.
func NewAuditProcessor(repo *repository.RatingRepository, pageSize int, logger zerolog.Logger) *AuditProcessor {
	if pageSize <= 0 {
		pageSize = 25
	}
	return &AuditProcessor{
		repo:     repo,
		pageSize: pageSize,
		logger:   logger.With().Str("component", "audit_processor").Logger(),
		state:    AuditStateIdle,
	}
}

// Start begins a new scan with the given detector, from the cursor if set.
// It runs pages to completion (or pause/failure) in the calling goroutine,
// invoking progress after every page.
func (p *AuditProcessor) Start(ctx context.Context, detector Detector, cursor string, progress ProgressFunc) error {
	p.mu.Lock()
	if p.state == AuditStateRunning {
		p.mu.Unlock()
		return ErrAuditRunning
	}
	p.state = AuditStateRunning
	p.detector = detector
	p.nextCursor = cursor
	p.processedTotal = 0
	p.pauseRequested = false
	p.lastMessage = ""
	p.mu.Unlock()

	return p.run(ctx, progress)
}

// Resume continues a paused scan with its stored detector, cursor and
// running totals intact.
func (p *AuditProcessor) Resume(ctx context.Context, progress ProgressFunc) error {
	p.mu.Lock()
	if p.state != AuditStatePaused || p.detector == nil {
		p.mu.Unlock()
		return ErrAuditNotPaused
	}
	p.state = AuditStateRunning
	p.pauseRequested = false
	p.mu.Unlock()

	return p.run(ctx, progress)
}

// Pause requests a cooperative stop. It is honored at the next page
// boundary, never mid-page. Returns false when no scan is running.
func (p *AuditProcessor) Pause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != AuditStateRunning {
		return false
	}
	p.pauseRequested = true
	return true
}

// Status snapshots the processor between requests.
func (p *AuditProcessor) Status() dto.AuditStatusResponse {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := dto.AuditStatusResponse{
		State:           string(p.state),
		ProcessedTotal:  p.processedTotal,
		TotalProfessors: p.totalCorpus,
		Message:         p.lastMessage,
	}
	if p.detector != nil {
		status.Detector = p.detector.Name()
	}
	if p.nextCursor != "" {
		cursor := p.nextCursor
		status.NextCursor = &cursor
	}
	return status
}

func (p *AuditProcessor) run(ctx context.Context, progress ProgressFunc) error {
	index, err := p.repo.GetAllProfessors(ctx)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return p.fail(fmt.Errorf("fetch professor index: %w", err))
	}

	p.mu.Lock()
	detector := p.detector
	cursor := p.nextCursor
	p.totalCorpus = len(index)
	p.mu.Unlock()

	total := len(index)
	pos := resolveCursor(index, cursor)

	for {
		p.mu.Lock()
		if p.pauseRequested {
			p.state = AuditStatePaused
			p.pauseRequested = false
			if pos < total {
				p.nextCursor = index[pos].ID
			}
			p.lastMessage = fmt.Sprintf("paused after %d of %d professors", p.processedTotal, total)
			p.mu.Unlock()
			p.logger.Info().Int("processed", pos).Msg("audit scan paused")
			return nil
		}
		p.mu.Unlock()

		end := min(pos+p.pageSize, total)
		page := index[pos:end]

		ids := make([]string, len(page))
		for i, entry := range page {
			ids[i] = entry.ID
		}

		professors, err := p.repo.GetProfessors(ctx, ids)
		if err != nil {
			return p.fail(fmt.Errorf("fetch audit page: %w", err))
		}

		findings, err := detector.ProcessPage(ctx, professors)
		if err != nil {
			return p.fail(fmt.Errorf("detector %s: %w", detector.Name(), err))
		}

		for _, report := range findings.Reports {
			if err := p.repo.AccumulateReport(ctx, report); err != nil {
				return p.fail(fmt.Errorf("persist audit report: %w", err))
			}
		}

		observability.AuditPages().WithLabelValues(detector.Name()).Inc()
		observability.AuditReports().WithLabelValues(detector.Name()).Add(float64(len(findings.Reports)))

		hasMore := end < total
		result := dto.AuditPageResult{
			ProcessedCount:  len(page),
			TotalProfessors: total,
			HasMore:         hasMore,
			Message: fmt.Sprintf("%s: processed %d professors, %d reports emitted",
				detector.Name(), len(page), len(findings.Reports)),
		}
		switch detector.Name() {
		case DetectorDuplicates:
			result.DuplicatesFound = &findings.DuplicatesFound
		case DetectorRescan:
			result.RatingsRescored = &findings.RatingsRescored
			result.RatingsFlagged = &findings.RatingsFlagged
		}

		p.mu.Lock()
		p.processedTotal += len(page)
		p.lastMessage = result.Message
		if hasMore {
			next := index[end].ID
			p.nextCursor = next
			result.NextCursor = &next
		} else {
			p.nextCursor = ""
			p.state = AuditStateComplete
		}
		p.mu.Unlock()

		if progress != nil {
			progress(result)
		}

		if !hasMore {
			p.logger.Info().Int("total", total).Str("detector", detector.Name()).Msg("audit scan complete")
			return nil
		}
		pos = end
	}
}

func (p *AuditProcessor) fail(err error) error {
	p.mu.Lock()
	p.state = AuditStateFailed
	p.lastMessage = err.Error()
	p.mu.Unlock()
	p.logger.Error().Err(err).Msg("audit scan failed")
	return err
}

// resolveCursor maps a cursor id to its index position. An empty or
// vanished id resolves to the top of the index.
func resolveCursor(index []models.TruncatedProfessor, cursor string) int {
	if cursor == "" {
		return 0
	}
	for i, entry := range index {
		if entry.ID == cursor {
			return i
		}
	}
	return 0
}
