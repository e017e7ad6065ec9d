package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/sportzhub/livescore/internal/domain/match"
	"github.com/sportzhub/livescore/internal/platform/logging"
	"github.com/sportzhub/livescore/internal/platform/resilience"
)

const defaultAdapterTimeout = 5 * time.Second

// SyncResult summarizes one reconcile pass.
type SyncResult struct {
	Created []match.Match `json:"created"`
	Updated []match.Match `json:"updated"`
}

// SyncService runs the fetch-reconcile-notify pipeline. Adapters fan out
// concurrently; the reconcile loop runs sequentially against the store so two
// snapshots with the same natural key in one cycle cannot race each other.
type SyncService struct {
	adapters       []SourceAdapter
	matchRepo      match.Repository
	commentary     *CommentaryService
	dispatcher     Dispatcher
	adapterTimeout time.Duration
	logger         *logging.Logger
	now            func() time.Time
	flight         resilience.SingleFlight
}

func NewSyncService(
	adapters []SourceAdapter,
	matchRepo match.Repository,
	commentarySvc *CommentaryService,
	dispatcher Dispatcher,
	adapterTimeout time.Duration,
	logger *logging.Logger,
) *SyncService {
	if dispatcher == nil {
		dispatcher = NewNoopDispatcher()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if adapterTimeout <= 0 {
		adapterTimeout = defaultAdapterTimeout
	}

	return &SyncService{
		adapters:       adapters,
		matchRepo:      matchRepo,
		commentary:     commentarySvc,
		dispatcher:     dispatcher,
		adapterTimeout: adapterTimeout,
		logger:         logger,
		now:            time.Now,
	}
}

// FetchAll invokes every adapter concurrently, each under its own deadline,
// and returns the combined snapshot list in display order: live first, then
// scheduled, then finished.
func (s *SyncService) FetchAll(ctx context.Context) []match.Snapshot {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.FetchAll")
	defer span.End()

	var (
		mu       sync.Mutex
		combined []match.Snapshot
	)

	var wg conc.WaitGroup
	for _, adapter := range s.adapters {
		adapter := adapter
		wg.Go(func() {
			fetchCtx, cancel := context.WithTimeout(ctx, s.adapterTimeout)
			defer cancel()

			snapshots := adapter.Fetch(fetchCtx)
			kept := make([]match.Snapshot, 0, len(snapshots))
			for _, snap := range snapshots {
				snap.Status = match.NormalizeStatus(snap.Status)
				if !snap.Valid() {
					s.logger.WarnContext(ctx, "dropping invalid snapshot",
						"adapter", adapter.Name(),
						"home_team", snap.HomeTeam,
						"away_team", snap.AwayTeam,
					)
					continue
				}
				kept = append(kept, snap)
			}

			mu.Lock()
			combined = append(combined, kept...)
			mu.Unlock()
		})
	}
	wg.Wait()

	match.OrderSnapshots(combined)
	return combined
}

// Reconcile upserts each snapshot against the store, keyed on the natural key
// (sport, home, away). A failing snapshot is logged and skipped; the rest of
// the batch still applies. Replaying an identical batch emits no score or
// commentary notifications.
func (s *SyncService) Reconcile(ctx context.Context, snapshots []match.Snapshot) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.Reconcile")
	defer span.End()

	if s.matchRepo == nil {
		return SyncResult{}, fmt.Errorf("%w: match repository is not configured", ErrDependencyUnavailable)
	}

	result := SyncResult{
		Created: []match.Match{},
		Updated: []match.Match{},
	}

	for _, snap := range snapshots {
		snap.Status = match.NormalizeStatus(snap.Status)
		if !snap.Valid() {
			s.logger.WarnContext(ctx, "skipping invalid snapshot",
				"home_team", snap.HomeTeam,
				"away_team", snap.AwayTeam,
			)
			continue
		}

		existing, found, err := s.matchRepo.FindByKey(ctx, snap.Key())
		if err != nil {
			s.logger.ErrorContext(ctx, "lookup match failed",
				"home_team", snap.HomeTeam,
				"away_team", snap.AwayTeam,
				"error", err,
			)
			continue
		}

		if !found {
			created, err := s.matchRepo.Insert(ctx, newMatchFromSnapshot(snap, s.now()))
			if err != nil {
				s.logger.ErrorContext(ctx, "insert match failed",
					"home_team", snap.HomeTeam,
					"away_team", snap.AwayTeam,
					"error", err,
				)
				continue
			}

			s.dispatcher.MatchCreated(created)
			result.Created = append(result.Created, created)
			s.logger.InfoContext(ctx, "match added",
				"sport", created.Sport,
				"home_team", created.HomeTeam,
				"away_team", created.AwayTeam,
				"score", fmt.Sprintf("%d-%d", created.HomeScore, created.AwayScore),
			)
			continue
		}

		scoreChanged := existing.HomeScore != snap.HomeScore || existing.AwayScore != snap.AwayScore

		// Identity and start time are immutable after creation; everything
		// else follows the freshest sighting even when scores are unchanged.
		existing.MatchType = snap.MatchType
		existing.League = snap.League
		existing.Status = snap.Status
		existing.HomeScore = snap.HomeScore
		existing.AwayScore = snap.AwayScore
		existing.EndTime = snap.EndTime
		existing.UpdatedAt = s.now()

		if err := s.matchRepo.Update(ctx, existing); err != nil {
			s.logger.ErrorContext(ctx, "update match failed",
				"home_team", snap.HomeTeam,
				"away_team", snap.AwayTeam,
				"error", err,
			)
			continue
		}

		if scoreChanged {
			s.dispatcher.ScoreUpdated(existing.ID, ScorePair{
				HomeScore: existing.HomeScore,
				AwayScore: existing.AwayScore,
			})
			s.logger.InfoContext(ctx, "score updated",
				"home_team", existing.HomeTeam,
				"away_team", existing.AwayTeam,
				"score", fmt.Sprintf("%d-%d", existing.HomeScore, existing.AwayScore),
			)

			if snap.Status == match.StatusLive && s.commentary != nil {
				if _, err := s.commentary.Synthesize(ctx, existing, existing.HomeScore, existing.AwayScore); err != nil {
					s.logger.ErrorContext(ctx, "synthesize commentary failed",
						"match_id", existing.ID,
						"error", err,
					)
				}
			}
		}

		result.Updated = append(result.Updated, existing)
	}

	return result, nil
}

// SyncOnce runs one full fetch-reconcile pass. Concurrent callers (the
// scheduler tick and the HTTP trigger) collapse into a single pass.
func (s *SyncService) SyncOnce(ctx context.Context) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.SyncOnce")
	defer span.End()

	value, err, shared := s.flight.Do("sync-once", func() (any, error) {
		snapshots := s.FetchAll(ctx)
		if len(snapshots) == 0 {
			s.logger.WarnContext(ctx, "no matches found from any source")
			return SyncResult{Created: []match.Match{}, Updated: []match.Match{}}, nil
		}
		return s.Reconcile(ctx, snapshots)
	})
	if err != nil {
		return SyncResult{}, err
	}
	if shared {
		s.logger.DebugContext(ctx, "sync pass shared with concurrent caller")
	}

	result, ok := value.(SyncResult)
	if !ok {
		return SyncResult{}, fmt.Errorf("unexpected sync result type %T", value)
	}

	s.logger.InfoContext(ctx, "sync pass finished",
		"created", len(result.Created),
		"updated", len(result.Updated),
	)
	return result, nil
}

func newMatchFromSnapshot(snap match.Snapshot, now time.Time) match.Match {
	return match.Match{
		Sport:     snap.Sport,
		MatchType: snap.MatchType,
		League:    snap.League,
		HomeTeam:  snap.HomeTeam,
		AwayTeam:  snap.AwayTeam,
		Status:    snap.Status,
		HomeScore: snap.HomeScore,
		AwayScore: snap.AwayScore,
		StartTime: snap.StartTime,
		EndTime:   snap.EndTime,
		Venue:     snap.Venue,
		Source:    snap.Source,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
