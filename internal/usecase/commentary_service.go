package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sportzhub/livescore/internal/domain/commentary"
	"github.com/sportzhub/livescore/internal/domain/match"
	"github.com/sportzhub/livescore/internal/platform/logging"
)

const (
	commentarySource    = "real_data_sync"
	batchMinEvents      = 3
	batchExtraEvents    = 5
	batchWorkerPoolSize = 4
)

var commentaryTemplates = []string{
	"{{actor}} hits a boundary! Excellent shot finding the gap.",
	"WICKET! {{actor}} is out. Big breakthrough for the bowling side.",
	"{{actor}} plays a defensive shot, well judged.",
	"FOUR! {{actor}} finds the rope with a beautiful cover drive.",
	"SIX! {{actor}} sends it over the ropes for maximum.",
	"Excellent over from {{actor}}, just 3 runs from it.",
	"{{actor}} is batting with confidence, building a solid partnership.",
}

// CommentaryService synthesizes narrative events for live score changes.
// Minute, sequence and actor come from an injectable random source so tests
// can pin them with a fixed seed; none of them track the real match clock.
type CommentaryService struct {
	repo       commentary.Repository
	dispatcher Dispatcher
	logger     *logging.Logger
	now        func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewCommentaryService(
	repo commentary.Repository,
	dispatcher Dispatcher,
	rng *rand.Rand,
	logger *logging.Logger,
) *CommentaryService {
	if dispatcher == nil {
		dispatcher = NewNoopDispatcher()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &CommentaryService{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
		rng:        rng,
	}
}

// Synthesize builds, persists and broadcasts one score-update event for a
// live match. The caller has already decided the score changed.
func (s *CommentaryService) Synthesize(ctx context.Context, m match.Match, homeScore, awayScore int) (commentary.Event, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CommentaryService.Synthesize")
	defer span.End()

	if s.repo == nil {
		return commentary.Event{}, fmt.Errorf("%w: commentary repository is not configured", ErrDependencyUnavailable)
	}
	if m.ID <= 0 {
		return commentary.Event{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	actor := s.pickTeam(m)
	message := s.fillTemplate(s.pickTemplate(), actor) +
		fmt.Sprintf(" Score is now %d-%d.", homeScore, awayScore)

	event := commentary.Event{
		MatchID:   m.ID,
		Minute:    s.intn(90) + 1,
		Sequence:  s.intn(100),
		Period:    PeriodForSport(m.Sport),
		EventType: commentary.EventTypeScoreUpdate,
		Actor:     actor,
		Team:      actor,
		Message:   message,
		Metadata:  map[string]any{"source": commentarySource},
		Tags:      []string{"live", "real"},
		CreatedAt: s.now(),
	}

	persisted, err := s.repo.Insert(ctx, event)
	if err != nil {
		return commentary.Event{}, fmt.Errorf("insert commentary match_id=%d: %w", m.ID, err)
	}

	s.dispatcher.CommentaryAdded(m.ID, persisted)
	return persisted, nil
}

// GenerateForLiveMatches backfills 3-7 events per live match, staggering
// createdAt backward one minute per event so stored ordering reads like a
// timeline. This path persists only; nothing is broadcast.
func (s *CommentaryService) GenerateForLiveMatches(ctx context.Context, matches []match.Match) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CommentaryService.GenerateForLiveMatches")
	defer span.End()

	if s.repo == nil {
		return 0, fmt.Errorf("%w: commentary repository is not configured", ErrDependencyUnavailable)
	}

	live := make([]match.Match, 0, len(matches))
	for _, m := range matches {
		if m.Status == match.StatusLive && m.ID > 0 {
			live = append(live, m)
		}
	}
	if len(live) == 0 {
		return 0, nil
	}

	poolSize := batchWorkerPoolSize
	if len(live) < poolSize {
		poolSize = len(live)
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return 0, fmt.Errorf("create commentary worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg      sync.WaitGroup
		written atomic.Int64
	)
	for _, m := range live {
		m := m
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			written.Add(int64(s.backfillMatch(ctx, m)))
		})
		if submitErr != nil {
			wg.Done()
			s.logger.ErrorContext(ctx, "submit commentary task failed",
				"match_id", m.ID,
				"error", submitErr,
			)
		}
	}
	wg.Wait()

	s.logger.InfoContext(ctx, "generated commentary for live matches",
		"matches", len(live),
		"events", written.Load(),
	)
	return int(written.Load()), nil
}

func (s *CommentaryService) backfillMatch(ctx context.Context, m match.Match) int {
	count := batchMinEvents + s.intn(batchExtraEvents)
	now := s.now()

	written := 0
	for i := 0; i < count; i++ {
		actor := s.pickTeam(m)
		event := commentary.Event{
			MatchID:   m.ID,
			Minute:    s.intn(90) + 1,
			Sequence:  i + 1,
			Period:    PeriodForSport(m.Sport),
			EventType: commentary.EventTypeScoreUpdate,
			Actor:     actor,
			Team:      actor,
			Message:   s.fillTemplate(s.pickTemplate(), actor),
			Metadata:  map[string]any{"source": commentarySource},
			Tags:      []string{"live", "real"},
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		}

		if _, err := s.repo.Insert(ctx, event); err != nil {
			s.logger.ErrorContext(ctx, "insert backfill commentary failed",
				"match_id", m.ID,
				"error", err,
			)
			continue
		}
		written++
	}

	return written
}

func (s *CommentaryService) pickTemplate() string {
	return commentaryTemplates[s.intn(len(commentaryTemplates))]
}

func (s *CommentaryService) pickTeam(m match.Match) string {
	if s.intn(2) == 0 {
		return m.HomeTeam
	}
	return m.AwayTeam
}

func (s *CommentaryService) fillTemplate(template, actor string) string {
	return strings.ReplaceAll(template, "{{actor}}", actor)
}

func (s *CommentaryService) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// PeriodForSport maps a sport to its phase label used on commentary events.
func PeriodForSport(sport string) string {
	switch sport {
	case match.SportCricket:
		return "innings"
	case match.SportFootball:
		return "half"
	case match.SportBasketball:
		return "quarter"
	case match.SportTennis:
		return "set"
	default:
		return "period"
	}
}
