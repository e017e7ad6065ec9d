package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sportzhub/livescore/internal/domain/commentary"
	"github.com/sportzhub/livescore/internal/domain/match"
	"github.com/sportzhub/livescore/internal/platform/cache"
	"github.com/sportzhub/livescore/internal/platform/logging"
	"github.com/sportzhub/livescore/internal/usecase"
)

const matchCachePrefix = "matches:"

type Handler struct {
	matches       match.Repository
	commentary    commentary.Repository
	syncService   *usecase.SyncService
	commentarySvc *usecase.CommentaryService
	cache         *cache.Store
	logger        *logging.Logger
	validator     *validator.Validate
}

func NewHandler(
	matches match.Repository,
	commentaryRepo commentary.Repository,
	syncService *usecase.SyncService,
	commentarySvc *usecase.CommentaryService,
	cacheStore *cache.Store,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matches:       matches,
		commentary:    commentaryRepo,
		syncService:   syncService,
		commentarySvc: commentarySvc,
		cache:         cacheStore,
		logger:        logger,
		validator:     validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type listMatchesQuery struct {
	Status string `validate:"omitempty,oneof=scheduled live finished"`
	Sport  string `validate:"omitempty,oneof=cricket football basketball tennis"`
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	query := listMatchesQuery{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
		Sport:  strings.TrimSpace(r.URL.Query().Get("sport")),
	}
	if err := h.validator.Struct(query); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %s", usecase.ErrInvalidInput, err))
		return
	}

	key := matchCachePrefix + "list:" + query.Status + ":" + query.Sport
	value, err := h.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := h.matches.List(ctx)
		if err != nil {
			return nil, err
		}
		filtered := make([]match.Match, 0, len(items))
		for _, m := range items {
			if query.Status != "" && m.Status != query.Status {
				continue
			}
			if query.Sport != "" && m.Sport != query.Sport {
				continue
			}
			filtered = append(filtered, m)
		}
		return toMatchDTOs(filtered), nil
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, value)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	id, err := parseMatchID(r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	m, err := h.matches.GetByID(ctx, id)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toMatchDTO(m))
}

func (h *Handler) ListCommentaryByMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCommentaryByMatch")
	defer span.End()

	id, err := parseMatchID(r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if _, err := h.matches.GetByID(ctx, id); err != nil {
		writeError(ctx, w, err)
		return
	}

	events, err := h.commentary.ListByMatch(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "list commentary failed", "match_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toCommentaryDTOs(events))
}

func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerSync")
	defer span.End()

	result, err := h.syncService.SyncOnce(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "manual sync failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.cache.DeletePrefix(ctx, matchCachePrefix)

	writeSuccess(ctx, w, http.StatusOK, syncResultDTO{
		Created: toMatchDTOs(result.Created),
		Updated: toMatchDTOs(result.Updated),
	})
}

func (h *Handler) BackfillCommentary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.BackfillCommentary")
	defer span.End()

	matches, err := h.matches.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list matches for backfill failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	live := 0
	for _, m := range matches {
		if m.Status == match.StatusLive {
			live++
		}
	}

	written, err := h.commentarySvc.GenerateForLiveMatches(ctx, matches)
	if err != nil {
		h.logger.ErrorContext(ctx, "commentary backfill failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, backfillResultDTO{
		LiveMatches: live,
		Events:      written,
	})
}

func parseMatchID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: match id must be a positive integer", usecase.ErrInvalidInput)
	}
	return id, nil
}
