package espn

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sportzhub/livescore/internal/domain/match"
	"github.com/sportzhub/livescore/internal/platform/logging"
	"github.com/valyala/fasthttp"
)

const (
	// Scoreboard pages vary their markup by rollout, not by sport, so one
	// selector set covers every endpoint.
	scoreboardSelector = ".Scoreboard"
	teamNameSelector   = ".ScoreCell__TeamName"
	scoreSelector      = ".ScoreCell__Score"
	statusSelector     = ".ScoreCell__Time"

	// Default desktop UA; the scoreboard serves a stripped page to unknown agents.
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	defaultTimeout = 5 * time.Second
)

var (
	slashScorePattern = regexp.MustCompile(`(\d+)/(\d+)`)
	dashScorePattern  = regexp.MustCompile(`(\d+)-(\d+)`)
	digitsPattern     = regexp.MustCompile(`^\d+$`)
)

// Endpoint is one scoreboard page to scrape, tagged with the sport and
// league its matches belong to.
type Endpoint struct {
	Sport  string
	League string
	URL    string
}

type ScraperConfig struct {
	Client    *fasthttp.Client
	Timeout   time.Duration
	Logger    *logging.Logger
	Now       func() time.Time
	Endpoints []Endpoint
}

// Scraper pulls live scores from public scoreboard HTML. Like every source
// adapter it never fails the pipeline: endpoints that error or return
// unparseable markup contribute nothing and the rest still count.
type Scraper struct {
	client    *fasthttp.Client
	timeout   time.Duration
	logger    *logging.Logger
	now       func() time.Time
	endpoints []Endpoint
}

func NewScraper(cfg ScraperConfig) *Scraper {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	client := cfg.Client
	if client == nil {
		client = &fasthttp.Client{}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Scraper{
		client:    client,
		timeout:   timeout,
		logger:    logger,
		now:       now,
		endpoints: cfg.Endpoints,
	}
}

func (s *Scraper) Name() string { return "espn" }

func (s *Scraper) Fetch(ctx context.Context) []match.Snapshot {
	var combined []match.Snapshot
	for _, endpoint := range s.endpoints {
		if ctx.Err() != nil {
			s.logger.WarnContext(ctx, "scrape cancelled", "sport", endpoint.Sport)
			break
		}

		snapshots, err := s.scrapeEndpoint(endpoint)
		if err != nil {
			s.logger.WarnContext(ctx, "scrape endpoint failed",
				"sport", endpoint.Sport,
				"url", endpoint.URL,
				"error", err,
			)
			continue
		}
		combined = append(combined, snapshots...)
	}
	return combined
}

func (s *Scraper) scrapeEndpoint(endpoint Endpoint) ([]match.Snapshot, error) {
	body, err := s.download(endpoint.URL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse scoreboard html: %w", err)
	}

	now := s.now()
	var snapshots []match.Snapshot
	doc.Find(scoreboardSelector).Each(func(_ int, board *goquery.Selection) {
		snap, ok := s.parseBoard(board, endpoint, now)
		if !ok {
			return
		}
		snapshots = append(snapshots, snap)
	})
	return snapshots, nil
}

func (s *Scraper) download(url string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(browserUserAgent)
	req.Header.Set("Accept", "text/html")

	if err := s.client.DoTimeout(req, resp, s.timeout); err != nil {
		return nil, fmt.Errorf("fetch scoreboard: %w", err)
	}
	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return nil, fmt.Errorf("scoreboard status=%d", code)
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}

func (s *Scraper) parseBoard(board *goquery.Selection, endpoint Endpoint, now time.Time) (match.Snapshot, bool) {
	var teams []string
	board.Find(teamNameSelector).Each(func(_ int, sel *goquery.Selection) {
		if name := strings.TrimSpace(sel.Text()); name != "" {
			teams = append(teams, name)
		}
	})
	if len(teams) < 2 {
		return match.Snapshot{}, false
	}

	var scores []int
	board.Find(scoreSelector).Each(func(_ int, sel *goquery.Selection) {
		scores = append(scores, parseScore(sel.Text()))
	})
	homeScore, awayScore := 0, 0
	if len(scores) > 0 {
		homeScore = scores[0]
	}
	if len(scores) > 1 {
		awayScore = scores[1]
	}

	statusText := strings.TrimSpace(board.Find(statusSelector).First().Text())
	status := parseStatus(statusText)

	snap := match.Snapshot{
		Sport:     endpoint.Sport,
		MatchType: "regular",
		League:    endpoint.League,
		HomeTeam:  teams[0],
		AwayTeam:  teams[1],
		Status:    status,
		HomeScore: homeScore,
		AwayScore: awayScore,
		StartTime: now,
		Source:    "espn",
	}
	if status == match.StatusFinished {
		snap.EndTime = now
	}
	return snap, true
}

// parseScore accepts plain integers plus the "runs/wickets" and
// "score-score" shapes the scoreboard uses, keeping the leading number.
func parseScore(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	if digitsPattern.MatchString(text) {
		value, _ := strconv.Atoi(text)
		return value
	}
	if m := slashScorePattern.FindStringSubmatch(text); m != nil {
		value, _ := strconv.Atoi(m[1])
		return value
	}
	if m := dashScorePattern.FindStringSubmatch(text); m != nil {
		value, _ := strconv.Atoi(m[1])
		return value
	}
	return 0
}

func parseStatus(text string) string {
	lowered := strings.ToLower(text)
	switch {
	case strings.Contains(lowered, "live"), strings.Contains(lowered, "in progress"):
		return match.StatusLive
	case strings.Contains(lowered, "won"),
		strings.Contains(lowered, "final"),
		strings.Contains(lowered, "ft"):
		return match.StatusFinished
	default:
		return match.StatusScheduled
	}
}
