package memory

import (
	"context"
	"time"

	"github.com/sportzhub/livescore/internal/domain/match"
)

// SeedMatches returns a small scoreboard used when the service runs without
// a database. The first sync cycle reconciles real source data on top of it.
func SeedMatches(now time.Time) []match.Match {
	return []match.Match{
		{
			Sport:     match.SportFootball,
			MatchType: "regular",
			League:    "Premier League",
			HomeTeam:  "Arsenal",
			AwayTeam:  "Liverpool",
			Status:    match.StatusScheduled,
			StartTime: now.Add(6 * time.Hour),
			Venue:     "Emirates Stadium",
			Source:    "seed",
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			Sport:     match.SportBasketball,
			MatchType: "regular",
			League:    "NBA",
			HomeTeam:  "Lakers",
			AwayTeam:  "Celtics",
			Status:    match.StatusFinished,
			HomeScore: 112,
			AwayScore: 109,
			StartTime: now.Add(-8 * time.Hour),
			EndTime:   now.Add(-5 * time.Hour),
			Venue:     "Crypto.com Arena",
			Source:    "seed",
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// Seed loads the demo matches into a fresh repository.
func Seed(repo *MatchRepository, now time.Time) error {
	for _, m := range SeedMatches(now) {
		if _, err := repo.Insert(context.Background(), m); err != nil {
			return err
		}
	}
	return nil
}
