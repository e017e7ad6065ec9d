package app

import (
	"strings"
	"testing"
)

func TestFormatQueryForTrace(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  string
	}{
		{name: "empty", query: "   ", want: ""},
		{
			name:  "collapses whitespace",
			query: "SELECT *\n\tFROM matches\n\tWHERE status = $1",
			want:  "SELECT * FROM matches WHERE status = $1",
		},
		{name: "short passes through", query: "SELECT 1", want: "SELECT 1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatQueryForTrace(tc.query); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFormatQueryForTraceTruncatesLongQueries(t *testing.T) {
	long := "SELECT " + strings.Repeat("home_score, ", 200) + "away_score FROM matches"

	got := formatQueryForTrace(long)
	if len(got) != maxTracedQueryLength+3 {
		t.Fatalf("got length %d, want %d", len(got), maxTracedQueryLength+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected truncated query to end with ellipsis, got %q", got[len(got)-10:])
	}
}
