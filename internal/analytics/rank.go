package analytics

import (
	"slices"
	"strings"

	"github.com/pageturnapp/pageturn-server/internal/domain"
)

// Rank filters and orders per-user period metrics into leaderboard rows.
//
// Users whose sort metric is zero are dropped - except the requester, who
// always sees their own row even at zero. Sorting is descending on the
// metric with ties broken by ascending owner ID, so the order is fully
// deterministic regardless of input order. Ranks are positional 1..N over
// the filtered set; tied metrics still get distinct ranks.
func Rank(metrics []domain.PeriodMetric, sort domain.LeaderboardSort, requesterID string) []domain.LeaderboardEntry {
	kept := make([]domain.PeriodMetric, 0, len(metrics))
	for _, m := range metrics {
		if m.OwnerID == requesterID || sortValue(m, sort) > 0 {
			kept = append(kept, m)
		}
	}

	slices.SortFunc(kept, func(a, b domain.PeriodMetric) int {
		av, bv := sortValue(a, sort), sortValue(b, sort)
		switch {
		case bv > av:
			return 1
		case bv < av:
			return -1
		default:
			return strings.Compare(a.OwnerID, b.OwnerID)
		}
	})

	entries := make([]domain.LeaderboardEntry, len(kept))
	for i, m := range kept {
		entries[i] = domain.LeaderboardEntry{
			PeriodMetric: m,
			Rank:         i + 1,
			IsRequester:  m.OwnerID == requesterID,
		}
	}
	return entries
}

func sortValue(m domain.PeriodMetric, sort domain.LeaderboardSort) float64 {
	switch sort {
	case domain.LeaderboardSortSpeed:
		return m.AvgPerActiveDay
	case domain.LeaderboardSortStreak:
		return float64(m.CurrentStreak)
	default:
		return float64(m.TotalPages)
	}
}
