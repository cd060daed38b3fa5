package rating

import (
	"testing"

	"github.com/opencorrections/warden/internal/domain"
)

// record builds a rating with a uniform category score; OverallRating is
// recomputed the same way the API boundary does.
func record(score int) *domain.RatingRecord {
	return &domain.RatingRecord{
		Cooperation:   score,
		Discipline:    score,
		Respect:       score,
		WorkEthic:     score,
		OverallRating: Overall(score, score, score, score),
	}
}

func TestOverall(t *testing.T) {
	cases := []struct {
		coop, disc, resp, work int
		want                   float64
	}{
		{3, 4, 4, 5, 4},
		{1, 1, 1, 1, 1},
		{5, 5, 5, 5, 5},
		{1, 2, 2, 2, 1.75},
		{3, 3, 3, 4, 3.25},
	}

	for _, tc := range cases {
		got := Overall(tc.coop, tc.disc, tc.resp, tc.work)
		if got != tc.want {
			t.Errorf("Overall(%d,%d,%d,%d) = %v, want %v",
				tc.coop, tc.disc, tc.resp, tc.work, got, tc.want)
		}
	}
}

func TestEmptyWindowIsNeutral(t *testing.T) {
	summary := ComputeSummary("prisoner-001", nil)

	if summary.Trend != domain.TrendNeutral {
		t.Errorf("expected neutral trend for empty window, got %s", summary.Trend)
	}
	if summary.AverageOverall != 0 {
		t.Errorf("expected zero average, got %v", summary.AverageOverall)
	}
	if summary.CategoryAverages.Cooperation != 0 || summary.CategoryAverages.WorkEthic != 0 {
		t.Errorf("expected zero category averages, got %+v", summary.CategoryAverages)
	}
	if summary.RatingCount != 0 {
		t.Errorf("expected rating count 0, got %d", summary.RatingCount)
	}
	if summary.TrendPercentage != 0 {
		t.Errorf("expected zero trend percentage, got %v", summary.TrendPercentage)
	}
}

func TestSingleRatingIsNeutral(t *testing.T) {
	// With one rating the recent and older thirds are the same record, so
	// the diff is exactly 0.
	summary := ComputeSummary("prisoner-001", []*domain.RatingRecord{record(5)})

	if summary.Trend != domain.TrendNeutral {
		t.Errorf("expected neutral trend for single rating, got %s", summary.Trend)
	}
	if summary.AverageOverall != 5 {
		t.Errorf("expected average 5, got %v", summary.AverageOverall)
	}
	if summary.Highest != 5 || summary.Lowest != 5 {
		t.Errorf("expected highest=lowest=5, got %v/%v", summary.Highest, summary.Lowest)
	}
}

func TestTwoRatingsRegisterTrend(t *testing.T) {
	// n=2: the recent third is the newest record and the older third is
	// the oldest. A big enough gap registers a trend even here.
	improving := []*domain.RatingRecord{record(5), record(2)} // newest first
	declining := []*domain.RatingRecord{record(2), record(5)}

	if got := ComputeSummary("p", improving).Trend; got != domain.TrendImproving {
		t.Errorf("expected improving, got %s", got)
	}
	if got := ComputeSummary("p", declining).Trend; got != domain.TrendDeclining {
		t.Errorf("expected declining, got %s", got)
	}
}

func TestTrendBands(t *testing.T) {
	// Six ratings, newest first. Recent third = first 2, older third = last 2.
	cases := []struct {
		name    string
		scores  []int // newest first, uniform per record
		want    domain.Trend
		wantPct float64
	}{
		{
			name:   "clearly improving",
			scores: []int{5, 5, 3, 3, 2, 2},
			want:   domain.TrendImproving,
			// diff = 5 - 2 = 3 → 3*20 = 60.0
			wantPct: 60,
		},
		{
			name:   "clearly declining",
			scores: []int{1, 1, 3, 3, 4, 4},
			want:   domain.TrendDeclining,
			// diff = 1 - 4 = -3 → -60.0
			wantPct: -60,
		},
		{
			name:   "flat is neutral",
			scores: []int{3, 3, 3, 3, 3, 3},
			want:   domain.TrendNeutral,
			wantPct: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var ratings []*domain.RatingRecord
			for _, s := range tc.scores {
				ratings = append(ratings, record(s))
			}

			summary := ComputeSummary("prisoner-001", ratings)
			if summary.Trend != tc.want {
				t.Errorf("expected trend %s, got %s", tc.want, summary.Trend)
			}
			if summary.TrendPercentage != tc.wantPct {
				t.Errorf("expected trendPercentage %v, got %v", tc.wantPct, summary.TrendPercentage)
			}
		})
	}
}

func TestTrendBandBoundary(t *testing.T) {
	// A diff of exactly 0.3 must stay neutral; the band is strict.
	// Three ratings: recent third = [first], older third = [last].
	newest := &domain.RatingRecord{OverallRating: 3.3}
	middle := &domain.RatingRecord{OverallRating: 3.0}
	oldest := &domain.RatingRecord{OverallRating: 3.0}

	summary := ComputeSummary("p", []*domain.RatingRecord{newest, middle, oldest})
	if summary.Trend != domain.TrendNeutral {
		t.Errorf("expected neutral for diff exactly 0.3, got %s", summary.Trend)
	}

	// Just beyond the band flips to improving.
	newest.OverallRating = 3.31
	summary = ComputeSummary("p", []*domain.RatingRecord{newest, middle, oldest})
	if summary.Trend != domain.TrendImproving {
		t.Errorf("expected improving for diff 0.31, got %s", summary.Trend)
	}
}

func TestCategoryAveragesRounding(t *testing.T) {
	ratings := []*domain.RatingRecord{
		{Cooperation: 3, Discipline: 5, Respect: 4, WorkEthic: 2, OverallRating: 3.5},
		{Cooperation: 4, Discipline: 4, Respect: 3, WorkEthic: 3, OverallRating: 3.5},
		{Cooperation: 4, Discipline: 3, Respect: 3, WorkEthic: 3, OverallRating: 3.25},
	}

	summary := ComputeSummary("prisoner-001", ratings)

	// 11/3 = 3.6666... → 3.67
	if summary.CategoryAverages.Cooperation != 3.67 {
		t.Errorf("expected cooperation 3.67, got %v", summary.CategoryAverages.Cooperation)
	}
	if summary.CategoryAverages.Discipline != 4 {
		t.Errorf("expected discipline 4, got %v", summary.CategoryAverages.Discipline)
	}
	// 10/3 = 3.3333... → 3.33
	if summary.CategoryAverages.Respect != 3.33 {
		t.Errorf("expected respect 3.33, got %v", summary.CategoryAverages.Respect)
	}
	// (3.5 + 3.5 + 3.25)/3 = 3.4166... → 3.42
	if summary.AverageOverall != 3.42 {
		t.Errorf("expected overall 3.42, got %v", summary.AverageOverall)
	}
}

func TestHighestLowest(t *testing.T) {
	ratings := []*domain.RatingRecord{
		{OverallRating: 3.25},
		{OverallRating: 4.75},
		{OverallRating: 1.5},
		{OverallRating: 3.0},
	}

	summary := ComputeSummary("prisoner-001", ratings)
	if summary.Highest != 4.75 {
		t.Errorf("expected highest 4.75, got %v", summary.Highest)
	}
	if summary.Lowest != 1.5 {
		t.Errorf("expected lowest 1.5, got %v", summary.Lowest)
	}
}

func TestTrendPercentageRounding(t *testing.T) {
	// diff = 3.37 - 3.0 = 0.37 → 0.37*20 = 7.4
	newest := &domain.RatingRecord{OverallRating: 3.37}
	middle := &domain.RatingRecord{OverallRating: 3.0}
	oldest := &domain.RatingRecord{OverallRating: 3.0}

	summary := ComputeSummary("p", []*domain.RatingRecord{newest, middle, oldest})
	if summary.TrendPercentage != 7.4 {
		t.Errorf("expected trendPercentage 7.4, got %v", summary.TrendPercentage)
	}
}
