package usecase

import (
	"testing"

	"github.com/naka-gawa/top-issues/internal/domain"
	"github.com/stretchr/testify/assert"
)

// fiveItems is the shared fixture: numbers 1..5 with
// (positive, negative) = (2,0), (3,5), (5,1), (0,0), (1,0).
func fiveItems() []domain.Item {
	return []domain.Item{
		{Number: 1, Title: "one", PositiveReactions: 2, NegativeReactions: 0},
		{Number: 2, Title: "two", PositiveReactions: 3, NegativeReactions: 5},
		{Number: 3, Title: "three", PositiveReactions: 5, NegativeReactions: 1},
		{Number: 4, Title: "four", PositiveReactions: 0, NegativeReactions: 0},
		{Number: 5, Title: "five", PositiveReactions: 1, NegativeReactions: 0},
	}
}

func rankedNumbers(items []domain.ScoredItem) []int {
	numbers := make([]int, 0, len(items))
	for _, item := range items {
		numbers = append(numbers, item.Number)
	}
	return numbers
}

func TestRank(t *testing.T) {
	testCases := []struct {
		name             string
		items            []domain.Item
		size             int
		subtractNegative bool
		excludeLabel     string
		excludeNumbers   []int
		expectedNumbers  []int
		expectedScores   []int
	}{
		{
			name:             "subtract mode excludes net-negative and zero scores",
			items:            fiveItems(),
			size:             10,
			subtractNegative: true,
			expectedNumbers:  []int{3, 1, 5},
			expectedScores:   []int{4, 2, 1},
		},
		{
			name:             "non-subtract mode ranks by raw positive count",
			items:            fiveItems(),
			size:             10,
			subtractNegative: false,
			expectedNumbers:  []int{3, 2, 1, 5},
			expectedScores:   []int{5, 3, 2, 1},
		},
		{
			name:             "size truncates the eligible set",
			items:            fiveItems(),
			size:             2,
			subtractNegative: true,
			expectedNumbers:  []int{3, 1},
			expectedScores:   []int{4, 2},
		},
		{
			name:             "size zero yields an empty result",
			items:            fiveItems(),
			size:             0,
			subtractNegative: true,
			expectedNumbers:  []int{},
			expectedScores:   []int{},
		},
		{
			name:             "negative size yields an empty result",
			items:            fiveItems(),
			size:             -3,
			subtractNegative: true,
			expectedNumbers:  []int{},
			expectedScores:   []int{},
		},
		{
			name: "exclude label removes the dashboard issue before ranking",
			items: []domain.Item{
				{Number: 1, PositiveReactions: 2},
				{Number: 99, PositiveReactions: 50, Labels: []string{"top-issues-dashboard"}},
			},
			size:             10,
			subtractNegative: true,
			excludeLabel:     "top-issues-dashboard",
			expectedNumbers:  []int{1},
			expectedScores:   []int{2},
		},
		{
			name:             "exclude numbers removes manually filtered items",
			items:            fiveItems(),
			size:             10,
			subtractNegative: true,
			excludeNumbers:   []int{3, 5},
			expectedNumbers:  []int{1},
			expectedScores:   []int{2},
		},
		{
			name: "equal scores keep fetch order",
			items: []domain.Item{
				{Number: 10, PositiveReactions: 1},
				{Number: 11, PositiveReactions: 1},
				{Number: 12, PositiveReactions: 1},
			},
			size:             10,
			subtractNegative: true,
			expectedNumbers:  []int{10, 11, 12},
			expectedScores:   []int{1, 1, 1},
		},
		{
			name:             "empty input yields empty output",
			items:            []domain.Item{},
			size:             10,
			subtractNegative: true,
			expectedNumbers:  []int{},
			expectedScores:   []int{},
		},
		{
			name: "all items ineligible yields empty output",
			items: []domain.Item{
				{Number: 1, PositiveReactions: 0, NegativeReactions: 3},
				{Number: 2, PositiveReactions: 2, NegativeReactions: 2},
			},
			size:             10,
			subtractNegative: true,
			expectedNumbers:  []int{},
			expectedScores:   []int{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ranked := Rank(tc.items, tc.size, tc.subtractNegative, tc.excludeLabel, tc.excludeNumbers)

			assert.Equal(t, tc.expectedNumbers, rankedNumbers(ranked))
			scores := make([]int, 0, len(ranked))
			for _, item := range ranked {
				scores = append(scores, item.Score)
			}
			assert.Equal(t, tc.expectedScores, scores)
			assert.LessOrEqual(t, len(ranked), max(tc.size, 0))

			// The eligibility floor is strict in both modes.
			for _, item := range ranked {
				if tc.subtractNegative {
					assert.Positive(t, item.Score)
				} else {
					assert.Positive(t, item.PositiveReactions)
				}
			}
		})
	}
}

// TestRank_Idempotence re-ranks the output of a ranking and expects the
// identical ordered result.
func TestRank_Idempotence(t *testing.T) {
	first := Rank(fiveItems(), 10, true, "", nil)

	rerankInput := make([]domain.Item, 0, len(first))
	for _, item := range first {
		rerankInput = append(rerankInput, item.Item)
	}
	second := Rank(rerankInput, 10, true, "", nil)

	assert.Equal(t, first, second)
}
