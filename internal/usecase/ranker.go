// Package usecase contains the business logic of the application.
package usecase

import (
	"sort"

	"github.com/naka-gawa/top-issues/internal/domain"
)

// Rank scores every item and returns the top candidates in descending
// score order, at most size of them. Items carrying excludeLabel (the
// dashboard's own label) or listed in excludeNumbers never rank. Only
// items with net positive community interest are eligible: in subtract
// mode the score itself must be positive, otherwise at least one positive
// reaction is required.
//
// The sort is stable: items with equal scores keep their relative input
// order, which is fetch order (newest created first). Identical input
// therefore always produces identical output.
func Rank(items []domain.Item, size int, subtractNegative bool, excludeLabel string, excludeNumbers []int) []domain.ScoredItem {
	scored := make([]domain.ScoredItem, 0, len(items))
	if size <= 0 {
		return scored
	}

	excluded := make(map[int]struct{}, len(excludeNumbers))
	for _, n := range excludeNumbers {
		excluded[n] = struct{}{}
	}

	for _, item := range items {
		if excludeLabel != "" && item.HasLabel(excludeLabel) {
			continue
		}
		if _, ok := excluded[item.Number]; ok {
			continue
		}
		score := item.PositiveReactions
		if subtractNegative {
			score -= item.NegativeReactions
			if score <= 0 {
				continue
			}
		} else if item.PositiveReactions <= 0 {
			continue
		}
		scored = append(scored, domain.ScoredItem{Item: item, Score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > size {
		scored = scored[:size]
	}
	return scored
}
