package usecase

import "github.com/naka-gawa/top-issues/internal/domain"

// ItemsToUnlabel returns every previously labeled item whose number does
// not appear in the new selection, in the order of previouslyLabeled.
// The difference is taken by item number, not by struct equality: two
// fetches of the same item may disagree on labels or reaction counts.
func ItemsToUnlabel(previouslyLabeled []domain.Item, newlySelected []domain.ScoredItem) []domain.Item {
	selected := make(map[int]struct{}, len(newlySelected))
	for _, item := range newlySelected {
		selected[item.Number] = struct{}{}
	}

	unlabel := make([]domain.Item, 0, len(previouslyLabeled))
	for _, item := range previouslyLabeled {
		if _, ok := selected[item.Number]; !ok {
			unlabel = append(unlabel, item)
		}
	}
	return unlabel
}
