package sortutil

import (
	"sort"
	"strings"

	"github.com/skaphos/gitfleet/internal/model"
)

// LessFullName provides deterministic ordering of owner-qualified names,
// case-insensitive first so "Acme/zeta" and "acme/alpha" group together,
// with the raw name as tiebreaker.
func LessFullName(nameI, nameJ string) bool {
	lowerI, lowerJ := strings.ToLower(nameI), strings.ToLower(nameJ)
	if lowerI == lowerJ {
		return nameI < nameJ
	}
	return lowerI < lowerJ
}

// SortRepositories orders repository records by owner-qualified name.
func SortRepositories(repos []model.Repository) {
	sort.SliceStable(repos, func(i, j int) bool {
		return LessFullName(repos[i].FullName, repos[j].FullName)
	})
}
