package draft

import "strings"

// Normalizer folds free-text food names into aggregation keys. The
// fridge/shopping linkage is name-based, not a foreign key, so the
// matcher is pluggable: a stricter implementation (kana folding,
// synonym tables) can be swapped in without touching callers.
type Normalizer interface {
	Normalize(name string) string
}

// FoldNormalizer trims surrounding whitespace and lowercases. For
// Japanese ingredient names case folding is a no-op, which is exactly
// the exact-match behavior the planner wants by default.
type FoldNormalizer struct{}

func (FoldNormalizer) Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
