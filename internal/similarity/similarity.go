// Package similarity implements the fuzzy overlap ratio used for scoring a
// user skill list against occupation requirement lists.
package similarity

import "strings"

// Ratio computes the overlap between two skill lists as
// |intersection| / |union|, where two skills overlap when one is a
// case-insensitive substring of the other (either direction).
//
// The intersection is counted over the distinct lower-cased elements of a,
// so the measure is directionally biased toward a's granularity. Containment
// is checked both ways, but swapping a and b can still change the result;
// callers rely on this exact behaviour, do not replace it with a symmetric
// token-set or edit-distance measure.
//
// Returns 0 when both lists are empty (guarded explicitly, never NaN).
func Ratio(a, b []string) float64 {
	union := make(map[string]struct{}, len(a)+len(b))
	aSet := make(map[string]struct{}, len(a))
	bLower := make([]string, 0, len(b))

	for _, s := range a {
		l := strings.ToLower(s)
		aSet[l] = struct{}{}
		union[l] = struct{}{}
	}
	for _, s := range b {
		l := strings.ToLower(s)
		bLower = append(bLower, l)
		union[l] = struct{}{}
	}

	if len(union) == 0 {
		return 0
	}

	intersection := 0
	for l := range aSet {
		if anyContains(bLower, l) {
			intersection++
		}
	}

	return float64(intersection) / float64(len(union))
}

// Matches reports whether skill overlaps any element of list under the same
// directional substring rule as Ratio (case-insensitive, either direction).
func Matches(skill string, list []string) bool {
	l := strings.ToLower(skill)
	for _, s := range list {
		other := strings.ToLower(s)
		if strings.Contains(other, l) || strings.Contains(l, other) {
			return true
		}
	}
	return false
}

func anyContains(list []string, l string) bool {
	for _, other := range list {
		if strings.Contains(other, l) || strings.Contains(l, other) {
			return true
		}
	}
	return false
}
