package pyversion

import (
	"regexp"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var releasePattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// CompareLexical compares two dotted versions component by component as
// strings, so "3.7" < "3.7.0" and, notably, "3.10" < "3.9". It returns
// -1, 0 or 1.
func CompareLexical(a, b string) int {
	pa := strings.Split(a, ".")
	pb := strings.Split(b, ".")
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if c := strings.Compare(pa[i], pb[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(pa) < len(pb):
		return -1
	case len(pa) > len(pb):
		return 1
	default:
		return 0
	}
}

// IsRelease reports whether v is a fully released X.Y.Z CPython version.
func IsRelease(v string) bool {
	return releasePattern.MatchString(v)
}

// Latest returns the newest X.Y.Z definition. Dev builds, pre-releases and
// alternate implementations (pypy-*, miniconda*, ...) never qualify.
// Releases are ordered numerically.
func Latest(definitions []string) (string, bool) {
	var (
		best    string
		bestVer *semver.Version
	)
	for _, d := range definitions {
		if !IsRelease(d) {
			continue
		}
		v, err := semver.StrictNewVersion(d)
		if err != nil {
			continue
		}
		if bestVer == nil || v.GreaterThan(bestVer) {
			best, bestVer = d, v
		}
	}
	return best, bestVer != nil
}

// Match finds the definition for optimal: an exact entry first, otherwise
// the greatest definition (plain descending string order) that optimal
// matches as a regular-expression prefix.
func Match(definitions []string, optimal string) (string, bool) {
	if optimal == "" {
		return "", false
	}
	if slices.Contains(definitions, optimal) {
		return optimal, true
	}

	pattern, err := regexp.Compile("^" + optimal)
	if err != nil {
		return "", false
	}

	sorted := slices.Clone(definitions)
	slices.SortFunc(sorted, func(a, b string) int { return strings.Compare(b, a) })
	for _, d := range sorted {
		if pattern.MatchString(d) {
			return d, true
		}
	}
	return "", false
}

// Concrete resolves spec against definitions. GreaterOrEqual resolves to
// Latest; everything else goes through Match on the optimal version.
func Concrete(spec Spec, definitions []string) (string, bool) {
	if spec.Operator == GreaterOrEqual {
		return Latest(definitions)
	}
	return Match(definitions, spec.Optimal)
}
