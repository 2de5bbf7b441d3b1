// Package pyversion parses Python version constraints as they appear in
// project metadata and picks concrete versions out of python-build
// definitions.
package pyversion

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/penwyp/autoenv/internal/errors"
)

// Operator is the comparison a Spec expresses.
type Operator int

const (
	// Equal targets the optimal version (or the newest definition it prefixes).
	Equal Operator = iota
	// GreaterOrEqual covers ">" and ">=": the newest released version wins.
	GreaterOrEqual
	// LessThan is a strict upper bound; Optimal is the bound stepped down by one.
	LessThan
)

func (o Operator) String() string {
	switch o {
	case Equal:
		return "=="
	case GreaterOrEqual:
		return ">="
	case LessThan:
		return "<"
	default:
		return "?"
	}
}

// assignmentCutset is stripped around the value of a `key = "value",` line.
const assignmentCutset = "\t \"',"

var (
	dottedVersion = regexp.MustCompile(`^[0-9.]+$`)
	strictUpper   = regexp.MustCompile(`^<[0-9.]+$`)
	leadingNumber = regexp.MustCompile(`^[0-9.]*`)
)

// Spec is a parsed version constraint. It is immutable once returned by
// Parse or ParseAssignment.
type Spec struct {
	// Raw is the text the spec was parsed from.
	Raw      string
	Operator Operator
	// Optimal is the concrete dotted version implied by the constraint.
	// Empty for GreaterOrEqual, which resolves to the latest release.
	Optimal string
	// Bound is the lower bound of a GreaterOrEqual spec.
	Bound string
}

// Parse parses a bare constraint such as "3.8.9", ">=3.7", "<=3.9" or "<3.10".
func Parse(text string) (Spec, error) {
	return parse(text, strings.TrimSpace(text))
}

// ParseAssignment parses a metadata line like `requires-python = ">=3.8"`.
// Everything up to the first '=' is dropped along with quotes, commas and
// whitespace around the value.
func ParseAssignment(line string) (Spec, error) {
	_, value, ok := strings.Cut(line, "=")
	if !ok {
		return Spec{}, errors.UnsupportedSpecifier(strings.TrimSpace(line))
	}
	return parse(line, strings.Trim(value, assignmentCutset))
}

func parse(raw, text string) (Spec, error) {
	spec := Spec{Raw: raw}

	switch {
	case dottedVersion.MatchString(text):
		spec.Operator = Equal
		spec.Optimal = text

	case strings.HasPrefix(text, ">"):
		// No upper bound, so the newest usable version is always acceptable.
		spec.Operator = GreaterOrEqual
		bound := strings.TrimPrefix(strings.TrimPrefix(text, ">"), "=")
		spec.Bound = leadingNumber.FindString(strings.TrimSpace(bound))

	case dottedVersion.MatchString(strings.TrimPrefix(text, "<=")):
		// An inclusive upper bound is the exact target: the newest version
		// not exceeding it.
		spec.Operator = Equal
		spec.Optimal = strings.TrimPrefix(text, "<=")

	case strictUpper.MatchString(text):
		optimal, err := stepDown(strings.TrimPrefix(text, "<"))
		if err != nil {
			return Spec{}, errors.UnsupportedSpecifier(text)
		}
		spec.Operator = LessThan
		spec.Optimal = optimal

	default:
		return Spec{}, errors.UnsupportedSpecifier(text)
	}

	return spec, nil
}

// stepDown guesses the newest version below bound: a trailing zero
// component is dropped, then the last component is decremented.
// "3.9" -> "3.8", "3.0" -> "2". A result below zero is an error.
func stepDown(bound string) (string, error) {
	parts := strings.Split(bound, ".")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", err
		}
		nums = append(nums, n)
	}

	if len(nums) > 1 && nums[len(nums)-1] == 0 {
		nums = nums[:len(nums)-1]
	}
	nums[len(nums)-1]--
	if nums[len(nums)-1] < 0 {
		return "", strconv.ErrRange
	}

	out := make([]string, len(nums))
	for i, n := range nums {
		out[i] = strconv.Itoa(n)
	}
	return strings.Join(out, "."), nil
}

// IsLower reports whether candidate sorts below the spec's target
// (Optimal, or Bound for GreaterOrEqual) under CompareLexical.
func (s Spec) IsLower(candidate string) bool {
	target := s.Optimal
	if s.Operator == GreaterOrEqual {
		target = s.Bound
	}
	return CompareLexical(candidate, target) < 0
}

func (s Spec) String() string {
	return s.Raw
}
