package versioning

// LessFunc reports whether a orders before b.
type LessFunc func(a, b Version) bool

// Less orders versions lexicographically by major, minor, then patch.
// An omitted patch compares as 0.
func Less(a, b Version) bool {
	if a.Major != b.Major {
		return a.Major < b.Major
	}
	if a.Minor != b.Minor {
		return a.Minor < b.Minor
	}
	return a.Patch < b.Patch
}

// LegacyLess reproduces the field-by-field test used by the original build
// script: each of major, minor and patch is tested on its own and the first
// smaller field wins. It is not an ordering; LegacyLess(2.0.0, 1.9.0) is true.
func LegacyLess(a, b Version) bool {
	if a.Major < b.Major {
		return true
	}
	if a.Minor < b.Minor {
		return true
	}
	return a.Patch < b.Patch
}

// Equal reports whether neither version is Less than the other.
func Equal(a, b Version) bool {
	return EqualBy(Less, a, b)
}

// EqualBy is Equal under an arbitrary comparison.
func EqualBy(less LessFunc, a, b Version) bool {
	return !less(a, b) && !less(b, a)
}

// Comparator picks the comparison used by the generator version gate.
func Comparator(legacy bool) LessFunc {
	if legacy {
		return LegacyLess
	}
	return Less
}

// Satisfies reports whether v is not less than minimum under less.
func Satisfies(v, minimum Version, less LessFunc) bool {
	if less == nil {
		less = Less
	}
	return !less(v, minimum)
}
