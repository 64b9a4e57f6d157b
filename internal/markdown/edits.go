package markdown

import (
	"errors"
	"fmt"
	"sort"
)

// Edit replaces source[Start:End] with Replacement. Offsets always refer to
// the original source, End exclusive.
type Edit struct {
	Start       int
	End         int
	Replacement []byte
}

// ErrOverlappingEdits is returned when two edits touch the same bytes.
var ErrOverlappingEdits = errors.New("overlapping edit ranges")

// ApplyEdits returns a copy of source with every edit applied. Edits are
// validated first and then applied from the end of the buffer toward the
// start, so no edit shifts the offsets of another.
func ApplyEdits(source []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		return source, nil
	}

	sorted := append([]Edit(nil), edits...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start == sorted[j].Start {
			return sorted[i].End > sorted[j].End
		}
		return sorted[i].Start > sorted[j].Start
	})

	for i, e := range sorted {
		switch {
		case e.Start < 0 || e.End < 0:
			return nil, fmt.Errorf("edit %d: negative range", i)
		case e.End < e.Start:
			return nil, fmt.Errorf("edit %d: end before start", i)
		case e.End > len(source):
			return nil, fmt.Errorf("edit %d: range [%d,%d) exceeds %d bytes", i, e.Start, e.End, len(source))
		case i > 0 && e.End > sorted[i-1].Start:
			return nil, ErrOverlappingEdits
		}
	}

	out := append([]byte(nil), source...)
	for _, e := range sorted {
		tail := append([]byte(nil), out[e.End:]...)
		out = append(append(out[:e.Start], e.Replacement...), tail...)
	}
	return out, nil
}
