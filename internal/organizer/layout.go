package organizer

import (
	"fmt"
	"path/filepath"
)

// Layout selects how a matched file's date maps to a directory under the
// destination root. Exactly one layout is active per run.
type Layout int

const (
	// LayoutFull places files at {year}/{month}/{day}/{filename}.
	LayoutFull Layout = iota
	// LayoutMonthOnly places files at {year}/{month}/{filename}.
	LayoutMonthOnly
	// LayoutShort places files at {year}/{month}.{day}/{filename}.
	LayoutShort
)

// ParseLayout converts a configuration value into a Layout.
func ParseLayout(s string) (Layout, error) {
	switch s {
	case "full":
		return LayoutFull, nil
	case "month_only":
		return LayoutMonthOnly, nil
	case "short":
		return LayoutShort, nil
	default:
		return 0, fmt.Errorf("unknown layout %q (want full, month_only or short)", s)
	}
}

func (l Layout) String() string {
	switch l {
	case LayoutFull:
		return "full"
	case LayoutMonthOnly:
		return "month_only"
	case LayoutShort:
		return "short"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// RelativePath returns the path of filename under the destination root.
// Month and day are zero-padded to two digits; filename is kept as is.
func (l Layout) RelativePath(m *TimestampMatch, filename string) string {
	year := fmt.Sprintf("%04d", m.Year)
	month := fmt.Sprintf("%02d", m.Month)
	day := fmt.Sprintf("%02d", m.Day)

	switch l {
	case LayoutMonthOnly:
		return filepath.Join(year, month, filename)
	case LayoutShort:
		return filepath.Join(year, month+"."+day, filename)
	default:
		return filepath.Join(year, month, day, filename)
	}
}
