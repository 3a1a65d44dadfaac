package organizer

import (
	"regexp"
	"strconv"
)

// cameraUploadsPattern captures the Camera Uploads naming convention:
//
//	YYYY-MM-DD HH.MM.SS[ HDR][-N][ (USER's conflicted copy YYYY-MM-DD)][-N].ext
//
// RE2 has no back-references, so the conflicted copy date is captured on its
// own and compared against the primary date in Match.
var cameraUploadsPattern = regexp.MustCompile(
	`^(\d{4})-(\d{2})-(\d{2}) (\d{2})\.(\d{2})\.(\d{2})` +
		`( HDR)?` +
		`(?:-(\d*))?` +
		`(?: \((.*?)'s conflicted copy (\d{4})-(\d{2})-(\d{2})\)(?:-(\d*))?)?` +
		`\.(\S+)$`,
)

// Submatch group numbers in cameraUploadsPattern.
const (
	groupYear = iota + 1
	groupMonth
	groupDay
	groupHour
	groupMinute
	groupSecond
	groupHDR
	groupBurst
	groupConflictUser
	groupConflictYear
	groupConflictMonth
	groupConflictDay
	groupConflictBurst
	groupExtension
)

// TimestampMatch is the parsed form of a file name that follows the Camera
// Uploads convention. Only Year, Month and Day take part in path building.
type TimestampMatch struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
	Second int

	HDR bool

	// HasBurst is set when a "-N" suffix was present. Burst holds N, or 0
	// when the suffix carried no digits.
	HasBurst bool
	Burst    int

	// ConflictedCopy is set when the name carries a sync conflict annotation.
	// ConflictUser is the device or user name inside the annotation; nothing
	// depends on it.
	ConflictedCopy bool
	ConflictUser   string

	Extension string
}

// Match reports whether filename follows the Camera Uploads convention and,
// if so, returns its parsed fields. A name that does not match is not an
// error; callers leave such files where they are.
func Match(filename string) (*TimestampMatch, bool) {
	loc := cameraUploadsPattern.FindStringSubmatchIndex(filename)
	if loc == nil {
		return nil, false
	}

	group := func(i int) (string, bool) {
		if loc[2*i] < 0 {
			return "", false
		}
		return filename[loc[2*i]:loc[2*i+1]], true
	}
	field := func(i int) string {
		s, _ := group(i)
		return s
	}

	m := &TimestampMatch{
		Year:      atoi(field(groupYear)),
		Month:     atoi(field(groupMonth)),
		Day:       atoi(field(groupDay)),
		Hour:      atoi(field(groupHour)),
		Minute:    atoi(field(groupMinute)),
		Second:    atoi(field(groupSecond)),
		Extension: field(groupExtension),
	}
	_, m.HDR = group(groupHDR)

	if _, ok := group(groupConflictYear); ok {
		// The annotation must repeat the date already captured.
		if field(groupConflictYear) != field(groupYear) ||
			field(groupConflictMonth) != field(groupMonth) ||
			field(groupConflictDay) != field(groupDay) {
			return nil, false
		}
		m.ConflictedCopy = true
		m.ConflictUser = field(groupConflictUser)
	}

	// The device's own suffix comes first; the one after a conflict
	// annotation is only used when the device added none.
	for _, i := range []int{groupBurst, groupConflictBurst} {
		if digits, ok := group(i); ok {
			m.HasBurst = true
			m.Burst = atoi(digits)
			break
		}
	}

	return m, true
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
