package roster

import (
	"sort"
	"time"
)

// ISODate is the calendar date layout used for vacation dates.
// Lexicographic order on this layout is chronological order.
const ISODate = "2006-01-02"

// ValidDate reports whether s is a well-formed ISO calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse(ISODate, s)
	return err == nil
}

// AddVacationDate inserts date into dates, keeping the sequence unique
// and sorted ascending. Returns the (possibly new) sequence and whether
// the date was actually added. Adding a date already present leaves the
// input untouched.
func AddVacationDate(dates []string, date string) ([]string, bool) {
	for _, d := range dates {
		if d == date {
			return dates, false
		}
	}
	out := make([]string, 0, len(dates)+1)
	out = append(out, dates...)
	out = append(out, date)
	sort.Strings(out)
	return out, true
}

// RemoveVacationDate filters date out of dates, preserving the order of
// the remaining entries. Returns the new sequence and whether the date
// was present.
func RemoveVacationDate(dates []string, date string) ([]string, bool) {
	var out []string
	found := false
	for _, d := range dates {
		if d == date {
			found = true
			continue
		}
		out = append(out, d)
	}
	if !found {
		return dates, false
	}
	return out, true
}
