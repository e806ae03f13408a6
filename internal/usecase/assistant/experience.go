package assistant

import (
	"regexp"
	"strconv"
	"strings"

	"folio-assistant/internal/domain"
)

var dateRangePattern = regexp.MustCompile(`(?i)(\d{4})\s*-\s*(\d{4}|present)`)

// ExperienceYears derives (years, since) from the entries' free-text date
// ranges. "present" resolves to currentYear. Entries that do not parse, or
// end before they start, are skipped. With nothing parsed it returns
// (0, currentYear); otherwise since is the earliest start and years spans
// from since to the latest end inclusive. Gaps between roles are counted.
func ExperienceYears(entries []domain.ExperienceEntry, currentYear int) (years, since int) {
	minStart, maxEnd := 0, 0
	parsed := 0
	for _, e := range entries {
		start, end, ok := parseDateRange(e.Date, currentYear)
		if !ok {
			continue
		}
		if parsed == 0 || start < minStart {
			minStart = start
		}
		if parsed == 0 || end > maxEnd {
			maxEnd = end
		}
		parsed++
	}
	if parsed == 0 {
		return 0, currentYear
	}
	return maxEnd - minStart + 1, minStart
}

func parseDateRange(s string, currentYear int) (start, end int, ok bool) {
	m := dateRangePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	start, err := strconv.Atoi(m[1])
	if err != nil || start == 0 {
		return 0, 0, false
	}
	if strings.EqualFold(m[2], "present") {
		end = currentYear
	} else if end, err = strconv.Atoi(m[2]); err != nil {
		return 0, 0, false
	}
	if end == 0 || end < start {
		return 0, 0, false
	}
	return start, end, true
}
