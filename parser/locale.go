package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Receipts in this family mix Argentine ("1.234,56") and US ("1,234.56")
// numeric punctuation, so separator roles are resolved by shape instead of a
// declared locale flag.

// ParseLocalizedDecimal parses a numeric token whose decimal and thousands
// separators are ambiguous. The token must contain only digits, periods and
// commas; signs are handled by the amount extractor.
//
// Resolution policy:
//   - both marks present: the later one is the decimal separator
//   - one mark, exactly two trailing digits: decimal separator
//   - repeated marks of one kind: all but the last are grouping; the last is
//     grouping too when followed by three digits, otherwise decimal
//   - one mark, exactly three trailing digits: grouping, fraction zero —
//     this tie-break misreads genuine three-digit-cents amounts, so it is
//     surfaced as ConfidenceLow rather than hidden
func ParseLocalizedDecimal(token string) (decimal.Decimal, Confidence, error) {
	t := strings.TrimSpace(token)
	if t == "" {
		return decimal.Zero, ConfidenceHigh, fmt.Errorf("empty numeric token")
	}

	dots := strings.Count(t, ".")
	commas := strings.Count(t, ",")
	conf := ConfidenceHigh
	var canonical string

	switch {
	case dots == 0 && commas == 0:
		canonical = t

	case dots > 0 && commas > 0:
		if strings.LastIndex(t, ".") > strings.LastIndex(t, ",") {
			canonical = strings.ReplaceAll(t, ",", "")
		} else {
			canonical = strings.ReplaceAll(t, ".", "")
			canonical = strings.Replace(canonical, ",", ".", 1)
		}

	default:
		mark := "."
		if commas > 0 {
			mark = ","
		}
		last := strings.LastIndex(t, mark)
		trailing := len(t) - last - 1

		switch {
		case dots+commas > 1:
			head := strings.ReplaceAll(t[:last], mark, "")
			tail := t[last+1:]
			if trailing == 3 {
				canonical = head + tail
			} else {
				canonical = head + "." + tail
			}
		case trailing == 3:
			canonical = strings.ReplaceAll(t, mark, "")
			conf = ConfidenceLow
		default:
			canonical = strings.Replace(t, mark, ".", 1)
		}
	}

	d, err := decimal.NewFromString(canonical)
	if err != nil {
		return decimal.Zero, ConfidenceHigh, fmt.Errorf("parse numeric token %q: %w", token, err)
	}
	return d, conf, nil
}

var spanishMonths = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

// yearPivot expands two-digit years: below the pivot lands in the 2000s,
// the rest in the 1900s.
const yearPivot = 50

func expandYear(year int) int {
	if year >= 100 {
		return year
	}
	if year < yearPivot {
		return 2000 + year
	}
	return 1900 + year
}

// newDate validates and builds a calendar date; time.Date silently
// normalizes overflow (e.g. 31/02), which must be a parse failure here.
func newDate(year int, month time.Month, day int) (time.Time, error) {
	if month < time.January || month > time.December {
		return time.Time{}, fmt.Errorf("month %d out of range", month)
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month || t.Year() != year {
		return time.Time{}, fmt.Errorf("day %d out of range for %s %d", day, month, year)
	}
	return t, nil
}

// parseSpanishDate handles "15 de noviembre de 2024".
func parseSpanishDate(groups []string) (time.Time, error) {
	day, _ := strconv.Atoi(groups[0])
	month, ok := spanishMonths[strings.ToLower(groups[1])]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month name %q", groups[1])
	}
	year, _ := strconv.Atoi(groups[2])
	return newDate(year, month, day)
}

// parseDayFirst handles numeric day/month/year, the ordering used by this
// receipt family's locale. Two-digit years are expanded under the pivot rule.
func parseDayFirst(groups []string) (time.Time, error) {
	day, _ := strconv.Atoi(groups[0])
	month, _ := strconv.Atoi(groups[1])
	year, _ := strconv.Atoi(groups[2])
	return newDate(expandYear(year), time.Month(month), day)
}

// parseISO handles year-month-day.
func parseISO(groups []string) (time.Time, error) {
	year, _ := strconv.Atoi(groups[0])
	month, _ := strconv.Atoi(groups[1])
	day, _ := strconv.Atoi(groups[2])
	return newDate(year, time.Month(month), day)
}
