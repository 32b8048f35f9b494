package availability

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedDocument = errors.New("availability: csv must have a header and at least one data row")

// SkipReason explains why a data row was left out.
type SkipReason string

const (
	SkipEmptyField  SkipReason = "empty field"
	SkipInvalidDay  SkipReason = "invalid day value"
	SkipInvertedDay SkipReason = "start day after end day"
)

// RowError describes one skipped data row. Line is 1-based and counts the header.
type RowError struct {
	Line   int
	Raw    string
	Reason SkipReason
}

func (e RowError) Error() string {
	return fmt.Sprintf("availability: line %d skipped (%s): %q", e.Line, e.Reason, e.Raw)
}

// ParseResult holds the periods in source order and the rows that were skipped.
type ParseResult struct {
	Periods []RentPeriod
	Skipped []RowError
}

// Parse reads the `id,month,startDay,endDay` sheet export. Fields are split on commas
// without quote handling. Bad rows are reported in Skipped and never abort the parse.
func Parse(text string) (ParseResult, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return ParseResult{}, ErrMalformedDocument
	}

	var res ParseResult
	for i, line := range lines[1:] {
		lineNo := i + 2
		period, reason, ok := parseRow(line)
		if !ok {
			res.Skipped = append(res.Skipped, RowError{Line: lineNo, Raw: line, Reason: reason})
			continue
		}
		res.Periods = append(res.Periods, period)
	}
	return res, nil
}

func parseRow(line string) (RentPeriod, SkipReason, bool) {
	var fields [4]string
	for i, raw := range strings.SplitN(line, ",", 5) {
		if i == len(fields) {
			break
		}
		fields[i] = strings.TrimSpace(raw)
	}
	id, month, startRaw, endRaw := fields[0], fields[1], fields[2], fields[3]
	if id == "" || month == "" || startRaw == "" || endRaw == "" {
		return RentPeriod{}, SkipEmptyField, false
	}

	start, err := strconv.Atoi(startRaw)
	if err != nil {
		return RentPeriod{}, SkipInvalidDay, false
	}
	end, err := strconv.Atoi(endRaw)
	if err != nil {
		return RentPeriod{}, SkipInvalidDay, false
	}
	if start > end {
		return RentPeriod{}, SkipInvertedDay, false
	}

	return RentPeriod{
		ID:       id,
		Month:    strings.ToLower(month),
		StartDay: start,
		EndDay:   end,
	}, "", true
}
