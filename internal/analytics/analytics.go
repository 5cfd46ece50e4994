// Package analytics provides pure, side-effect-free aggregation over complaint
// records: component frequency, severity totals, and monthly volume trends.
// Malformed or missing fields are excluded from the relevant count rather than
// reported as errors.
package analytics

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mkoval/defectwatch/internal/types"
)

// ComponentCount is one row of the component frequency table.
type ComponentCount struct {
	Component string  `json:"component"`
	Count     int     `json:"count"`
	Share     float64 `json:"share"`
}

// ComponentFrequency groups records by component label and counts occurrences,
// sorted descending by count with lexical tie-break. The structured enriched
// labels are preferred; the free-text components field is split as a fallback.
func ComponentFrequency(records []types.ComplaintRecord) []ComponentCount {
	counts := make(map[string]int)
	for i := range records {
		for _, comp := range recordComponents(&records[i]) {
			counts[comp]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	out := make([]ComponentCount, 0, len(counts))
	for comp, n := range counts {
		out = append(out, ComponentCount{
			Component: comp,
			Count:     n,
			Share:     float64(n) / float64(total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Component < out[j].Component
	})
	return out
}

// SeveritySummary holds the severity indicator totals for a record set.
// Crash and Fire count affected records; Injuries and Deaths sum the reported
// counts, so one record may contribute to several totals.
type SeveritySummary struct {
	Crash    int `json:"crash"`
	Fire     int `json:"fire"`
	Injuries int `json:"injuries"`
	Deaths   int `json:"deaths"`
}

// Severity sums the severity indicators across the record set.
func Severity(records []types.ComplaintRecord) SeveritySummary {
	var s SeveritySummary
	for i := range records {
		r := &records[i]
		if r.Crash {
			s.Crash++
		}
		if r.Fire {
			s.Fire++
		}
		s.Injuries += r.NumberOfInjuries
		s.Deaths += r.NumberOfDeaths
	}
	return s
}

// MonthCount is one bucket of the monthly volume trend.
type MonthCount struct {
	Month time.Time `json:"month"` // first day of the month, UTC
	Count int       `json:"count"`
}

// MonthlyTrend buckets records by report month and returns a dense sequence
// over the observed date range: months with zero complaints appear with count
// zero. When componentFilter is non-empty only records whose component labels
// include it (case-insensitive) are bucketed. Records with no parseable filed
// or incident date are excluded.
func MonthlyTrend(records []types.ComplaintRecord, componentFilter string) []MonthCount {
	filter := strings.ToUpper(strings.TrimSpace(componentFilter))
	counts := make(map[time.Time]int)
	var first, last time.Time

	for i := range records {
		r := &records[i]
		if filter != "" && !hasComponent(r, filter) {
			continue
		}
		t, ok := r.FiledDate()
		if !ok {
			t, ok = r.IncidentDate()
		}
		if !ok {
			continue
		}
		m := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		counts[m]++
		if first.IsZero() || m.Before(first) {
			first = m
		}
		if last.IsZero() || m.After(last) {
			last = m
		}
	}
	if len(counts) == 0 {
		return nil
	}

	var out []MonthCount
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		out = append(out, MonthCount{Month: m, Count: counts[m]})
	}
	return out
}

func hasComponent(r *types.ComplaintRecord, want string) bool {
	for _, comp := range recordComponents(r) {
		if comp == want {
			return true
		}
	}
	return false
}

// recordComponents returns the normalized component labels for a record:
// structured enrichment names when present, otherwise the free-text label
// split into parts.
func recordComponents(r *types.ComplaintRecord) []string {
	if r.Enrichment != nil && len(r.Enrichment.ComponentNames) > 0 {
		return r.Enrichment.ComponentNames
	}
	return SplitComponents(r.Components)
}

var componentSeparators = regexp.MustCompile(`[,|/]+`)

// SplitComponents splits a free-text components label like
// "ENGINE,POWER TRAIN" into normalized upper-case parts.
func SplitComponents(components string) []string {
	if components == "" {
		return nil
	}
	var out []string
	for _, part := range componentSeparators.Split(components, -1) {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

var stateSuffix = regexp.MustCompile(`,\s*([A-Z]{2})\s*$`)

// ExtractStateAbbr pulls the two-letter state abbreviation out of a consumer
// location like "LAS VEGAS, NV". It returns "" for unparseable or "Unknown"
// locations.
func ExtractStateAbbr(consumerLocation string) string {
	s := strings.TrimSpace(consumerLocation)
	if s == "" || strings.EqualFold(s, "unknown") {
		return ""
	}
	m := stateSuffix.FindStringSubmatch(strings.ToUpper(s))
	if m == nil {
		return ""
	}
	return m[1]
}
