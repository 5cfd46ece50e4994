// Package types provides type definitions for the vehicle-safety records handled
// throughout the defectwatch system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// ComplaintRecord represents a single consumer complaint as returned by the
// complaintsByVehicle endpoint. The base fields are immutable once decoded;
// the Enrichment pointer is populated at most once by the enrichment pipeline
// and is nil until then.
type ComplaintRecord struct {
	ODINumber          int64  `json:"odiNumber"`
	Manufacturer       string `json:"manufacturer,omitempty"`
	Crash              bool   `json:"crash"`
	Fire               bool   `json:"fire"`
	NumberOfInjuries   int    `json:"numberOfInjuries"`
	NumberOfDeaths     int    `json:"numberOfDeaths"`
	DateOfIncident     string `json:"dateOfIncident,omitempty"`     // MM/DD/YYYY
	DateComplaintFiled string `json:"dateComplaintFiled,omitempty"` // MM/DD/YYYY
	VIN                string `json:"vin,omitempty"`
	Components         string `json:"components,omitempty"` // free-text label, e.g. "SERVICE BRAKES"
	Summary            string `json:"summary,omitempty"`
	ProductYear        string `json:"productYear,omitempty"`
	ProductMake        string `json:"productMake,omitempty"`
	ProductModel       string `json:"productModel,omitempty"`

	Enrichment *ComplaintEnrichment `json:"enrichment,omitempty"`
}

// ComplaintEnrichment holds the additional per-record detail fetched from the
// safetyIssues endpoint. Fields here only ever add to a record; they never
// replace anything present on the base ComplaintRecord.
type ComplaintEnrichment struct {
	Description       string   `json:"description,omitempty"`
	ConsumerLocation  string   `json:"consumerLocation,omitempty"` // "CITY, ST"
	StateAbbreviation string   `json:"stateAbbreviation,omitempty"`
	ComponentNames    []string `json:"componentNames,omitempty"`
	DateOfIncidentISO string   `json:"dateOfIncidentIso,omitempty"`
	DateFiledISO      string   `json:"dateFiledIso,omitempty"`
}

// Enriched reports whether the enrichment pipeline has populated this record.
func (c *ComplaintRecord) Enriched() bool {
	return c.Enrichment != nil
}

// NarrativeText returns the text used for search indexing: the long enriched
// description when present, otherwise the base summary.
func (c *ComplaintRecord) NarrativeText() string {
	if c.Enrichment != nil && c.Enrichment.Description != "" {
		return c.Enrichment.Description
	}
	return c.Summary
}

// FiledDate parses the report date, preferring the enriched ISO date over the
// MM/DD/YYYY base field. The zero time and false are returned when neither
// parses.
func (c *ComplaintRecord) FiledDate() (time.Time, bool) {
	if c.Enrichment != nil && c.Enrichment.DateFiledISO != "" {
		if t, err := parseISODate(c.Enrichment.DateFiledISO); err == nil {
			return t, true
		}
	}
	return parseUSDate(c.DateComplaintFiled)
}

// IncidentDate parses the incident date with the same precedence as FiledDate.
func (c *ComplaintRecord) IncidentDate() (time.Time, bool) {
	if c.Enrichment != nil && c.Enrichment.DateOfIncidentISO != "" {
		if t, err := parseISODate(c.Enrichment.DateOfIncidentISO); err == nil {
			return t, true
		}
	}
	return parseUSDate(c.DateOfIncident)
}

func parseUSDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("01/02/2006", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseISODate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}
