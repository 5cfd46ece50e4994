package nhtsa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mkoval/defectwatch/internal/analytics"
	"github.com/mkoval/defectwatch/internal/schemas"
	"github.com/mkoval/defectwatch/internal/types"
)

// IssueType selects the dataset queried on the safetyIssues endpoint.
type IssueType string

const (
	IssueComplaints     IssueType = "complaints"
	IssueRecalls        IssueType = "recalls"
	IssueInvestigations IssueType = "investigations"
)

func (t IssueType) valid() bool {
	switch t {
	case IssueComplaints, IssueRecalls, IssueInvestigations:
		return true
	}
	return false
}

// RecallsByVehicle fetches the recall campaigns for a vehicle.
func (c *Client) RecallsByVehicle(ctx context.Context, v types.Vehicle) ([]types.RecallRecord, Source, error) {
	v = v.Normalize()
	if err := v.Validate(); err != nil {
		return nil, "", err
	}
	q := url.Values{}
	q.Set("make", v.Make)
	q.Set("model", v.Model)
	q.Set("modelYear", strconv.Itoa(v.Year))
	reqURL := c.cfg.BaseURL + "/recalls/recallsByVehicle?" + q.Encode()
	return c.fetchRecalls(ctx, reqURL)
}

// RecallsByCampaign fetches the recall records for a single campaign number.
// An empty campaign number yields an empty result set.
func (c *Client) RecallsByCampaign(ctx context.Context, campaignNumber string) ([]types.RecallRecord, Source, error) {
	campaignNumber = strings.TrimSpace(campaignNumber)
	if campaignNumber == "" {
		return nil, SourceCache, nil
	}
	q := url.Values{}
	q.Set("campaignNumber", campaignNumber)
	reqURL := c.cfg.BaseURL + "/recalls/campaignNumber?" + q.Encode()
	return c.fetchRecalls(ctx, reqURL)
}

func (c *Client) fetchRecalls(ctx context.Context, reqURL string) ([]types.RecallRecord, Source, error) {
	payload, source, err := c.getJSON(ctx, "recalls", reqURL, TTLVehicleData)
	if err != nil {
		return nil, source, err
	}
	if err := schemas.Validate(schemas.RecallsResponse, payload); err != nil {
		return nil, source, &FetchError{URL: reqURL, Message: "unexpected response shape", Cause: err}
	}
	// The recalls endpoints are inconsistent about results casing.
	var body struct {
		Results   []types.RecallRecord `json:"results"`
		ResultsUC []types.RecallRecord `json:"Results"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, source, &FetchError{URL: reqURL, Message: "failed to decode recalls", Cause: err}
	}
	if len(body.Results) > 0 {
		return body.Results, source, nil
	}
	return body.ResultsUC, source, nil
}

// rawComplaint mirrors the complaintsByVehicle item shape, including the
// nested products list that carries the vehicle descriptor.
type rawComplaint struct {
	ODINumber          int64        `json:"odiNumber"`
	Manufacturer       string       `json:"manufacturer"`
	Crash              bool         `json:"crash"`
	Fire               bool         `json:"fire"`
	NumberOfInjuries   int          `json:"numberOfInjuries"`
	NumberOfDeaths     int          `json:"numberOfDeaths"`
	DateOfIncident     string       `json:"dateOfIncident"`
	DateComplaintFiled string       `json:"dateComplaintFiled"`
	VIN                string       `json:"vin"`
	Components         string       `json:"components"`
	Summary            string       `json:"summary"`
	Products           []rawProduct `json:"products"`
}

type rawProduct struct {
	Type         string `json:"type"`
	ProductYear  string `json:"productYear"`
	ProductMake  string `json:"productMake"`
	ProductModel string `json:"productModel"`
	Manufacturer string `json:"manufacturer"`
}

// vehicleProduct picks the product entry describing the vehicle itself,
// falling back to the first product when none is typed "vehicle".
func vehicleProduct(products []rawProduct) (rawProduct, bool) {
	if len(products) == 0 {
		return rawProduct{}, false
	}
	for _, p := range products {
		if strings.EqualFold(p.Type, "vehicle") {
			return p, true
		}
	}
	return products[0], true
}

// ComplaintsByVehicle fetches the consumer complaints for a vehicle.
func (c *Client) ComplaintsByVehicle(ctx context.Context, v types.Vehicle) ([]types.ComplaintRecord, Source, error) {
	v = v.Normalize()
	if err := v.Validate(); err != nil {
		return nil, "", err
	}
	q := url.Values{}
	q.Set("make", v.Make)
	q.Set("model", v.Model)
	q.Set("modelYear", strconv.Itoa(v.Year))
	reqURL := c.cfg.BaseURL + "/complaints/complaintsByVehicle?" + q.Encode()

	payload, source, err := c.getJSON(ctx, "complaints", reqURL, TTLVehicleData)
	if err != nil {
		return nil, source, err
	}
	if err := schemas.Validate(schemas.ComplaintsResponse, payload); err != nil {
		return nil, source, &FetchError{URL: reqURL, Message: "unexpected response shape", Cause: err}
	}
	var body struct {
		Results []rawComplaint `json:"results"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, source, &FetchError{URL: reqURL, Message: "failed to decode complaints", Cause: err}
	}

	records := make([]types.ComplaintRecord, 0, len(body.Results))
	for _, rc := range body.Results {
		rec := types.ComplaintRecord{
			ODINumber:          rc.ODINumber,
			Manufacturer:       rc.Manufacturer,
			Crash:              rc.Crash,
			Fire:               rc.Fire,
			NumberOfInjuries:   rc.NumberOfInjuries,
			NumberOfDeaths:     rc.NumberOfDeaths,
			DateOfIncident:     rc.DateOfIncident,
			DateComplaintFiled: rc.DateComplaintFiled,
			VIN:                rc.VIN,
			Components:         rc.Components,
			Summary:            rc.Summary,
		}
		if p, ok := vehicleProduct(rc.Products); ok {
			rec.ProductYear = p.ProductYear
			rec.ProductMake = p.ProductMake
			rec.ProductModel = p.ProductModel
			if rec.Manufacturer == "" {
				rec.Manufacturer = p.Manufacturer
			}
		}
		records = append(records, rec)
	}
	return records, source, nil
}

// rawSafetyIssue mirrors the nested safetyIssues/byNhtsaId complaint shape:
// {"results": [{"complaints": [{...}]}]}.
type rawSafetyIssue struct {
	Results []struct {
		Complaints []struct {
			NHTSAIDNumber    json.Number `json:"nhtsaIdNumber"`
			Description      string      `json:"description"`
			ConsumerLocation string      `json:"consumerLocation"`
			DateOfIncident   string      `json:"dateOfIncident"`
			DateFiled        string      `json:"dateFiled"`
			Components       []struct {
				Name string `json:"name"`
			} `json:"components"`
		} `json:"complaints"`
	} `json:"results"`
}

// ComplaintDetail fetches the safety-issue detail for a single complaint and
// flattens it into the enrichment fields. A payload with no matching complaint
// yields a nil enrichment and no error. The signature satisfies
// enrich.DetailFetcher so the client plugs straight into the pipeline.
func (c *Client) ComplaintDetail(ctx context.Context, odiNumber int64) (*types.ComplaintEnrichment, error) {
	payload, _, err := c.SafetyIssueByID(ctx, strconv.FormatInt(odiNumber, 10), IssueComplaints)
	if err != nil {
		return nil, err
	}

	var body rawSafetyIssue
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, &FetchError{Message: "failed to decode safety issue", Cause: err}
	}
	if len(body.Results) == 0 || len(body.Results[0].Complaints) == 0 {
		return nil, nil
	}
	detail := body.Results[0].Complaints[0]

	enr := &types.ComplaintEnrichment{
		Description:       detail.Description,
		ConsumerLocation:  detail.ConsumerLocation,
		StateAbbreviation: analytics.ExtractStateAbbr(detail.ConsumerLocation),
		DateOfIncidentISO: detail.DateOfIncident,
		DateFiledISO:      detail.DateFiled,
	}
	for _, comp := range detail.Components {
		if name := strings.ToUpper(strings.TrimSpace(comp.Name)); name != "" {
			enr.ComponentNames = append(enr.ComponentNames, name)
		}
	}
	return enr, nil
}

// SafetyIssueByID fetches the raw safety-issue payload for an NHTSA id.
func (c *Client) SafetyIssueByID(ctx context.Context, nhtsaID string, issueType IssueType) (json.RawMessage, Source, error) {
	nhtsaID = strings.TrimSpace(nhtsaID)
	if nhtsaID == "" {
		return nil, "", fmt.Errorf("nhtsa id is required")
	}
	if !issueType.valid() {
		return nil, "", fmt.Errorf("unsupported issue type: %q", issueType)
	}
	q := url.Values{}
	q.Set("filter", "issueType")
	q.Set("filterValue", string(issueType))
	q.Set("nhtsaId", nhtsaID)
	reqURL := c.cfg.BaseURL + "/safetyIssues/byNhtsaId?" + q.Encode()

	payload, source, err := c.getJSON(ctx, "safety_issue", reqURL, TTLSafetyIssue)
	if err != nil {
		return nil, source, err
	}
	if err := schemas.Validate(schemas.SafetyIssueResponse, payload); err != nil {
		return nil, source, &FetchError{URL: reqURL, Message: "unexpected response shape", Cause: err}
	}
	return payload, source, nil
}

// DecodeVIN decodes a 17-character VIN through the vPIC flat-format endpoint.
func (c *Client) DecodeVIN(ctx context.Context, vin string) (*types.VINResult, Source, error) {
	vin, err := types.NormalizeVIN(vin)
	if err != nil {
		return nil, "", err
	}
	reqURL := c.cfg.VINBaseURL + "/vehicles/decodevinvalues/" + url.PathEscape(vin) + "?format=json"

	payload, source, err := c.getJSON(ctx, "vin", reqURL, TTLVINDecode)
	if err != nil {
		return nil, source, err
	}
	if err := schemas.Validate(schemas.VINDecodeResponse, payload); err != nil {
		return nil, source, &FetchError{URL: reqURL, Message: "unexpected response shape", Cause: err}
	}
	var body struct {
		Results []map[string]any `json:"Results"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return nil, source, &FetchError{URL: reqURL, Message: "failed to decode VIN response", Cause: err}
	}
	if len(body.Results) == 0 {
		return nil, source, &FetchError{URL: reqURL, Message: "VIN decode returned no results"}
	}

	attrs := make(map[string]string, len(body.Results[0]))
	for k, v := range body.Results[0] {
		if v == nil {
			continue
		}
		attrs[k] = strings.TrimSpace(fmt.Sprint(v))
	}
	result := &types.VINResult{
		VIN:        vin,
		Make:       attrs["Make"],
		Model:      attrs["Model"],
		ModelYear:  attrs["ModelYear"],
		Attributes: attrs,
	}
	switch attrs["ErrorCode"] {
	case "", "0", "0.0", "null", "None":
		// clean decode
	default:
		result.DecodeWarning = attrs["ErrorCode"] + ": " + attrs["ErrorText"]
	}
	return result, source, nil
}
