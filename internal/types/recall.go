package types

// RecallRecord represents a recall campaign as returned by the recallsByVehicle
// and campaignNumber endpoints. Recall records are read-only once fetched; there
// is no enrichment step for them.
type RecallRecord struct {
	CampaignNumber     string `json:"NHTSACampaignNumber"`
	Manufacturer       string `json:"Manufacturer,omitempty"`
	Component          string `json:"Component,omitempty"`
	Summary            string `json:"Summary,omitempty"`
	Consequence        string `json:"Consequence,omitempty"`
	Remedy             string `json:"Remedy,omitempty"`
	Notes              string `json:"Notes,omitempty"`
	ReportReceivedDate string `json:"ReportReceivedDate,omitempty"`
	UnitsAffected      string `json:"PotentialNumberofUnitsAffected,omitempty"`
	ModelYear          string `json:"ModelYear,omitempty"`
	Make               string `json:"Make,omitempty"`
	Model              string `json:"Model,omitempty"`
}
