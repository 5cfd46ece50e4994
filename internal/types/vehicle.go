package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Vehicle identifies a make/model/year combination used to query the recalls
// and complaints endpoints.
type Vehicle struct {
	Make  string `json:"make" validate:"required"`
	Model string `json:"model" validate:"required"`
	Year  int    `json:"year" validate:"required,gte=1949,lte=2032"`
}

var vehicleValidator = validator.New(validator.WithRequiredStructEnabled())

// Normalize trims and uppercases the make and model, matching how the upstream
// API treats them.
func (v Vehicle) Normalize() Vehicle {
	return Vehicle{
		Make:  strings.ToUpper(strings.TrimSpace(v.Make)),
		Model: strings.ToUpper(strings.TrimSpace(v.Model)),
		Year:  v.Year,
	}
}

// Validate checks that the vehicle descriptor is complete enough to query with.
func (v Vehicle) Validate() error {
	if err := vehicleValidator.Struct(v); err != nil {
		return fmt.Errorf("invalid vehicle: %w", err)
	}
	return nil
}

func (v Vehicle) String() string {
	return fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model)
}

// VINLength is the fixed length of a North American VIN.
const VINLength = 17

// NormalizeVIN trims and uppercases a VIN and checks its length.
func NormalizeVIN(vin string) (string, error) {
	vin = strings.ToUpper(strings.TrimSpace(vin))
	if vin == "" {
		return "", fmt.Errorf("vin is required")
	}
	if len(vin) != VINLength {
		return "", fmt.Errorf("vin must be %d characters, got %d", VINLength, len(vin))
	}
	return vin, nil
}

// VINResult holds the decoded attributes for a VIN. The upstream decoder
// returns a flat map of attribute name to value; the common fields are lifted
// out and the rest kept as-is.
type VINResult struct {
	VIN           string            `json:"vin"`
	Make          string            `json:"make,omitempty"`
	Model         string            `json:"model,omitempty"`
	ModelYear     string            `json:"modelYear,omitempty"`
	DecodeWarning string            `json:"decodeWarning,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}
