package sustainability

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dalemusser/greenledger/internal/app/system/apperr"
	"github.com/dalemusser/greenledger/internal/app/system/inputval"
	"github.com/dalemusser/greenledger/internal/domain/models"
)

// Number is a JSON number that also accepts a numeric string. null and
// absent both leave it unset.
type Number struct {
	Value float64
	Set   bool
}

// N returns a set Number.
func N(v float64) Number { return Number{Value: v, Set: true} }

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = Number{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = Number{}
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*n = Number{Value: v, Set: true}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = Number{Value: v, Set: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// EntryInput is one element of a metric submission.
type EntryInput struct {
	Year              Number `json:"year"`
	CarbonEmissions   Number `json:"carbonEmissions"`
	EnergyConsumption Number `json:"energyConsumption"`
	WasteGenerated    Number `json:"wasteGenerated"`
	WaterUsage        Number `json:"waterUsage"`
}

// validEntry is an EntryInput that passed validation.
type validEntry struct {
	year int
	m    models.Measurements
}

// yearLabel renders the year for error messages, even when invalid.
func (e EntryInput) yearLabel() string {
	if !e.Year.Set {
		return "(missing)"
	}
	return strconv.FormatFloat(e.Year.Value, 'f', -1, 64)
}

func (e EntryInput) validate() (validEntry, error) {
	bad := apperr.New(apperr.InvalidInput, "Invalid metric data for year "+e.yearLabel())

	if !e.Year.Set || e.Year.Value != math.Trunc(e.Year.Value) {
		return validEntry{}, bad
	}
	year := int(e.Year.Value)
	if !inputval.IsValidYear(year) {
		return validEntry{}, bad
	}
	for _, n := range []Number{e.CarbonEmissions, e.EnergyConsumption, e.WasteGenerated, e.WaterUsage} {
		if !n.Set || !inputval.IsValidMeasurement(n.Value) || math.IsInf(n.Value, 0) {
			return validEntry{}, bad
		}
	}
	return validEntry{
		year: year,
		m: models.Measurements{
			CarbonEmissions:   e.CarbonEmissions.Value,
			EnergyConsumption: e.EnergyConsumption.Value,
			WasteDistributed:  e.WasteGenerated.Value,
			WaterUsage:        e.WaterUsage.Value,
		},
	}, nil
}
