package sustainability

import (
	"context"
	"encoding/json"
	"io"

	"github.com/dalemusser/greenledger/internal/app/system/apperr"
	"github.com/dalemusser/greenledger/internal/app/system/auth"
	"github.com/dalemusser/greenledger/internal/app/system/csvutil"
	"github.com/dalemusser/greenledger/internal/app/system/normalize"
	"github.com/dalemusser/greenledger/internal/domain/models"
)

// Export formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

const exportBaseName = "sustainability_metrics"

// Export is a rendered download of the caller's metrics.
type Export struct {
	Format  string
	Metrics []models.Metric
}

// Filename is the attachment name offered to the client.
func (e *Export) Filename() string {
	return exportBaseName + "." + e.Format
}

// ContentType is the MIME type of the rendered body.
func (e *Export) ContentType() string {
	if e.Format == FormatJSON {
		return "application/json"
	}
	return "text/csv; charset=utf-8"
}

// exportRow is the JSON shape of one exported year.
type exportRow struct {
	Year              int     `json:"year"`
	CarbonEmissions   float64 `json:"carbonEmissions"`
	EnergyConsumption float64 `json:"energyConsumption"`
	WasteDistributed  float64 `json:"wasteDistributed"`
	WaterUsage        float64 `json:"waterUsage"`
}

// Write renders the export to w.
func (e *Export) Write(w io.Writer) error {
	if e.Format == FormatCSV {
		return csvutil.WriteMetrics(w, e.Metrics)
	}
	rows := make([]exportRow, 0, len(e.Metrics))
	for _, m := range e.Metrics {
		rows = append(rows, exportRow{
			Year:              m.Year,
			CarbonEmissions:   m.CarbonEmissions,
			EnergyConsumption: m.EnergyConsumption,
			WasteDistributed:  m.WasteDistributed,
			WaterUsage:        m.WaterUsage,
		})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

// Export loads the caller's metrics for download. format is "csv" (the
// default when empty) or "json".
func (s *Service) Export(ctx context.Context, claims *auth.Claims, format string) (*Export, error) {
	format = normalize.Format(format)
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatJSON {
		return nil, apperr.New(apperr.InvalidInput, "Unsupported export format. Use csv or json")
	}

	list, err := s.GetMetrics(ctx, claims)
	if err != nil {
		return nil, err
	}
	return &Export{Format: format, Metrics: list}, nil
}
