// internal/app/system/csvutil/metrics.go
package csvutil

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/dalemusser/greenledger/internal/domain/models"
)

// MetricsHeader is the header row of a metrics export.
var MetricsHeader = []string{"year", "carbonEmissions", "energyConsumption", "wasteDistributed", "waterUsage"}

// utf8BOM makes spreadsheet apps detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteMetrics writes a BOM, the header, and one CRLF-terminated row per
// metric in the given order. At most MaxExportRows rows are written.
func WriteMetrics(w io.Writer, metrics []models.Metric) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(MetricsHeader); err != nil {
		return err
	}
	for i, m := range metrics {
		if i >= MaxExportRows {
			break
		}
		row := []string{
			strconv.Itoa(m.Year),
			formatFloat(m.CarbonEmissions),
			formatFloat(m.EnergyConsumption),
			formatFloat(m.WasteDistributed),
			formatFloat(m.WaterUsage),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatFloat prints the shortest representation that round-trips.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
