package sustainability

import (
	"context"
	"errors"
	"math"

	"github.com/dalemusser/greenledger/internal/app/system/apperr"
	"github.com/dalemusser/greenledger/internal/app/system/auth"
	"github.com/dalemusser/greenledger/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
)

// Benchmarks are industry reference values per measurement.
type Benchmarks struct {
	CarbonEmissions   float64
	WaterUsage        float64
	WasteDistributed  float64
	EnergyConsumption float64
}

// DefaultBenchmarks are used when none are configured.
var DefaultBenchmarks = Benchmarks{
	CarbonEmissions:   75,
	WaterUsage:        1200,
	WasteDistributed:  45,
	EnergyConsumption: 850,
}

// BenchmarkItem compares one measurement against its benchmark.
type BenchmarkItem struct {
	Metric         string  `json:"metric"`
	Value          float64 `json:"value"`
	Benchmark      float64 `json:"benchmark"`
	Percent        float64 `json:"percent"`
	AboveBenchmark bool    `json:"aboveBenchmark"`
}

// BenchmarkReport is the comparison for one year.
type BenchmarkReport struct {
	Year  int             `json:"year"`
	Items []BenchmarkItem `json:"items"`
}

// Benchmark compares the caller's metrics for year against the configured
// benchmarks. A nil year selects the most recent year with data.
func (s *Service) Benchmark(ctx context.Context, claims *auth.Claims, year *int) (BenchmarkReport, error) {
	id, err := callerID(claims)
	if err != nil {
		return BenchmarkReport{}, err
	}

	var m *models.Metric
	if year == nil {
		m, err = s.metrics.Latest(ctx, id)
	} else {
		m, err = s.metrics.GetByUserYear(ctx, id, *year)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return BenchmarkReport{}, apperr.New(apperr.NotFound, MsgNoData)
		}
		return BenchmarkReport{}, apperr.Wrap(apperr.StoreUnavailable, MsgUnavailable, err)
	}

	return compare(*m, s.benchmarks), nil
}

func compare(m models.Metric, b Benchmarks) BenchmarkReport {
	items := []BenchmarkItem{
		item("carbonEmissions", m.CarbonEmissions, b.CarbonEmissions),
		item("waterUsage", m.WaterUsage, b.WaterUsage),
		item("wasteDistributed", m.WasteDistributed, b.WasteDistributed),
		item("energyConsumption", m.EnergyConsumption, b.EnergyConsumption),
	}
	return BenchmarkReport{Year: m.Year, Items: items}
}

func item(name string, value, benchmark float64) BenchmarkItem {
	var pct float64
	if benchmark > 0 {
		pct = math.Round(value/benchmark*1000) / 10
	}
	return BenchmarkItem{
		Metric:         name,
		Value:          value,
		Benchmark:      benchmark,
		Percent:        pct,
		AboveBenchmark: pct > 100,
	}
}
