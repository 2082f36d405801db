// Package forecast projects income, expenses and savings for upcoming
// months from the owner's committed ledger history, using a linear trend
// over the most recent monthly aggregates.
package forecast

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-importer/internal/gateway"
	"github.com/insightdelivered/statement-importer/internal/models"
)

// monthsBack is how many trailing months of history feed the trend.
const monthsBack = 2

// HistoryFetcher reads committed transactions back from the ledger.
type HistoryFetcher interface {
	FetchTransactions(ctx context.Context, owner, credential string) ([]gateway.LedgerTransaction, error)
}

// Forecaster computes cashflow projections.
type Forecaster struct {
	fetcher HistoryFetcher
	log     zerolog.Logger
}

// New creates a Forecaster.
func New(fetcher HistoryFetcher, log zerolog.Logger) *Forecaster {
	return &Forecaster{fetcher: fetcher, log: log}
}

// monthSummary is one month's aggregated cashflow.
type monthSummary struct {
	month   time.Time // first of month
	income  float64
	expense float64
}

// Forecast returns a human-readable projection for monthsAhead months, one
// line per month. Every failure degrades to a descriptive string.
func (f *Forecaster) Forecast(ctx context.Context, owner, credential string, monthsAhead int) string {
	if owner == "" || credential == "" {
		return "Cannot fetch user context or auth token."
	}
	if monthsAhead < 1 {
		monthsAhead = 1
	}

	history, err := f.fetcher.FetchTransactions(ctx, owner, credential)
	if err != nil {
		f.log.Warn().Err(err).Str("owner", owner).Msg("fetching ledger history failed")
		return fmt.Sprintf("Forecasting failed: %v", err)
	}
	if len(history) == 0 {
		return "No transactions found to forecast."
	}

	summary := summarize(history)

	incomes := make([]float64, len(summary))
	expenses := make([]float64, len(summary))
	savings := make([]float64, len(summary))
	for i, m := range summary {
		incomes[i] = m.income
		expenses[i] = m.expense
		savings[i] = m.income - m.expense
	}

	lastMonth := summary[len(summary)-1].month
	var b strings.Builder
	for i := 1; i <= monthsAhead; i++ {
		idx := float64(len(summary) - 1 + i)
		month := lastMonth.AddDate(0, i, 0)
		if i > 1 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s: Income %.2f, Expenses %.2f, Savings %.2f",
			month.Format("2006-01-02"),
			project(incomes, idx),
			project(expenses, idx),
			project(savings, idx))
	}
	return b.String()
}

// summarize buckets transactions by calendar month and keeps the trailing
// monthsBack months that actually contain data, oldest first.
func summarize(history []gateway.LedgerTransaction) []monthSummary {
	byMonth := make(map[time.Time]*monthSummary)
	for _, t := range history {
		m := time.Date(t.Date.Year(), t.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		s, ok := byMonth[m]
		if !ok {
			s = &monthSummary{month: m}
			byMonth[m] = s
		}
		amount := t.Amount.InexactFloat64()
		if t.Kind == models.KindIncome {
			s.income += amount
		} else {
			s.expense += amount
		}
	}

	months := make([]monthSummary, 0, len(byMonth))
	for _, s := range byMonth {
		months = append(months, *s)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].month.Before(months[j].month) })

	if len(months) > monthsBack {
		months = months[len(months)-monthsBack:]
	}
	return months
}

// project evaluates the least-squares trend of values (indexed 0..n-1) at x,
// clamped at zero so a declining series never predicts negative cashflow.
func project(values []float64, x float64) float64 {
	slope, intercept := trend(values)
	v := intercept + slope*x
	if v < 0 {
		return 0
	}
	return v
}

func trend(values []float64) (slope, intercept float64) {
	if len(values) == 0 {
		return 0, 0
	}
	if len(values) == 1 {
		return 0, values[0]
	}

	series := make(stats.Series, len(values))
	for i, v := range values {
		series[i] = stats.Coordinate{X: float64(i), Y: v}
	}
	fitted, err := stats.LinearRegression(series)
	if err != nil || len(fitted) < 2 {
		return 0, values[len(values)-1]
	}

	first := fitted[0]
	last := fitted[len(fitted)-1]
	slope = (last.Y - first.Y) / (last.X - first.X)
	intercept = first.Y - slope*first.X
	return slope, intercept
}
