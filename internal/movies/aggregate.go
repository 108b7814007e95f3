package movies

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Field selects the value summed by SumByYear.
type Field func(TypedRecord) decimal.Decimal

func RevenueOf(r TypedRecord) decimal.Decimal { return r.Revenue }

func BudgetOf(r TypedRecord) decimal.Decimal { return r.Budget }

// SumByYear groups records by release year and sums field within each
// group. Years without records are absent.
func SumByYear(records []TypedRecord, field Field) YearlySum {
	sums := make(YearlySum)
	for _, r := range records {
		sums[r.ReleaseYear] = sums[r.ReleaseYear].Add(field(r))
	}
	return sums
}

// Sorted returns the entries ascending by year.
func (s YearlySum) Sorted() []YearTotal {
	out := make([]YearTotal, 0, len(s))
	for year, total := range s {
		out = append(out, YearTotal{Year: year, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Total sums every year.
func (s YearlySum) Total() decimal.Decimal {
	total := decimal.Zero
	for _, v := range s {
		total = total.Add(v)
	}
	return total
}

// Aggregate builds the chart data from filtered records.
func Aggregate(records []TypedRecord) ChartData {
	return NewChartData(SumByYear(records, RevenueOf), SumByYear(records, BudgetOf))
}

// NewChartData packages yearly revenue and budget totals. Dates follow the
// revenue years; YMax is the largest total of either series and is left
// invalid when both are empty.
func NewChartData(revenue, budget YearlySum) ChartData {
	revenueTotals := revenue.Sorted()
	budgetTotals := budget.Sorted()

	dates := make([]time.Time, 0, len(revenueTotals))
	for _, t := range revenueTotals {
		dates = append(dates, YearDate(t.Year))
	}

	var yMax decimal.NullDecimal
	for _, totals := range [][]YearTotal{revenueTotals, budgetTotals} {
		for _, t := range totals {
			if !yMax.Valid || t.Total.GreaterThan(yMax.Decimal) {
				yMax = decimal.NewNullDecimal(t.Total)
			}
		}
	}

	return ChartData{
		Series: []ChartSeries{
			{Name: RevenueSeries, Color: RevenueColor, Values: points(revenueTotals)},
			{Name: BudgetSeries, Color: BudgetColor, Values: points(budgetTotals)},
		},
		Dates: dates,
		YMax:  yMax,
	}
}

func points(totals []YearTotal) []ChartPoint {
	out := make([]ChartPoint, 0, len(totals))
	for _, t := range totals {
		out = append(out, ChartPoint{Date: YearDate(t.Year), Value: t.Total})
	}
	return out
}

// MarshalJSON writes the value as a JSON number.
func (p ChartPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Date  time.Time   `json:"date"`
		Value json.Number `json:"value"`
	}{p.Date, json.Number(p.Value.String())})
}

type chartDataJSON struct {
	Series []ChartSeries `json:"series"`
	Dates  []time.Time   `json:"dates"`
	YMax   *json.Number  `json:"yMax"`
}

// MarshalJSON writes yMax as null for empty data.
func (d ChartData) MarshalJSON() ([]byte, error) {
	w := chartDataJSON{Series: d.Series, Dates: d.Dates}
	if d.YMax.Valid {
		n := json.Number(d.YMax.Decimal.String())
		w.YMax = &n
	}
	return json.Marshal(w)
}

func (d *ChartData) UnmarshalJSON(data []byte) error {
	var w struct {
		Series []ChartSeries    `json:"series"`
		Dates  []time.Time      `json:"dates"`
		YMax   *decimal.Decimal `json:"yMax"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	d.Series, d.Dates = w.Series, w.Dates
	d.YMax = decimal.NullDecimal{}
	if w.YMax != nil {
		d.YMax = decimal.NewNullDecimal(*w.YMax)
	}
	return nil
}
