package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/shopspring/decimal"

	"moviechart/internal/movies"
)

// Caption returns the two header lines drawn above the chart.
func Caption() [2]string {
	return [2]string{
		"Budget and Revenue over time in $US",
		fmt.Sprintf("Films w/budget and revenue figures, %d-%d", movies.FirstYear, movies.LastYear),
	}
}

// WriteTable prints the caption and one row per year with both totals in
// full and abbreviated form.
func WriteTable(w io.Writer, data movies.ChartData) error {
	caption := Caption()
	if _, err := fmt.Fprintf(w, "%s\n%s\n\n", caption[0], caption[1]); err != nil {
		return err
	}
	if data.Empty() {
		_, err := fmt.Fprintln(w, "no data: no film passed the filter")
		return err
	}

	revenue := byYear(data, movies.RevenueSeries)
	budget := byYear(data, movies.BudgetSeries)

	rows := make([][]string, 0, len(data.Dates))
	for _, d := range data.Dates {
		year := d.Year()
		rows = append(rows, []string{
			fmt.Sprint(year),
			cell(revenue, year),
			tick(revenue, year),
			cell(budget, year),
			tick(budget, year),
		})
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignRight},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)
	table.Header([]string{"Year", movies.RevenueSeries, "Abbr", movies.BudgetSeries, "Abbr"})
	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("table rows: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	_, err := fmt.Fprintf(w, "\ny max: %s (%s)\n", data.YMax.Decimal.String(), FormatTick(data.YMax.Decimal.InexactFloat64()))
	return err
}

// WriteJSON writes data as indented JSON.
func WriteJSON(w io.Writer, data movies.ChartData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func byYear(data movies.ChartData, series string) map[int]decimal.Decimal {
	out := make(map[int]decimal.Decimal)
	s, ok := data.SeriesByName(series)
	if !ok {
		return out
	}
	for _, p := range s.Values {
		out[p.Date.Year()] = p.Value
	}
	return out
}

func cell(values map[int]decimal.Decimal, year int) string {
	v, ok := values[year]
	if !ok {
		return "-"
	}
	return v.String()
}

func tick(values map[int]decimal.Decimal, year int) string {
	v, ok := values[year]
	if !ok {
		return "-"
	}
	return FormatTick(v.InexactFloat64())
}
