package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/inodb/dpyd-af/internal/annotate"
	"github.com/inodb/dpyd-af/internal/frequency"
)

// RenderChart writes an HTML page with two bar charts: summed allele
// frequency per population stacked by category, and each category's share
// of the population total. Chart IDs are fixed so identical summaries render
// identical pages.
func RenderChart(w io.Writer, gene string, s *frequency.Summary) error {
	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("%s allele frequencies", gene)
	page.AddCharts(frequencyChart(gene, s), proportionChart(gene, s))
	return page.Render(w)
}

func chartPopulations(s *frequency.Summary) []string {
	labels := make([]string, 0, len(s.Populations)+1)
	for _, p := range s.Populations {
		labels = append(labels, strings.ToUpper(p))
	}
	return append(labels, strings.ToUpper(frequency.Overall))
}

func frequencyChart(gene string, s *frequency.Summary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros, ChartID: "frequency"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Allele frequency of %s variants by population", gene),
			Subtitle: "summed AC/AN per category",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Population"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Frequency"}),
	)

	bar.SetXAxis(chartPopulations(s))
	for _, c := range s.Categories {
		data := make([]opts.BarData, 0, len(s.Populations)+1)
		for _, p := range s.Populations {
			data = append(data, opts.BarData{Value: s.Sums[c][p]})
		}
		data = append(data, opts.BarData{Value: s.Overall[c]})
		bar.AddSeries(categoryLabel(c), data)
	}
	bar.SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
	return bar
}

func proportionChart(gene string, s *frequency.Summary) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros, ChartID: "proportion"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Share of %s frequency covered by each category", gene),
			Subtitle: "percent of population total",
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Population"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "%"}),
	)

	show := true
	bar.SetXAxis(chartPopulations(s))
	for _, c := range s.Categories {
		data := make([]opts.BarData, 0, len(s.Populations)+1)
		for _, p := range append(append([]string(nil), s.Populations...), frequency.Overall) {
			pct, _ := s.Proportion(c, p)
			data = append(data, opts.BarData{Value: roundPct(pct)})
		}
		bar.AddSeries(categoryLabel(c), data,
			charts.WithLabelOpts(opts.Label{Show: &show, Position: "top"}))
	}
	return bar
}

func categoryLabel(c annotate.Category) string {
	switch c {
	case annotate.CategoryOverride:
		return "Override list"
	case annotate.CategoryFunctional:
		return "Reduced function"
	case annotate.CategoryClinical:
		return "ClinVar pathogenic"
	case annotate.CategoryLOF:
		return "Loss of function"
	}
	return string(c)
}

func roundPct(pct float64) float64 {
	return float64(int64(pct*100+0.5)) / 100
}
