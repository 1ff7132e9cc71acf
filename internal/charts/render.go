package charts

import (
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mementolab/driftwatch/pkg/errors"
)

// OutFileName is the chart file written per article.
const OutFileName = "importance_over_time_daily.html"

// Series is the chart input after daily selection: one entry per
// selected day.
type Series struct {
	Dates        []string
	Important    []int
	NotImportant []int
	Subtitle     string
}

// Render writes a stacked daily importance bar chart to path.
func Render(path string, s Series) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Importance of changes over time",
			Width:     "1200px",
			Height:    "520px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Importance of changes over time",
			Subtitle: s.Subtitle,
		}),
		charts.WithColorsOpts(opts.Colors{"#1f4e79", "#5b9bd5"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Left: "left", Top: "40"}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "Date",
			AxisLabel: &opts.AxisLabel{Rotate: 45},
		}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Changed units"}),
	)

	important := make([]opts.BarData, len(s.Important))
	for i, v := range s.Important {
		important[i] = opts.BarData{Value: v}
	}
	notImportant := make([]opts.BarData, len(s.NotImportant))
	for i, v := range s.NotImportant {
		notImportant[i] = opts.BarData{Value: v}
	}

	bar.SetXAxis(s.Dates).
		AddSeries("Important", important).
		AddSeries("Not important", notImportant).
		SetSeriesOptions(charts.WithBarChartOpts(opts.BarChart{Stack: "importance"}))

	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create chart file", path, err)
	}
	defer f.Close()
	if err := bar.Render(f); err != nil {
		return errors.WrapIO("render chart", path, err)
	}
	return nil
}
