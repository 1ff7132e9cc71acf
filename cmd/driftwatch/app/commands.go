package app

import (
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mementolab/driftwatch/cmd/driftwatch/cmd/analyze"
	"github.com/mementolab/driftwatch/cmd/driftwatch/cmd/retrieve"
	"github.com/mementolab/driftwatch/cmd/driftwatch/cmd/serve"
	"github.com/mementolab/driftwatch/internal/charts"
	"github.com/mementolab/driftwatch/internal/cmd/output"
	"github.com/mementolab/driftwatch/internal/dataset"
	"github.com/mementolab/driftwatch/internal/metrics"
)

// NewRetrieveCommand creates the retrieve command with app dependencies.
func (a *App) NewRetrieveCommand() *cobra.Command {
	return retrieve.NewCommand(a)
}

// NewAnalyzeCommand creates the analyze command with app dependencies.
func (a *App) NewAnalyzeCommand() *cobra.Command {
	return analyze.NewCommand(a)
}

// NewServeCommand creates the serve command with app dependencies.
func (a *App) NewServeCommand() *cobra.Command {
	return serve.NewCommand(a)
}

// NewMetricsCommand creates the metrics command.
func (a *App) NewMetricsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Aggregate change assessments into per-article metrics",
		Long: `Metrics reads every analyzed snapshot pair and writes one
metrics.json per article with a summary plus per-pair counters. Only
units the model marked as textually changed contribute to the
quantifiable counters.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return metrics.NewComputer(a.AnalysisDir()).WithLogger(*a.logger).Run()
		},
	}
}

// NewChartsCommand creates the charts command.
func (a *App) NewChartsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "charts",
		Short: "Render importance-over-time charts per article",
		Long: `Charts renders a stacked daily bar chart of important and
not-important changed units for every analyzed article, one bar pair
per calendar day with at least one snapshot pair.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return charts.NewGenerator(a.Store(), a.AnalysisDir()).WithLogger(*a.logger).Run()
		},
	}
}

// countRow is one line of the count command output.
type countRow struct {
	Filename         string `json:"filename"`
	Mementos         int    `json:"mementos"`
	ConsecutivePairs int    `json:"consecutive_pairs"`
}

// NewCountCommand creates the count command.
func (a *App) NewCountCommand() *cobra.Command {
	var asCSV bool

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count stored mementos per dataset file",
		Long: `Count reports the number of mementos in every dataset file,
plus totals for mementos and consecutive snapshot pairs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows, err := a.countRows()
			if err != nil {
				return err
			}

			format := output.DetectFormat(a.config.Format)
			if asCSV {
				format = output.FormatCSV
			}

			var payload any
			switch format {
			case output.FormatJSON, output.FormatYAML:
				payload = rows
			default:
				payload = countData(rows)
			}
			return output.NewFormatter(format).Format(cmd.OutOrStdout(), payload)
		},
	}

	cmd.Flags().BoolVar(&asCSV, "csv", false, "write raw CSV rows (filename,mementos,consecutive_pairs)")
	return cmd
}

// countRows builds per-file counts plus the __TOTAL__ row.
func (a *App) countRows() ([]countRow, error) {
	store := a.Store()
	titles, err := store.List()
	if err != nil {
		return nil, err
	}

	var rows []countRow
	totalMementos, totalPairs := 0, 0
	for _, title := range titles {
		path := store.Path(title)
		n, err := dataset.CountFile(path)
		if err != nil {
			a.logger.Warn().Str("file", path).Err(err).Msg("skipping uncountable dataset file")
			continue
		}
		pairs := 0
		if n > 1 {
			pairs = n - 1
		}
		rows = append(rows, countRow{
			Filename:         filepath.Base(path),
			Mementos:         n,
			ConsecutivePairs: pairs,
		})
		totalMementos += n
		totalPairs += pairs
	}
	rows = append(rows, countRow{
		Filename:         "__TOTAL__",
		Mementos:         totalMementos,
		ConsecutivePairs: totalPairs,
	})
	return rows, nil
}

func countData(rows []countRow) output.Data {
	data := output.Data{Headers: []string{"filename", "mementos", "consecutive_pairs"}}
	for _, row := range rows {
		data.Rows = append(data.Rows, []string{
			row.Filename,
			strconv.Itoa(row.Mementos),
			strconv.Itoa(row.ConsecutivePairs),
		})
	}
	return data
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("driftwatch %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit: %s\n", a.commit)
				cmd.Printf("  built:  %s\n", a.date)
			}
		},
	}
}
