package main

import (
	"fmt"
	"time"

	"github.com/iwvelando/co2-budget/internal/report"
	"github.com/iwvelando/co2-budget/pkg/constants"
	"github.com/iwvelando/co2-budget/pkg/output"
	"github.com/iwvelando/co2-budget/pkg/validation"
	"github.com/iwvelando/co2-budget/pkg/years"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		city          string
		detail        string
		nowYear       int
		outputFormat  string
		scenarioYears string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute the CO2 budget report of a city",
		Long: `Computes the city budgets for every temperature threshold and probability,
the years in which they are exhausted, reduction paths and scenarios.

Example:
  co2-budget report --city heidelberg --detail full --now-year 2026
  co2-budget report --city heidelberg --detail full --scenario-years 2030-2045`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "main.report"

			// CLI override takes precedence over config
			format := a.conf.Output.Format
			if outputFormat != "" {
				format = outputFormat
			}
			if err := validation.ValidateOutputFormat(format); err != nil {
				return err
			}

			if nowYear == 0 {
				nowYear = years.FromTime(time.Now())
			}

			conf := *a.conf
			if scenarioYears != "" {
				start, end, err := years.ParseRange(scenarioYears)
				if err != nil {
					return err
				}
				conf.Report.ScenarioStartYear = start
				conf.Report.ScenarioEndYear = end
				a.logger.Debug("Scenario window overridden",
					zap.String("op", op),
					zap.Int("start", start),
					zap.Int("end", end),
				)
			}

			result, err := report.GetReport(a.logger, a.snapshot, conf, report.Request{
				City:          city,
				LevelOfDetail: detail,
				NowYear:       nowYear,
			})
			if err != nil {
				return fmt.Errorf("failed to compute report: %w", err)
			}
			for _, warning := range result.Warnings {
				a.logger.Warn("Report warning: "+warning, zap.String("op", op))
			}

			switch format {
			case constants.OutputFormatCSV:
				return output.CsvFormat(a.stdout, result)
			default:
				return output.PrettyFormat(a.stdout, result)
			}
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "city id, name or alias")
	cmd.Flags().StringVar(&detail, "detail", constants.DetailBrief, "level of detail: brief, full")
	cmd.Flags().IntVar(&nowYear, "now-year", 0, "reference year of current budgets (default: current year)")
	cmd.Flags().StringVar(&outputFormat, "output-format", "", "type of output override: pretty, csv")
	cmd.Flags().StringVar(&scenarioYears, "scenario-years", "", "scenario window override as START-END (e.g., 2025-2050)")
	_ = cmd.MarkFlagRequired("city")
	return cmd
}

func newCitiesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cities",
		Short: "List the supported cities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range a.snapshot.Cities() {
				if _, err := fmt.Fprintf(a.stdout, "%s | %s | population %d | data until %d\n",
					c.ID, c.Name, c.Population, c.LatestDataYear); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
