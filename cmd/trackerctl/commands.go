package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"covidtracker.io/internal/appconf"
	"covidtracker.io/internal/tracker"
)

func newCompareCmd(opts *rootOptions) *cobra.Command {
	var (
		days   int
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "compare COUNTRY...",
		Short: "Print merged actual and predicted cases as CSV",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := opts.manager(cmd)
			if err != nil {
				return err
			}

			comparison, err := manager.Compare(cmd.Context(), tracker.CompareRequest{
				Countries: args,
				Days:      days,
				Strict:    strict,
			})
			if err != nil {
				return err
			}
			for _, country := range comparison.Failed {
				fmt.Fprintf(cmd.ErrOrStderr(), "no data for %s\n", country)
			}
			if len(comparison.Entities) == 0 {
				return errors.New("no country could be fetched")
			}
			return writeComparisonCSV(cmd.OutOrStdout(), comparison)
		},
	}

	cmd.Flags().IntVar(&days, "days", appconf.Default().DefaultForecastDays, "Forecast horizon in days")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail on series whose dates and cases differ in length")
	return cmd
}

// writeComparisonCSV writes one line per date. Columns follow the order the
// countries were given in; missing values are left empty.
func writeComparisonCSV(w io.Writer, comparison *tracker.Comparison) error {
	header := []string{"date"}
	for _, entity := range comparison.Entities {
		header = append(header, entity.ActualKey, entity.PredictedKey)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range comparison.Rows {
		record := make([]string, 1, len(header))
		record[0] = row.Date
		for _, entity := range comparison.Entities {
			point := row.Values[entity.Key]
			record = append(record, formatValue(point.Actual), formatValue(point.Predicted))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func newCountriesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List the country names known to disease.sh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := opts.manager(cmd)
			if err != nil {
				return err
			}

			names, err := manager.Countries(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newCountryCmd(opts *rootOptions) *cobra.Command {
	var province string

	cmd := &cobra.Command{
		Use:   "country NAME",
		Short: "Print the statistics and case timeline of one country as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := opts.manager(cmd)
			if err != nil {
				return err
			}

			detail, err := manager.CountryDetail(cmd.Context(), args[0], province)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), detail)
		},
	}

	cmd.Flags().StringVar(&province, "province", "", "Province or state")
	return cmd
}

func newOverviewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Print global totals and the top countries as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := opts.manager(cmd)
			if err != nil {
				return err
			}

			manager.Refresh(cmd.Context())
			if manager.Snapshot().Totals.Cases == 0 {
				return errors.New("global statistics are unavailable")
			}
			return writeJSON(cmd.OutOrStdout(), manager.Overview())
		},
	}
}
