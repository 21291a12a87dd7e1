package main

import (
	"fmt"
	"os"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/palmcourt/hotel-admin/internal/export"
	"github.com/spf13/cobra"
)

func (a *app) exportCmd() *cobra.Command {
	var startArg, endArg, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the rosters of a date range to an XLSX file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := a.exportRange(startArg, endArg)
			if err != nil {
				return err
			}

			rosters, err := a.rosters.GetRosterRange(cmd.Context(), start, end)
			if err != nil {
				return err
			}

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.WriteRosters(f, start, end, rosters); err != nil {
				_ = f.Close()
				_ = os.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d rosters (%s to %s) to %s.\n", len(rosters), start, end, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&startArg, "start", "today", "first date of the range")
	cmd.Flags().StringVar(&endArg, "end", "", "last date of the range (defaults to the upcoming window)")
	cmd.Flags().StringVarP(&out, "out", "o", "rosters.xlsx", "output file")
	return cmd
}

func (a *app) exportRange(startArg, endArg string) (domain.Date, domain.Date, error) {
	start, err := parseDay(startArg)
	if err != nil {
		return domain.Date{}, domain.Date{}, err
	}

	end := start.AddDays(a.cfg.UpcomingDays)
	if endArg != "" {
		if end, err = parseDay(endArg); err != nil {
			return domain.Date{}, domain.Date{}, err
		}
	}
	if end.Before(start) {
		return domain.Date{}, domain.Date{}, fmt.Errorf("end date %s is before start date %s", end, start)
	}
	return start, end, nil
}
