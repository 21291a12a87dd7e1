package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/palmcourt/hotel-admin/internal/gateway"
	"github.com/palmcourt/hotel-admin/internal/roster"
	"github.com/spf13/cobra"
)

func (a *app) rosterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roster",
		Short: "View and edit daily rosters",
	}
	cmd.AddCommand(
		a.rosterShowCmd(),
		a.rosterTodayCmd(),
		a.rosterUpcomingCmd(),
		a.rosterEditCmd(),
		a.rosterAssignCmd(),
	)
	return cmd
}

func (a *app) rosterShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <date>",
		Short: "Show the roster of a date (YYYY-MM-DD, today, tomorrow, +N)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDay(args[0])
			if err != nil {
				return err
			}
			r, err := a.rosters.GetRosterByDate(cmd.Context(), date)
			if err != nil {
				return err
			}
			printRoster(cmd.OutOrStdout(), date, r)
			return nil
		},
	}
}

func (a *app) rosterTodayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Show today's roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date := today()
			r, err := a.rosters.GetRosterByDate(cmd.Context(), date)
			if err != nil {
				return err
			}
			printRoster(cmd.OutOrStdout(), date, r)
			return nil
		},
	}
}

func (a *app) rosterUpcomingCmd() *cobra.Command {
	var watch time.Duration
	var count int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Show rosters of the next days that have dishes",
		Long: "Show rosters of the next days that have dishes. With --watch the rosters are\n" +
			"reloaded from the server at the given interval until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			c := a.coordinator()
			if err := c.Load(ctx); err != nil {
				a.logger.Warn("部分数据加载失败", "error", err)
			}
			printUpcoming(out, c.View())

			for i := 0; watch > 0 && (count == 0 || i < count); i++ {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(watch):
				}

				if err := c.Refresh(ctx); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					a.logger.Warn("刷新失败", "error", err)
				}
				fmt.Fprintf(out, "\n--- refreshed at %s ---\n", nowFunc().Format("15:04:05"))
				printUpcoming(out, c.View())
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&watch, "watch", 0, "reload at this interval, e.g. 30s")
	cmd.Flags().IntVar(&count, "count", 0, "stop after this many reloads (0 means until interrupted)")
	return cmd
}

func printUpcoming(out io.Writer, v roster.View) {
	for _, d := range v.UpcomingDates {
		if err, ok := v.UpcomingErrs[d]; ok {
			fmt.Fprintf(out, "%s: failed to load (%s)\n", d, gateway.UserMessage(err))
		}
	}
	if len(v.Upcoming) == 0 {
		fmt.Fprintf(out, "No dishes scheduled for the next %d days.\n", len(v.UpcomingDates))
		return
	}
	for _, card := range v.Upcoming {
		printRoster(out, card.Date, card.Roster)
	}
}

func (a *app) rosterEditCmd() *cobra.Command {
	var add, remove []string
	var notes string
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "edit <date>",
		Short: "Add or remove dishes on a date's roster and save it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDay(args[0])
			if err != nil {
				return err
			}

			c, err := a.loadSelection(cmd, date)
			if err != nil {
				return err
			}
			v := c.View()

			selected := map[string]bool{}
			for _, id := range v.SelectedItemIDs {
				selected[id] = true
			}
			toggle := func(id string, want bool) error {
				if selected[id] == want {
					return nil
				}
				selected[id] = want
				return c.ToggleItem(id)
			}

			if clearAll {
				for _, id := range v.SelectedItemIDs {
					if err := toggle(id, false); err != nil {
						return err
					}
				}
			}
			for _, arg := range remove {
				id, err := resolveItem(v, arg)
				if err != nil {
					return err
				}
				if err := toggle(id, false); err != nil {
					return err
				}
			}
			for _, arg := range add {
				id, err := resolveItem(v, arg)
				if err != nil {
					return err
				}
				if err := toggle(id, true); err != nil {
					return err
				}
			}
			if cmd.Flags().Changed("notes") {
				if err := c.SetNotes(notes); err != nil {
					return err
				}
			}

			if err := c.Save(cmd.Context()); err != nil {
				return describeSaveError(err)
			}

			v = c.View()
			fmt.Fprintln(cmd.OutOrStdout(), "Saved.")
			printRoster(cmd.OutOrStdout(), date, v.Saved)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&add, "add", nil, "menu item ID or name to add, repeatable")
	cmd.Flags().StringSliceVar(&remove, "remove", nil, "menu item ID or name to remove, repeatable")
	cmd.Flags().StringVar(&notes, "notes", "", "replace the roster notes")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "start from an empty selection")
	return cmd
}

func (a *app) rosterAssignCmd() *cobra.Command {
	var items []string
	var notes string

	cmd := &cobra.Command{
		Use:   "assign <date> [date...]",
		Short: "Save the same dishes to several dates at once",
		Long: "Save the same dishes to several dates at once. Without --items the roster of the\n" +
			"first date is copied to the other dates.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dates, err := parseDays(args)
			if err != nil {
				return err
			}

			c, err := a.loadSelection(cmd, dates[0])
			if err != nil {
				return err
			}
			v := c.View()

			if len(items) > 0 {
				want := map[string]bool{}
				for _, arg := range items {
					id, err := resolveItem(v, arg)
					if err != nil {
						return err
					}
					want[id] = true
				}
				for _, id := range v.SelectedItemIDs {
					if !want[id] {
						if err := c.ToggleItem(id); err != nil {
							return err
						}
					}
				}
				for _, arg := range items {
					id, _ := resolveItem(v, arg)
					if !slices.Contains(c.View().SelectedItemIDs, id) {
						if err := c.ToggleItem(id); err != nil {
							return err
						}
					}
				}
			}
			if cmd.Flags().Changed("notes") {
				if err := c.SetNotes(notes); err != nil {
					return err
				}
			}

			if err := c.Assign(cmd.Context(), dates[1:]...); err != nil {
				return describeSaveError(err)
			}

			v = c.View()
			names := make([]string, 0, len(dates))
			for _, d := range dates {
				names = append(names, d.String())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Assigned %d dishes to %s.\n", len(v.SelectedItemIDs), strings.Join(names, ", "))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&items, "items", nil, "menu item IDs or names, comma separated")
	cmd.Flags().StringVar(&notes, "notes", "", "roster notes")
	return cmd
}

// loadSelection 加载菜单并把 date 设为选中日期，返回后编辑副本已经就绪
func (a *app) loadSelection(cmd *cobra.Command, date domain.Date) (*roster.Coordinator, error) {
	c := a.coordinator()
	if err := c.Load(cmd.Context()); err != nil {
		a.logger.Warn("部分数据加载失败", "error", err)
	}
	if err := c.SelectDate(cmd.Context(), date); err != nil {
		return nil, err
	}
	if err := c.View().CatalogErr; err != nil {
		return nil, fmt.Errorf("menu is unavailable: %w", err)
	}
	return c, nil
}

// resolveItem 按 ID 或名字（不区分大小写）在可选菜品中查找
func resolveItem(v roster.View, arg string) (string, error) {
	var byName []string
	for _, g := range v.Groups {
		for _, item := range g.Items {
			if item.ID == arg {
				return item.ID, nil
			}
			if strings.EqualFold(item.Name, arg) {
				byName = append(byName, item.ID)
			}
		}
	}
	switch len(byName) {
	case 1:
		return byName[0], nil
	case 0:
		return "", fmt.Errorf("no menu item matches %q", arg)
	default:
		return "", fmt.Errorf("%q matches %d menu items, use the ID", arg, len(byName))
	}
}

func describeSaveError(err error) error {
	switch {
	case errors.Is(err, roster.ErrPastDate):
		return errors.New("cannot save a roster for a past date")
	case errors.Is(err, roster.ErrEmptySelection):
		return errors.New("select at least one dish before saving")
	case errors.Is(err, roster.ErrCatalogUnavailable):
		return errors.New("the menu could not be loaded, try again later")
	default:
		return err
	}
}

func printRoster(w io.Writer, date domain.Date, r *domain.DailyRoster) {
	if r.IsEmpty() {
		fmt.Fprintf(w, "%s: no dishes scheduled\n", date)
		if r != nil && r.Notes != "" {
			fmt.Fprintf(w, "  Notes: %s\n", r.Notes)
		}
		return
	}

	fmt.Fprintf(w, "%s (%d dishes)\n", date, len(r.Items))
	if r.Notes != "" {
		fmt.Fprintf(w, "  Notes: %s\n", r.Notes)
	}
	for _, item := range r.Items {
		tags := []string{}
		if item.IsVeg {
			tags = append(tags, "veg")
		}
		if item.SpiceLevel != "" {
			tags = append(tags, strings.ToLower(string(item.SpiceLevel)))
		}
		if !item.IsAvailable {
			tags = append(tags, "unavailable")
		}
		fmt.Fprintf(w, "  - %s [%s] %.2f %s\n", item.Name, item.Category.Name, item.BasePrice, strings.Join(tags, ","))
	}
}
