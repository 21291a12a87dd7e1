package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/palmcourt/hotel-admin/internal/dining"
	"github.com/palmcourt/hotel-admin/internal/domain"
	"github.com/spf13/cobra"
)

func (a *app) menuCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Manage menu items",
	}
	cmd.AddCommand(a.menuListCmd(), a.menuAddCmd(), a.menuToggleCmd(), a.menuDeleteCmd())
	return cmd
}

func (a *app) menuListCmd() *cobra.Command {
	var category string
	var availableOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List menu items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.catalog.ListMenuItems(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tVEG\tSPICE\tPREP\tAVAILABLE")
			for _, item := range items {
				if category != "" && !strings.EqualFold(item.Category.Name, category) {
					continue
				}
				if availableOnly && !item.IsAvailable {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\t%s\t%dm\t%s\n",
					item.ID, item.Name, item.Category.Name, item.BasePrice,
					yesNo(item.IsVeg), item.SpiceLevel, item.PreparationTime, yesNo(item.IsAvailable))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only show items of this category")
	cmd.Flags().BoolVar(&availableOnly, "available", false, "only show available items")
	return cmd
}

func (a *app) menuAddCmd() *cobra.Command {
	var (
		name, description, categoryID, spice string
		price                                float64
		veg                                  bool
		prep                                 int
		images                               []string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a menu item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := dining.MenuItemInput{
				Name:       &name,
				CategoryID: &categoryID,
				BasePrice:  &price,
			}
			if cmd.Flags().Changed("description") {
				in.Description = &description
			}
			if cmd.Flags().Changed("veg") {
				in.IsVeg = &veg
			}
			if cmd.Flags().Changed("prep") {
				in.PreparationTime = &prep
			}
			if spice != "" {
				level, err := domain.ParseSpiceLevel(spice)
				if err != nil {
					return err
				}
				in.SpiceLevel = &level
			}
			for _, path := range images {
				img, err := dining.LoadImage(path)
				if err != nil {
					return err
				}
				in.Images = append(in.Images, img)
			}

			item, err := a.catalog.CreateMenuItem(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s) in %s.\n", item.Name, item.ID, item.Category.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "item name")
	cmd.Flags().StringVar(&description, "description", "", "item description")
	cmd.Flags().StringVar(&categoryID, "category", "", "category ID")
	cmd.Flags().Float64Var(&price, "price", 0, "base price")
	cmd.Flags().BoolVar(&veg, "veg", true, "vegetarian")
	cmd.Flags().IntVar(&prep, "prep", 15, "preparation time in minutes")
	cmd.Flags().StringVar(&spice, "spice", "", "spice level (MILD, MEDIUM, HOT)")
	cmd.Flags().StringSliceVar(&images, "image", nil, "image file to upload, repeatable")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func (a *app) menuToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip the availability of a menu item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := a.catalog.ToggleAvailability(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state := "available"
			if !item.IsAvailable {
				state = "unavailable"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s.\n", item.Name, state)
			return nil
		},
	}
}

func (a *app) menuDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a menu item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.catalog.DeleteMenuItem(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", args[0])
			return nil
		},
	}
}

func (a *app) categoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage dining categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := a.catalog.ListCategories(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tORDER\tACTIVE")
			for _, c := range categories {
				order := "-"
				if c.SortOrder != nil {
					order = fmt.Sprint(*c.SortOrder)
				}
				active := "-"
				if c.IsActive != nil {
					active = yesNo(*c.IsActive)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Name, order, active)
			}
			return tw.Flush()
		},
	}

	var sortOrder int
	var image string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := dining.CategoryInput{Name: &args[0]}
			if cmd.Flags().Changed("order") {
				in.SortOrder = &sortOrder
			}
			if image != "" {
				img, err := dining.LoadImage(image)
				if err != nil {
					return err
				}
				in.Image = &img
			}

			c, err := a.catalog.CreateCategory(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created category %s (%s).\n", c.Name, c.ID)
			return nil
		},
	}
	add.Flags().IntVar(&sortOrder, "order", 0, "sort order")
	add.Flags().StringVar(&image, "image", "", "image file to upload")

	cmd.AddCommand(list, add)
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
