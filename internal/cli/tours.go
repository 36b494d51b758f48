package cli

import (
	"fmt"
	"strconv"

	"github.com/jrsteele09/circle-miniapp/circleapi"
	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"github.com/spf13/cobra"
)

func (a *app) toursCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tours",
		Short: "Browse tours",
		Long: `Browse the tour catalogue.

Examples:
  circlectl tours list --type 1 --price-max 300000 --ordering price_from
  circlectl tours get 3
  circlectl tours get chimgan-weekend
  circlectl tours categories`,
	}

	var filters circleapi.TourFilters
	var page int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tours matching the filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, api, _ := a.session()
			tours, err := api.Tours.List(cmd.Context(), filters, page)
			if err != nil {
				return err
			}
			return a.printTours(tours.Results, tours.Count)
		},
	}
	listCmd.Flags().Int64Var(&filters.Type, "type", 0, "category id")
	listCmd.Flags().Float64Var(&filters.PriceMin, "price-min", 0, "lowest starting price")
	listCmd.Flags().Float64Var(&filters.PriceMax, "price-max", 0, "highest starting price")
	listCmd.Flags().StringVar(&filters.Search, "search", "", "text search over titles")
	listCmd.Flags().StringVar(&filters.Ordering, "ordering", "", "price_from, -price_from, created_at or -created_at")
	listCmd.Flags().IntVar(&page, "page", 0, "page number")

	getCmd := &cobra.Command{
		Use:   "get <id|slug>",
		Short: "Show one tour",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, api, _ := a.session()
			var tour *circlemodel.Tour
			var err error
			if id, convErr := strconv.ParseInt(args[0], 10, 64); convErr == nil {
				tour, err = api.Tours.Get(cmd.Context(), id)
			} else {
				tour, err = api.Tours.GetBySlug(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			if a.cfg.JSON {
				return a.printJSON(tour)
			}
			a.printTour(tour)
			return nil
		},
	}

	categoriesCmd := &cobra.Command{
		Use:   "categories",
		Short: "List tour categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, api, _ := a.session()
			categories, err := api.Tours.Categories(cmd.Context())
			if err != nil {
				return err
			}
			if a.cfg.JSON {
				return a.printJSON(categories.Results)
			}
			w := a.newTable("ID", "NAME")
			for _, c := range categories.Results {
				fmt.Fprintf(w, "%d\t%s\n", c.ID, c.Name)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(listCmd, getCmd, categoriesCmd)
	return cmd
}

func (a *app) printTour(t *circlemodel.Tour) {
	a.printf("%s (#%d, %s)\n", t.Title, t.ID, t.Slug)
	if t.Category != nil {
		a.printf("Category: %s\n", t.Category.Name)
	}
	a.printf("From %s sum, %d days\n", circlemodel.FormatPrice(t.PriceFrom), t.DurationDays)
	if t.IsWishlisted {
		a.printf("In your wishlist\n")
	}
	if t.Description != "" {
		a.printf("\n%s\n", t.Description)
	}
	if len(t.Schedule) > 0 {
		a.printf("\nSchedule:\n")
		for _, day := range t.Schedule {
			a.printf("  Day %d: %s\n", day.Day, day.Title)
		}
	}
	if sessions := t.ActiveSessions(); len(sessions) > 0 {
		a.printf("\nOpen dates:\n")
		for _, s := range sessions {
			a.printf("  %s - %s, %d seats left, %s sum\n", s.StartDate, s.EndDate, s.AvailableSeats, circlemodel.FormatPrice(s.Price))
		}
	}
}
