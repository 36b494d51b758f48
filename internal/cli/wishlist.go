package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func parseTourID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid tour id %q", arg)
	}
	return id, nil
}

func (a *app) wishlistCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Manage the tours you plan to join",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List wishlisted tours",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, api, _ := a.session()
			page, err := api.Wishlist.List(cmd.Context())
			if err != nil {
				return err
			}
			return a.printTours(page.Results, page.Count)
		},
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle <tour-id>",
		Short: "Add a tour to the wishlist or take it off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTourID(args[0])
			if err != nil {
				return err
			}
			_, api, _ := a.session()
			result, err := api.Wishlist.Toggle(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.cfg.JSON {
				return a.printJSON(result)
			}
			a.printf("%s\n", result.Message)
			return nil
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <tour-id>",
		Short: "Take a tour off the wishlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTourID(args[0])
			if err != nil {
				return err
			}
			_, api, _ := a.session()
			msg, err := api.Wishlist.Remove(cmd.Context(), id)
			if err != nil {
				return err
			}
			a.printf("%s\n", msg.Message)
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the wishlist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, api, _ := a.session()
			msg, err := api.Wishlist.Clear(cmd.Context())
			if err != nil {
				return err
			}
			a.printf("%s\n", msg.Message)
			return nil
		},
	}

	cmd.AddCommand(listCmd, toggleCmd, removeCmd, clearCmd)
	return cmd
}
