package cli

import (
	"fmt"
	"strconv"

	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"github.com/jrsteele09/circle-miniapp/internal/utils"
	"github.com/spf13/cobra"
)

func (a *app) onboardingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboarding",
		Short: "Pick a sphere and specialization",
	}

	spheresCmd := &cobra.Command{
		Use:   "spheres",
		Short: "List professional spheres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, api, _ := a.session()
			spheres, err := api.Onboarding.Spheres(cmd.Context())
			if err != nil {
				return err
			}
			if a.cfg.JSON {
				return a.printJSON(spheres)
			}
			w := a.newTable("ID", "NAME")
			for _, s := range spheres {
				fmt.Fprintf(w, "%d\t%s\n", s.ID, s.Name)
			}
			return w.Flush()
		},
	}

	var sphereID int64
	specializationsCmd := &cobra.Command{
		Use:   "specializations",
		Short: "List specializations, optionally for one sphere",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, api, _ := a.session()
			specs, err := api.Onboarding.Specializations(cmd.Context(), utils.OptionalID(sphereID))
			if err != nil {
				return err
			}
			if a.cfg.JSON {
				return a.printJSON(specs)
			}
			w := a.newTable("ID", "NAME", "SPHERE")
			for _, s := range specs {
				fmt.Fprintf(w, "%d\t%s\t%s\n", s.ID, s.Name, s.Sphere.Name)
			}
			return w.Flush()
		},
	}
	specializationsCmd.Flags().Int64Var(&sphereID, "sphere", 0, "only specializations of this sphere")

	var specializationID int64
	selectCmd := &cobra.Command{
		Use:   "select-sphere <sphere-id>",
		Short: "Choose your sphere and an optional specialization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid sphere id %q", args[0])
			}
			sel := circlemodel.SphereSelection{Sphere: id, Specialization: utils.OptionalID(specializationID)}

			ctx := cmd.Context()
			_, api, manager := a.session()
			update, err := api.Onboarding.SelectSphere(ctx, sel)
			if err != nil {
				return err
			}
			manager.SyncUser(ctx, update.User)
			if a.cfg.JSON {
				return a.printJSON(update)
			}
			a.printf("%s\n", update.Message)
			if update.User.NeedsOnboarding() {
				a.printf("Next: %s\n", update.User.NextOnboardingRoute())
			}
			return nil
		},
	}
	selectCmd.Flags().Int64Var(&specializationID, "specialization", 0, "specialization id within the sphere")

	cmd.AddCommand(spheresCmd, specializationsCmd, selectCmd)
	return cmd
}
