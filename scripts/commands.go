package scripts

import (
	"context"
	"fmt"
	"os"

	"govstay-server/config"
	"govstay-server/services"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the govstayctl command tree.
func NewRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "govstayctl",
		Short:         "Operator tasks for the guest house booking server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (overrides GOVSTAY_CONFIG)")

	// withRuntime loads configuration, connects and runs fn.
	withRuntime := func(migrate bool, fn func(ctx context.Context, rt *Runtime, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			if configPath != "" {
				os.Setenv("GOVSTAY_CONFIG", configPath)
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.Database.Migrate = cfg.Database.Migrate || migrate
			rt, err := Bootstrap(cfg)
			if err != nil {
				return err
			}
			defer rt.Close()
			return fn(cmd.Context(), rt, cmd)
		}
	}

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: withRuntime(true, func(_ context.Context, rt *Runtime, cmd *cobra.Command) error {
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create the sample hotels with two floors of rooms and dorms",
		RunE: withRuntime(true, func(ctx context.Context, rt *Runtime, cmd *cobra.Command) error {
			n, err := SeedHotels(ctx, rt.Catalog)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d hotels\n", n)
			return nil
		}),
	})

	pricing := &cobra.Command{Use: "update-pricing", Short: "Set the base nightly price of every room and dorm"}
	roomPrice := pricing.Flags().Int64("room", services.DefaultRoomPrice, "nightly price of a room")
	dormPrice := pricing.Flags().Int64("dorm", services.DefaultDormPrice, "nightly price of a dorm")
	pricing.RunE = withRuntime(false, func(ctx context.Context, rt *Runtime, cmd *cobra.Command) error {
		n, err := rt.Catalog.UpdateAllPricing(ctx, *roomPrice, *dormPrice)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated pricing for %d hotels (room %d, dorm %d)\n", n, *roomPrice, *dormPrice)
		return nil
	})
	root.AddCommand(pricing)

	admin := &cobra.Command{Use: "setup-admin", Short: "Create an admin account or promote an existing one"}
	email := admin.Flags().String("email", "", "admin email")
	password := admin.Flags().String("password", "", "admin password (min 8 characters)")
	firstName := admin.Flags().String("first-name", "Admin", "first name for a new account")
	lastName := admin.Flags().String("last-name", "", "last name for a new account")
	admin.MarkFlagRequired("email")
	admin.MarkFlagRequired("password")
	admin.RunE = withRuntime(false, func(ctx context.Context, rt *Runtime, cmd *cobra.Command) error {
		user, created, err := SetupAdmin(ctx, rt.DB, *email, *password, *firstName, *lastName)
		if err != nil {
			return err
		}
		verb := "promoted"
		if created {
			verb = "created"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s admin %s (id %d)\n", verb, user.Email, user.ID)
		return nil
	})
	root.AddCommand(admin)

	root.AddCommand(&cobra.Command{
		Use:   "resync-mirror",
		Short: "Rebuild every public booking mirror from the bookings table",
		RunE: withRuntime(false, func(ctx context.Context, rt *Runtime, cmd *cobra.Command) error {
			upserted, removed, err := rt.Mirror.Resync(ctx, rt.DB)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mirrored %d bookings, removed %d stale mirrors\n", upserted, removed)
			return nil
		}),
	})

	root.AddCommand(&cobra.Command{
		Use:   "reindex",
		Short: "Push every hotel to the search index",
		RunE: withRuntime(false, func(ctx context.Context, rt *Runtime, cmd *cobra.Command) error {
			if rt.Search == nil {
				return fmt.Errorf("no elasticsearch configured (set ELASTIC_URLS)")
			}
			n, err := rt.Catalog.ReindexAll(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d hotels into %q\n", n, rt.Config.Elastic.Index)
			return nil
		}),
	})

	return root
}
