package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	response "booking_reconciliation/internal/adapter/http/dto/response"
	"booking_reconciliation/internal/bootstrap"
	"booking_reconciliation/internal/config"
	"booking_reconciliation/internal/domain/entities"

	"github.com/spf13/cobra"
)

var (
	outputJSON bool
	timeout    time.Duration
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "reconcilectl",
		Short:         "Operator tool for booking payment reconciliation",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&outputJSON, "json", "j", false, "Output as JSON")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Overall command timeout")

	rootCmd.AddCommand(reconcileCmd())
	rootCmd.AddCommand(bookingCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	return rootCmd
}

// withApp loads config from the environment, wires the store and runs fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *bootstrap.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app)
}

func reconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile [session-reference]",
		Short: "Reconcile a paid checkout into its booking",
		Long: `Runs the same reconciliation as the redirect endpoint and the webhook.

Safe to repeat: an already reconciled reference returns the existing booking.

Examples:
  reconcilectl reconcile 1234567890
  reconcilectl reconcile 1234567890 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				details, err := app.UseCase.Reconcile(ctx, args[0])
				if err != nil {
					return fmt.Errorf("reconcile %s: %w", args[0], err)
				}
				return printDetails(cmd.OutOrStdout(), details)
			})
		},
	}
}

func bookingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "booking [id]",
		Short: "Show a reconciled booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				details, err := app.UseCase.GetBooking(ctx, args[0])
				if err != nil {
					return fmt.Errorf("booking %s: %w", args[0], err)
				}
				return printDetails(cmd.OutOrStdout(), details)
			})
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tables (DynamoDB) or schema (Postgres) for the configured store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.Migrate(ctx); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "migrated store=%s\n", app.Config.StoreDriver)
				return nil
			})
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [catalog.json]",
		Short: "Upsert tenants, services and staff from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := bootstrap.LoadCatalogSeed(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.Seed(ctx, seed); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded tenants=%d services=%d staff=%d\n",
					len(seed.Tenants), len(seed.Services), len(seed.Staff))
				return nil
			})
		},
	}
}

func printDetails(w io.Writer, d entities.BookingDetails) error {
	if outputJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(response.NewBookingEnvelope(d))
	}
	fmt.Fprintf(w, "Booking   %s (%s)\n", d.Booking.ID, d.Booking.Status)
	fmt.Fprintf(w, "When      %s - %s\n", d.Booking.StartTime.UTC().Format(time.RFC3339), d.Booking.EndTime.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Client    %s <%s>\n", d.Booking.ClientName, d.Booking.ClientEmail)
	fmt.Fprintf(w, "Tenant    %s\n", d.Tenant.Name)
	fmt.Fprintf(w, "Service   %s\n", d.Service.Name)
	fmt.Fprintf(w, "Staff     %s\n", d.StaffFullName())
	fmt.Fprintf(w, "Payment   %s %s %s fee=%s net=%s transaction=%s\n",
		d.Payment.ID, d.Payment.Amount, d.Payment.Currency, d.Payment.FeeAmount, d.Payment.NetAmount, d.Payment.TransactionID)
	return nil
}
