package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/leave-ledger/api"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/timeoff"
)

// =============================================================================
// SERVE
// =============================================================================

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, _ := cmd.Flags().GetString("scenario")
			if scenario != "" {
				if err := app.handler.LoadScenarioByID(cmd.Context(), scenario); err != nil {
					return fmt.Errorf("failed to load scenario: %w", err)
				}
			}
			return serve(app.cfg.Server.Port, api.NewRouter(app.handler, app.cfg.Server.AllowedOrigins))
		},
	}

	cmd.Flags().String("scenario", "", "Load a demo scenario at startup (resets the database)")

	return cmd
}

func serve(port int, handler http.Handler) error {
	logger := app.logger

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// =============================================================================
// RECALC & PREVIEW
// =============================================================================

func recalcCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Recalculate and save one month's ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := periodFlag(cmd)
			if err != nil {
				return err
			}

			var opts timeoff.SaveOptions
			if raw, _ := cmd.Flags().GetString("accrual"); raw != "" {
				accrual, err := decimal.NewFromString(raw)
				if err != nil {
					return fmt.Errorf("invalid --accrual %q: %w", raw, err)
				}
				opts.MonthlyAccrual = &accrual
			}

			report, err := app.handler.Service.RecalculateAndSave(cmd.Context(), period, opts)
			if err != nil {
				return err
			}

			fmt.Printf("Period %s: %d saved, %d failed\n", report.Period, len(report.Saved), len(report.Failed))
			if report.ConfigSaved {
				fmt.Println("Monthly accrual updated")
			}
			for _, f := range report.Failed {
				fmt.Printf("  FAILED %s (%s): %v\n", f.EmployeeID, f.PolicyCode, f.Err)
			}
			return report.Err()
		},
	}

	cmd.Flags().String("period", "", "Month to save (YYYY-MM)")
	cmd.Flags().String("accrual", "", "New default monthly accrual, saved before the rows")
	cmd.MarkFlagRequired("period")

	return cmd
}

func previewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print one month's computed ledger without saving",
		RunE: func(cmd *cobra.Command, args []string) error {
			period, err := periodFlag(cmd)
			if err != nil {
				return err
			}
			rows, err := app.handler.Service.Preview(cmd.Context(), period)
			if err != nil {
				return err
			}
			printRows(rows)
			return nil
		},
	}

	cmd.Flags().String("period", "", "Month to compute (YYYY-MM)")
	cmd.MarkFlagRequired("period")

	return cmd
}

func periodFlag(cmd *cobra.Command) (generic.PeriodKey, error) {
	raw, _ := cmd.Flags().GetString("period")
	return generic.ParsePeriodKey(raw)
}

func printRows(rows []timeoff.LedgerRow) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ID\tName\tPolicy\tOpening\tAllocated\tUsed\tClosing\t")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.EmployeeID, r.EmployeeName, r.PolicyCode,
			r.Opening.StringFixed(2), r.Allocated.StringFixed(2),
			r.Used.StringFixed(2), r.Closing.StringFixed(2))
	}
	tw.Flush()
}

// =============================================================================
// POLICY IMPORT
// =============================================================================

func importPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-policy",
		Short: "Replace ledger settings and quotas from a JSON policy document",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read policy file: %w", err)
			}

			cfg, quotas, err := app.handler.PolicyFactory.ParsePolicy(string(data))
			if err != nil {
				return err
			}
			if err := app.handler.Service.ImportPolicy(cmd.Context(), cfg, quotas); err != nil {
				return err
			}

			fmt.Printf("Imported policy: accrual %s, %d leave types\n", cfg.MonthlyAccrual, quotas.Len())
			return nil
		},
	}

	cmd.Flags().String("file", "", "Path to policy JSON")
	cmd.MarkFlagRequired("file")

	return cmd
}
