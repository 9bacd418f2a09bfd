package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"financas/internal/core"
	"financas/internal/services"
	"financas/internal/storage"
)

var dbPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "financasctl",
		Short: "Manage the financas transaction database from the command line",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			if dbPath == "" {
				dbPath = os.Getenv("SQLITE_DB_PATH")
			}
			if dbPath == "" {
				dbPath = "./data/financas.db"
			}
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite database (default $SQLITE_DB_PATH or ./data/financas.db)")

	root.AddCommand(newImportCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(newSummaryCmd())
	return root
}

func openServices() (*services.ImportService, *services.SummaryService, func(), error) {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	imports := services.NewImportService(repo, nil)
	summaries := services.NewSummaryService(repo)
	imports.OnChange(summaries.Invalidate)
	cleanup := func() {
		summaries.Close()
		repo.Close()
	}
	return imports, summaries, cleanup, nil
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import a bank CSV export into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			imports, _, closeFn, err := openServices()
			if err != nil {
				return err
			}
			defer closeFn()

			report, err := imports.ImportCSV(cmd.Context(), string(data))
			if err != nil {
				return fmt.Errorf("import: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d transactions\n", report.Imported)
			for _, d := range report.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped line %d: %s\n", d.Line, d.Reason)
			}
			return nil
		},
	}
}

func newExportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all stored transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			imports, _, closeFn, err := openServices()
			if err != nil {
				return err
			}
			defer closeFn()

			out, err := imports.ExportCSV(cmd.Context())
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			if outPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			}
			if err := os.WriteFile(outPath, []byte(out), 0644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "write the CSV to a file instead of stdout")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the monthly budget summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, summaries, closeFn, err := openServices()
			if err != nil {
				return err
			}
			defer closeFn()

			if year == 0 || month == 0 {
				now := time.Now()
				year, month = now.Year(), int(now.Month())
			}
			res, err := summaries.MonthlySummary(cmd.Context(), year, month)
			if err != nil {
				return fmt.Errorf("summary: %w", err)
			}

			s := res.Summary
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Resumo %s\n", s.Month)
			fmt.Fprintf(out, "  Salário:   %s\n", core.FormatReais(s.SalaryCents))
			fmt.Fprintf(out, "  Fixas:     %s (orçado %s)\n", core.FormatReais(s.Fixed.SpentCents), core.FormatReais(s.Fixed.BudgetCents))
			fmt.Fprintf(out, "  Variáveis: %s (orçado %s)\n", core.FormatReais(s.Variable.SpentCents), core.FormatReais(s.Variable.BudgetCents))
			fmt.Fprintf(out, "  Movimentos: %s\n", core.FormatReais(s.Movements.SpentCents))
			fmt.Fprintf(out, "  Saldo:     %s\n", core.FormatReais(s.BalanceCents))

			for _, a := range s.Alerts {
				fmt.Fprintf(out, "  alerta: %s em %.1f%% do salário (limite %.0f%%)\n", a.Bucket, a.ActualPercent, a.LimitPercent)
			}
			for _, c := range res.Categories {
				fmt.Fprintf(out, "  [%s] %s: %s", c.Section, c.Name, core.FormatReais(c.SpentCents))
				if c.BudgetCents > 0 {
					fmt.Fprintf(out, " / %s (%s)", core.FormatReais(c.BudgetCents), c.Status)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "summary year (defaults to the current month when both flags are zero)")
	cmd.Flags().IntVar(&month, "month", 0, "summary month 1-12")
	return cmd
}
