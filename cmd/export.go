package cmd

import (
	"context"
	"encoding/csv"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/recibolabs/recibo/integrations/postgres"
)

var (
	exportDBURL   string
	exportFrom    string
	exportTo      string
	exportOutput  string
	exportTimeout int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored transactions to CSV",
	Long: `Exports stored transactions in a date range as CSV to a file or
stdout.

Examples:
  recibo export --db-url postgresql://... --from 2024-01-01 --to 2024-01-31 -o january.csv`,
	Run: func(cmd *cobra.Command, args []string) {
		log.SetOutput(os.Stdout)
		log.SetFlags(log.Ltime | log.Lmsgprefix)

		if exportDBURL == "" {
			exportDBURL = os.Getenv("DATABASE_URL")
			if exportDBURL == "" {
				log.Fatal("error: --db-url or DATABASE_URL environment variable is required")
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(exportTimeout)*time.Second)
		defer cancel()

		db, err := postgres.Connect(ctx, exportDBURL)
		if err != nil {
			log.Fatalf("error: database connection failed: %v", err)
		}
		defer db.Close()

		var txs []postgres.StoredTransaction
		if exportFrom == "" && exportTo == "" {
			txs, err = db.AllTransactions(ctx)
		} else {
			from, to := parseRange(exportFrom, exportTo)
			txs, err = db.TransactionsByDateRange(ctx, from, to)
		}
		if err != nil {
			log.Fatalf("error: query failed: %v", err)
		}

		out := os.Stdout
		if exportOutput != "" {
			f, err := os.Create(exportOutput)
			if err != nil {
				log.Fatalf("error: could not create output file: %v", err)
			}
			defer f.Close()
			out = f
		}

		if err := writeCSV(out, txs); err != nil {
			log.Fatalf("error: export failed: %v", err)
		}
		log.Printf("Exported %d transactions", len(txs))
	},
}

func writeCSV(out *os.File, txs []postgres.StoredTransaction) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"Transaction ID", "Date", "Description", "Amount", "Direction", "Category", "Merchant"}); err != nil {
		return err
	}
	for _, t := range txs {
		var date string
		if t.OccurredAt != nil {
			date = t.OccurredAt.Format(summaryDateLayout)
		}
		record := []string{
			t.TransactionID,
			date,
			t.Description,
			t.Amount.StringFixed(2),
			t.Direction,
			t.Category,
			t.Merchant,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportDBURL, "db-url", "", "PostgreSQL connection URL (or set DATABASE_URL env)")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Range start date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Range end date (YYYY-MM-DD, inclusive)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	exportCmd.Flags().IntVar(&exportTimeout, "timeout", 60, "Operation timeout in seconds")
}
