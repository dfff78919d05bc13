package cmd

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/recibolabs/recibo/integrations/postgres"
)

var (
	summaryDBURL   string
	summaryFrom    string
	summaryTo      string
	summaryTimeout int
)

const summaryDateLayout = "2006-01-02"

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show income/expense totals for a date range",
	Long: `Prints income and expense totals, counts and the net balance for
stored transactions in the given date range.

Examples:
  recibo summary --db-url postgresql://... --from 2024-01-01 --to 2024-01-31`,
	Run: func(cmd *cobra.Command, args []string) {
		log.SetOutput(os.Stdout)
		log.SetFlags(log.Ltime | log.Lmsgprefix)

		if summaryDBURL == "" {
			summaryDBURL = os.Getenv("DATABASE_URL")
			if summaryDBURL == "" {
				log.Fatal("error: --db-url or DATABASE_URL environment variable is required")
			}
		}

		from, to := parseRange(summaryFrom, summaryTo)

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(summaryTimeout)*time.Second)
		defer cancel()

		db, err := postgres.Connect(ctx, summaryDBURL)
		if err != nil {
			log.Fatalf("error: database connection failed: %v", err)
		}
		defer db.Close()

		s, err := db.Summarize(ctx, from, to)
		if err != nil {
			log.Fatalf("error: summary failed: %v", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(s)
	},
}

// parseRange resolves the --from/--to flags. Missing bounds default to an
// open range.
func parseRange(fromStr, toStr string) (time.Time, time.Time) {
	from := time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Now().AddDate(100, 0, 0)

	if fromStr != "" {
		t, err := time.ParseInLocation(summaryDateLayout, fromStr, time.UTC)
		if err != nil {
			log.Fatalf("error: invalid --from date %q: %v", fromStr, err)
		}
		from = t
	}
	if toStr != "" {
		t, err := time.ParseInLocation(summaryDateLayout, toStr, time.UTC)
		if err != nil {
			log.Fatalf("error: invalid --to date %q: %v", toStr, err)
		}
		// inclusive upper bound covers the whole day
		to = t.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().StringVar(&summaryDBURL, "db-url", "", "PostgreSQL connection URL (or set DATABASE_URL env)")
	summaryCmd.Flags().StringVar(&summaryFrom, "from", "", "Range start date (YYYY-MM-DD)")
	summaryCmd.Flags().StringVar(&summaryTo, "to", "", "Range end date (YYYY-MM-DD, inclusive)")
	summaryCmd.Flags().IntVar(&summaryTimeout, "timeout", 60, "Operation timeout in seconds")
}
