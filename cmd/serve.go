package cmd

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/recibolabs/recibo/api"
	"github.com/recibolabs/recibo/integrations/postgres"
	"github.com/recibolabs/recibo/integrations/sheets"
)

var (
	servePort        string
	serveDBURL       string
	serveSheetID     string
	serveCredentials string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Starts the HTTP API server that accepts receipt PDFs or raw text and
returns the parsed transaction as JSON. With a database URL configured,
successful parses are stored; with a spreadsheet configured they are
mirrored there too.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Configure logging for server mode
		log.SetOutput(os.Stdout)
		log.SetFlags(log.Ltime | log.Lmsgprefix)

		cfg := api.DefaultConfig()
		if servePort != "" {
			cfg.Port = ":" + servePort
		} else if p := viper.GetString("server.port"); p != "" {
			cfg.Port = ":" + p
		}
		cfg.LogPrefix = "SERVER: "
		cfg.APIKeys = viper.GetStringSlice("server.api_keys")
		if limit := viper.GetInt("server.rate_limit"); limit > 0 {
			cfg.RateLimit = limit
		}
		if window := viper.GetInt("server.rate_window_seconds"); window > 0 {
			cfg.RateWindow = time.Duration(window) * time.Second
		}

		if serveDBURL == "" {
			serveDBURL = os.Getenv("DATABASE_URL")
		}
		var db *postgres.DB
		if serveDBURL != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			var err error
			db, err = postgres.Connect(ctx, serveDBURL)
			if err != nil {
				cancel()
				log.Fatalf("Failed to connect to database: %v", err)
			}
			if err := db.EnsureSchema(ctx); err != nil {
				cancel()
				log.Fatalf("Failed to ensure schema: %v", err)
			}
			cancel()
			defer db.Close()
			cfg.StoreOnParse = true
		}

		var sheet *sheets.Client
		if serveSheetID != "" {
			if serveCredentials == "" {
				log.Fatal("error: --credentials is required with --sheet-id")
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			var err error
			sheet, err = sheets.New(ctx, serveCredentials, serveSheetID)
			if err != nil {
				cancel()
				log.Fatalf("Failed to create sheets client: %v", err)
			}
			if err := sheet.EnsureHeader(ctx); err != nil {
				cancel()
				log.Fatalf("Failed to ensure sheet header: %v", err)
			}
			cancel()
			cfg.AppendOnParse = true
		}

		server := api.New(cfg, newParserFromConfig())
		if db != nil {
			server.WithStore(db)
		}
		if sheet != nil {
			server.WithSheet(sheet)
		}

		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to run the API server on")
	serveCmd.Flags().StringVar(&serveDBURL, "db-url", "", "PostgreSQL connection URL (or set DATABASE_URL env)")
	serveCmd.Flags().StringVar(&serveSheetID, "sheet-id", "", "Google Sheets spreadsheet ID to mirror parses into")
	serveCmd.Flags().StringVar(&serveCredentials, "credentials", "", "Path to Google service account credentials JSON")
}
