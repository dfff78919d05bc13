package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/recibolabs/recibo/parser"
)

// Embedded default configuration (from .recibo.yaml)
const defaultConfigYAML = `
categories:
  - keyword: supermercado
    category: groceries
  - keyword: almacen
    category: groceries
  - keyword: farmacia
    category: health
  - keyword: nafta
    category: transport
  - keyword: taxi
    category: transport
  - keyword: alquiler
    category: housing
  - keyword: expensas
    category: housing
  - keyword: luz
    category: utilities
  - keyword: internet
    category: utilities
  - keyword: telefono
    category: utilities
  - keyword: sueldo
    category: salary
  - keyword: honorarios
    category: salary
server:
  port: "8080"
  rate_limit: 10
  rate_window_seconds: 60
`

var (
	cfgFile string
	verbose bool
	rootCmd = &cobra.Command{
		Use:   "recibo [filename]",
		Short: "Parse payment receipts into structured transactions",
		Long: `recibo reads payment receipt text or PDFs and extracts a normalized
transaction record: amount, date, identifier, description, merchant,
direction and category.`,
		Args: cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				viper.Set("target", args[0])
				runParse(parseCmd, []string{})
				return
			}
			cmd.Help()
		},
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.recibo.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogging() {
	if !verbose {
		log.SetOutput(io.Discard)
	} else {
		log.SetFlags(log.Ltime | log.Lmsgprefix)
		log.SetPrefix("INFO: ")
	}
}

func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in current directory and home directory
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".recibo")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file found, use embedded default configuration
			if err := viper.ReadConfig(bytes.NewBufferString(defaultConfigYAML)); err != nil {
				fmt.Printf("Error loading embedded configuration: %v\n", err)
				os.Exit(1)
			}
		} else {
			fmt.Printf("Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}
}

// newParserFromConfig builds a parser with the category rules from the
// loaded configuration. Missing or empty rules fall back to the built-in
// defaults.
func newParserFromConfig() *parser.Parser {
	var rules []parser.CategoryRule
	if err := viper.UnmarshalKey("categories", &rules); err != nil {
		log.Printf("Error reading category rules, using defaults: %v", err)
		return parser.New()
	}
	return parser.NewWithCategories(rules)
}
