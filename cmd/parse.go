package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/recibolabs/recibo/parser"
	"github.com/recibolabs/recibo/pdftext"
)

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse receipt(s) and print JSON",
	Long: `Parses a receipt PDF or text file, or every receipt in a directory,
and prints the extracted transaction records as JSON to stdout.`,
	Run: runParse,
}

func runParse(cmd *cobra.Command, args []string) {
	target := viper.GetString("target")
	log.Println("scanning", target)

	info, err := os.Stat(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	p := newParserFromConfig()
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if !info.IsDir() {
		if err := parseOne(p, target, enc); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(target, entry.Name())
		if err := parseOne(p, path, enc); err != nil {
			// keep going, a directory scan should not stop on one bad file
			log.Printf("skipping %s: %v", path, err)
		}
	}
}

// parseOne reads a single receipt file, parses it and writes the result.
// Parse failures are reported with the raw text so the caller can inspect
// what the receipt actually contained.
func parseOne(p *parser.Parser, path string, enc *json.Encoder) error {
	raw, err := readReceipt(path)
	if err != nil {
		return err
	}

	tx, err := p.Parse(raw)
	if err != nil {
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			return enc.Encode(map[string]string{
				"file":     path,
				"error":    perr.Error(),
				"raw_text": perr.RawText,
			})
		}
		return err
	}
	return enc.Encode(tx)
}

// readReceipt returns the receipt text for a file, extracting text from
// PDFs and reading anything else as plain text.
func readReceipt(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return pdftext.ExtractTextFromFile(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringP("folder", "f", ".", "File or folder in which recibo will scan for receipts")
	viper.BindPFlag("target", parseCmd.Flags().Lookup("folder"))
}
