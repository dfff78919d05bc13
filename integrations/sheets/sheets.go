// Package sheets appends parsed transactions to a Google Sheets worksheet,
// one row per record in a fixed column order.
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/recibolabs/recibo/parser"
)

const (
	worksheetRange = "Transactions!A:G"
	headerRange    = "Transactions!A1:G1"
	dateLayout     = "2006-01-02"
)

// Client wraps the Sheets API for the append-row sink.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
}

// New builds a client from a service-account credentials file.
func New(ctx context.Context, credentialsPath, spreadsheetID string) (*Client, error) {
	svc, err := sheets.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// HeaderRow returns the fixed column order of the worksheet.
func HeaderRow() []interface{} {
	return []interface{}{"Transaction ID", "Date", "Description", "Amount", "Direction", "Category", "Merchant"}
}

// Row converts a parsed transaction into a worksheet row. Absent fields
// become empty cells.
func Row(tx *parser.ParsedTransaction) []interface{} {
	var id, date, merchant string
	if tx.TransactionID != nil {
		id = *tx.TransactionID
	}
	if tx.OccurredAt != nil {
		date = tx.OccurredAt.Format(dateLayout)
	}
	if tx.Merchant != nil {
		merchant = *tx.Merchant
	}
	return []interface{}{
		id,
		date,
		tx.Description,
		tx.Amount.StringFixed(2),
		string(tx.Direction),
		tx.Category,
		merchant,
	}
}

// EnsureHeader writes the header row when the worksheet is still empty.
func (c *Client) EnsureHeader(ctx context.Context) error {
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, headerRange).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read header row: %w", err)
	}
	if len(resp.Values) > 0 {
		return nil
	}

	vr := &sheets.ValueRange{Values: [][]interface{}{HeaderRow()}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, headerRange, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	return nil
}

// Append adds one transaction as a new row at the end of the worksheet.
func (c *Client) Append(ctx context.Context, tx *parser.ParsedTransaction) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{Row(tx)}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, worksheetRange, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append transaction row: %w", err)
	}
	return nil
}
