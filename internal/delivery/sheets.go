package delivery

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"taicc-readiness/internal/model"
)

// RowAppender appends one result row to the shared spreadsheet.
type RowAppender interface {
	AppendRow(ctx context.Context, row model.ResultRow) error
}

type sheetsAppender struct {
	svc           *sheets.Service
	spreadsheetID string
	sheet         string
}

// NewSheetsAppender authenticates with a service account file. It returns
// nil, nil when the spreadsheet is not configured.
func NewSheetsAppender(ctx context.Context, credentialsFile, spreadsheetID, sheet string) (RowAppender, error) {
	if credentialsFile == "" || spreadsheetID == "" {
		return nil, nil
	}
	if sheet == "" {
		sheet = "Sheet1"
	}
	a, err := newSheetsAppender(ctx, spreadsheetID, sheet,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func newSheetsAppender(ctx context.Context, spreadsheetID, sheet string, opts ...option.ClientOption) (*sheetsAppender, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("spreadsheet client setup failed: %w", err)
	}
	return &sheetsAppender{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet}, nil
}

func (a *sheetsAppender) AppendRow(ctx context.Context, row model.ResultRow) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{row.Values()}}
	_, err := a.svc.Spreadsheets.Values.
		Append(a.spreadsheetID, a.sheet+"!A1", vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("spreadsheet append failed: %w", err)
	}
	return nil
}
