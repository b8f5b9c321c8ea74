package sheets

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"redbird/internal"
	"redbird/internal/config"
	"redbird/internal/pipeline"
)

// Connector reads the live sign-up responses from Google Sheets.
type Connector struct {
	service       *sheetsapi.Service
	spreadsheetID string
	readRange     string
}

func NewConnector(ctx context.Context, cfg config.Config) (*Connector, error) {
	if err := cfg.Require("SHEETS_SPREADSHEET_ID", cfg.SheetsSpreadsheetID); err != nil {
		return nil, err
	}
	if err := cfg.Require("GOOGLE_CLIENT_ID", cfg.GoogleClientID); err != nil {
		return nil, err
	}
	if err := cfg.Require("GOOGLE_CLIENT_SECRET", cfg.GoogleClientSecret); err != nil {
		return nil, err
	}
	if err := cfg.Require("GOOGLE_REFRESH_TOKEN", cfg.GoogleRefreshToken); err != nil {
		return nil, err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.GoogleRedirectURI,
		Scopes:       []string{sheetsapi.SpreadsheetsReadonlyScope},
	}

	tokenSource := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GoogleRefreshToken})
	svc, err := sheetsapi.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		return nil, err
	}

	return &Connector{service: svc, spreadsheetID: cfg.SheetsSpreadsheetID, readRange: cfg.SheetsRange}, nil
}

func (c *Connector) Name() string { return "sheets" }

func (c *Connector) Load(ctx context.Context) (internal.Table, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, c.readRange).Context(ctx).Do()
	if err != nil {
		return internal.Table{}, fmt.Errorf("sheets values.get %s: %w", c.readRange, err)
	}
	return TableFromValues(resp.Values)
}

// TableFromValues turns a values.get payload into a table. Blank rows are
// skipped and short rows padded, as for the CSV.
func TableFromValues(values [][]interface{}) (internal.Table, error) {
	rows := make([]internal.RawRow, 0, len(values))
	for _, v := range values {
		row := make(internal.RawRow, len(v))
		blank := true
		for i, cell := range v {
			row[i] = strings.TrimSpace(fmt.Sprint(cell))
			if row[i] != "" {
				blank = false
			}
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	if len(rows) < 2 {
		return internal.Table{}, pipeline.ErrNoData
	}

	header := rows[0]
	for i := range rows[1:] {
		for len(rows[i+1]) < len(header) {
			rows[i+1] = append(rows[i+1], "")
		}
	}
	return internal.Table{Header: header, Rows: rows[1:]}, nil
}
