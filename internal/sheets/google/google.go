package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	applog "pktracker/internal/log"
	ports "pktracker/internal/sheets"
)

// Config selects the spreadsheet, tab names and credentials.
type Config struct {
	SpreadsheetID string
	LedgerSheet   string
	AlertsSheet   string
	// CredentialsJSON takes precedence over CredentialsFile.
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ledgerSheet   string
	alertsSheet   string
	logger        *applog.Logger
}

var _ ports.LedgerWriter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *applog.Logger) (*Client, error) {
	creds, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}
	return newClient(ctx, cfg, logger,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

func newClient(ctx context.Context, cfg Config, logger *applog.Logger, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	c := &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		ledgerSheet:   orDefault(cfg.LedgerSheet, "Ledger"),
		alertsSheet:   orDefault(cfg.AlertsSheet, "Alerts"),
		logger:        logger.WithComponent(applog.ComponentSheets),
	}
	c.logger.InfoContext(ctx, "Google Sheets service created",
		"spreadsheet_id", c.spreadsheetID,
		"ledger_sheet", c.ledgerSheet,
		"alerts_sheet", c.alertsSheet)
	return c, nil
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}

// AppendEvent appends row after the last non-empty line of the ledger tab.
func (c *Client) AppendEvent(ctx context.Context, row ports.EventRow) (string, error) {
	return c.append(ctx, c.ledgerSheet, len(ports.EventColumns), row.Values())
}

// AppendAlert appends row to the alerts tab.
func (c *Client) AppendAlert(ctx context.Context, row ports.AlertRow) (string, error) {
	return c.append(ctx, c.alertsSheet, len(ports.AlertColumns), row.Values())
}

func (c *Client) append(ctx context.Context, sheet string, width int, values []any) (string, error) {
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:%c", sheet, 'A'+rune(width-1))
	vr := &gsheet.ValueRange{Values: [][]any{values}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", sheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.DebugContext(ctx, "Row appended", applog.FieldSheetRange, ref)
	return ref, nil
}
