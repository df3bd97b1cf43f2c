package notifications

import (
	"context"
	"net/http"

	"github.com/phoolcraft/phool-backend/internal/orders"
	"github.com/phoolcraft/phool-backend/pkg/config"
)

// ChannelSheets labels spreadsheet deliveries in logs and metrics.
const ChannelSheets = "sheets"

// SheetsClient appends order rows through a Google Apps Script web app.
type SheetsClient struct {
	url  string
	http *http.Client
}

// NewSheetsClient returns nil when no script URL is configured.
func NewSheetsClient(cfg config.SheetsConfig, client *http.Client) *SheetsClient {
	if !cfg.Enabled() {
		return nil
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &SheetsClient{url: cfg.ScriptURL, http: client}
}

// AppendRow posts one order row. The script writes the fields in the
// sheet's column order.
func (c *SheetsClient) AppendRow(ctx context.Context, row orders.BackupEntry) error {
	row.Error = ""
	return postJSON(ctx, c.http, ChannelSheets, c.url, row)
}
