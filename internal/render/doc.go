// Package render produces the per-invoice outputs: an HTML invoice document
// and an xlsx workbook laid out from the invoice template.
package render

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"bills/internal/logger"
	"bills/pkg/models"
)

const invoiceHTMLTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Invoice {{.Ref}}</title>
  <style>
    * { box-sizing: border-box; }
    body {
      margin: 0;
      padding: 32px;
      font-family: "Helvetica Neue", Arial, sans-serif;
      color: #111827;
      background: #ffffff;
    }
    .invoice { max-width: 820px; margin: 0 auto; }
    .header {
      border-bottom: 2px solid #111827;
      padding-bottom: 16px;
      margin-bottom: 24px;
    }
    .meta { font-size: 14px; margin-bottom: 24px; }
    .meta .label { font-weight: bold; }
    .section { margin-bottom: 24px; }
    table { width: 100%; border-collapse: collapse; font-size: 14px; }
    th, td {
      padding: 10px;
      border-bottom: 1px solid #e5e7eb;
      text-align: left;
    }
    th {
      text-transform: uppercase;
      font-size: 11px;
      letter-spacing: 0.04em;
      color: #6b7280;
    }
    .group-title { font-weight: bold; font-size: 15px; margin: 16px 0 4px; }
    .totals {
      margin-top: 12px;
      display: flex;
      justify-content: flex-end;
      font-size: 16px;
    }
    .totals strong { margin-left: 12px; }
    .footer {
      border-top: 1px solid #e5e7eb;
      padding-top: 16px;
      font-size: 12px;
      color: #6b7280;
    }
  </style>
</head>
<body>
  <div class="invoice">
    <div class="header">
      <h1>Invoice</h1>
      <div><strong>{{.Address.Name}}</strong></div>
      <div>{{.Address.Address}}, {{.Address.PostCode}}, {{.Address.City}}</div>
      <div><a href="mailto:{{.Address.Epost}}">{{.Address.Epost}}</a></div>
    </div>

    <div class="meta">
      <div><span class="label">Created Date:</span> {{formatDate .Date}}</div>
      <div><span class="label">Reference:</span> {{.Ref}}</div>
      <div><span class="label">Period:</span> {{.Period}}</div>
    </div>

    {{range .Groups}}
    <div class="section">
      <div class="group-title">{{.Title}}</div>
      <table>
        <thead>
          <tr>
            <th>CRN</th>
            <th>Date and Time</th>
            <th>Amount</th>
          </tr>
        </thead>
        <tbody>
          {{range .Items}}
          <tr>
            <td>{{.CRN}}</td>
            <td>{{formatDateTime .AppointmentDateTime}}</td>
            <td>{{formatMoney .Amount}}</td>
          </tr>
          {{end}}
          <tr>
            <td></td>
            <td><strong>Total</strong></td>
            <td><strong>{{formatMoney .Amount}}</strong></td>
          </tr>
        </tbody>
      </table>
    </div>
    {{end}}

    <div class="totals">
      <span>Due</span>
      <strong>{{formatMoney .Total}}</strong>
    </div>

    <div class="footer">
      <div><strong>{{.Bank.Name}}</strong></div>
      <div>Account name: {{.Bank.Customer}}</div>
      <div>Sort code: {{.Bank.SortCode}} &middot; Account number: {{.Bank.Account}}</div>
      <div>Telephone: {{.Address.Telephone}}</div>
    </div>
  </div>
</body>
</html>
`

// Renderer writes invoice outputs into one output directory.
type Renderer struct {
	outDir string
	tpl    *template.Template
	log    zerolog.Logger
}

// New creates a renderer targeting outDir.
func New(outDir string) *Renderer {
	funcs := template.FuncMap{
		"formatMoney":    formatMoney,
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
	}
	return &Renderer{
		outDir: outDir,
		tpl:    template.Must(template.New("invoice").Funcs(funcs).Parse(invoiceHTMLTemplate)),
		log:    logger.WithComponent("render"),
	}
}

// Document renders the human-readable invoice document to
// <outDir>/<ref>-invoice.html.
func (r *Renderer) Document(inv models.Invoice) error {
	const op = "Document"

	path := filepath.Join(r.outDir, fmt.Sprintf("%s-invoice.html", inv.Ref))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%s: failed to create document: %w", op, err)
	}
	defer file.Close()

	if err := r.tpl.Execute(file, &inv); err != nil {
		return fmt.Errorf("%s: failed to render invoice %s: %w", op, inv.Ref, err)
	}

	r.log.Info().
		Str("ref", inv.Ref).
		Str("file", path).
		Msg("Invoice document rendered")

	return nil
}

func formatMoney(amount float64) string {
	return fmt.Sprintf("£%.2f", amount)
}

func formatDate(t time.Time) string {
	return t.Format("02-01-2006")
}

func formatDateTime(t time.Time) string {
	return t.Format("02-01-2006 15:04")
}
