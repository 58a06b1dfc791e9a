package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/destocard/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// InvoiceLine is one row of an invoice
type InvoiceLine struct {
	Title     string
	Seller    string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Total returns unit price × quantity
func (l InvoiceLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// InvoiceData is everything printed on an order invoice
type InvoiceData struct {
	Reference    string
	IssuedAt     time.Time
	PaidAt       *time.Time
	BuyerName    string
	BuyerEmail   string
	AddressLines []string
	Lines        []InvoiceLine
	Total        decimal.Decimal
	Currency     string
}

// InvoiceTemplate renders invoices to HTML
type InvoiceTemplate struct {
	tmpl *template.Template
}

var frenchTitle = cases.Title(language.French)

// NewInvoiceTemplate parses the built-in invoice layout
func NewInvoiceTemplate() (*InvoiceTemplate, error) {
	tmpl, err := template.New("invoice").Funcs(templateFuncs()).Parse(invoiceLayout)
	if err != nil {
		return nil, fmt.Errorf("parse invoice template: %w", err)
	}
	return &InvoiceTemplate{tmpl: tmpl}, nil
}

// Render executes the template against data
func (t *InvoiceTemplate) Render(data InvoiceData) (string, error) {
	if data.Reference == "" {
		return "", NewRenderError(ErrCodeInvalidHTML, "invoice reference is required", nil)
	}
	if data.Currency == "" {
		data.Currency = string(valueobject.DefaultCurrency)
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "invoice template execution failed", err)
	}
	return buf.String(), nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": func(amount decimal.Decimal, currency string) string {
			m, err := valueobject.NewMoney(amount, valueobject.Currency(strings.ToUpper(currency)))
			if err != nil {
				return amount.StringFixed(2)
			}
			return m.FormatFR()
		},
		"date": func(t time.Time) string {
			return t.Format("02/01/2006")
		},
		"title": func(s string) string {
			return frenchTitle.String(s)
		},
	}
}

const invoiceLayout = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="utf-8">
<title>Facture {{.Reference}}</title>
<style>
body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: 11pt; color: #222; }
h1 { font-size: 18pt; margin-bottom: 4px; }
.meta { color: #666; margin-bottom: 24px; }
.parties { display: flex; justify-content: space-between; margin-bottom: 24px; }
table { width: 100%; border-collapse: collapse; }
th, td { padding: 6px 8px; border-bottom: 1px solid #ddd; text-align: left; }
td.num, th.num { text-align: right; }
tfoot td { font-weight: bold; border-bottom: none; }
</style>
</head>
<body>
<h1>Facture {{.Reference}}</h1>
<div class="meta">Émise le {{date .IssuedAt}}{{with .PaidAt}} · Payée le {{date .}}{{end}}</div>
<div class="parties">
  <div>
    <strong>Destocard</strong><br>
    Marketplace de cartes Pokémon
  </div>
  <div>
    <strong>{{title .BuyerName}}</strong><br>
    {{.BuyerEmail}}{{range .AddressLines}}<br>{{.}}{{end}}
  </div>
</div>
<table>
  <thead>
    <tr><th>Article</th><th>Vendeur</th><th class="num">Qté</th><th class="num">Prix unitaire</th><th class="num">Total</th></tr>
  </thead>
  <tbody>
  {{- $currency := .Currency}}
  {{- range .Lines}}
    <tr><td>{{.Title}}</td><td>{{.Seller}}</td><td class="num">{{.Quantity}}</td><td class="num">{{money .UnitPrice $currency}}</td><td class="num">{{money .Total $currency}}</td></tr>
  {{- end}}
  </tbody>
  <tfoot>
    <tr><td colspan="4">Total TTC</td><td class="num">{{money .Total .Currency}}</td></tr>
  </tfoot>
</table>
</body>
</html>
`
