// Package receipts renders an HTML receipt for a submitted order. The UI
// prints or rasterizes the document; nothing here touches PDF generation.
package receipts

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/davidrangel/poscenter-gateway/pkg/money"
	"github.com/davidrangel/poscenter-gateway/pkg/posapi"
)

type lineView struct {
	Name      string
	Quantity  int
	UnitPrice string
	Discount  string
	LineTotal string
}

type receiptView struct {
	Number        string
	IssuedAt      string
	CustomerName  string
	Lines         []lineView
	Subtotal      string
	TotalDiscount string
	Delivery      string
	Total         string
	PaymentMethod string
	Notes         string
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Receipt {{.Number}}</title></head>
<body>
<h1>Receipt {{.Number}}</h1>
<p>Issued {{.IssuedAt}}{{if .CustomerName}} &mdash; {{.CustomerName}}{{end}}</p>
<table border="1" cellspacing="0" cellpadding="4">
<tr><th>Item</th><th>Qty</th><th>Unit</th><th>Discount</th><th>Total</th></tr>
{{range .Lines}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice}}</td><td>{{.Discount}}</td><td>{{.LineTotal}}</td></tr>
{{end}}</table>
<p>Subtotal: {{.Subtotal}}<br>
Discount: {{.TotalDiscount}}<br>
Delivery: {{.Delivery}}<br>
<strong>Total: {{.Total}}</strong></p>
<p>Payment: {{.PaymentMethod}}</p>
{{if .Notes}}<p>{{.Notes}}</p>{{end}}
</body>
</html>
`))

// RenderHTML produces the printable receipt for an order. The customer is
// optional; orders fetched by id alone still render.
func RenderHTML(order posapi.Order, customer *posapi.Customer) ([]byte, error) {
	view := receiptView{
		Number:        receiptNumber(order),
		IssuedAt:      issuedAt(order),
		Subtotal:      formatFloat(order.Subtotal),
		TotalDiscount: formatFloat(order.TotalDiscount),
		Delivery:      formatFloat(deliveryAmount(order)),
		Total:         formatFloat(order.Total),
		PaymentMethod: order.PaymentMethod,
		Notes:         order.Notes,
	}
	if customer != nil {
		view.CustomerName = strings.TrimSpace(customer.FirstName + " " + customer.LastName)
	}
	for _, item := range order.Items {
		unit := decimal.NewFromFloat(item.Price)
		subtotal := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		discount := effectiveDiscount(item, subtotal)
		view.Lines = append(view.Lines, lineView{
			Name:      item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: money.Format(money.RoundCents(unit)),
			Discount:  money.Format(discount),
			LineTotal: money.Format(money.RoundCents(subtotal.Sub(discount))),
		})
	}

	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("rendering receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func formatFloat(f float64) string {
	return money.Format(money.RoundCents(decimal.NewFromFloat(f)))
}

func effectiveDiscount(item posapi.OrderItem, subtotal decimal.Decimal) decimal.Decimal {
	amount := decimal.NewFromFloat(item.Discount)
	if item.DiscountType == "percent" {
		amount = subtotal.Mul(amount).Div(decimal.NewFromInt(100))
	}
	amount = money.RoundCents(amount)
	if amount.GreaterThan(subtotal) {
		return subtotal
	}
	return amount
}

func receiptNumber(order posapi.Order) string {
	if order.ID != "" {
		return order.ID
	}
	return "draft"
}

func issuedAt(order posapi.Order) string {
	at := order.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	return at.Format("2006-01-02 15:04")
}

func deliveryAmount(order posapi.Order) float64 {
	if !order.DeliveryEnabled {
		return 0
	}
	return order.DeliveryAmount
}
