package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/IICPAS/IICPAS-sub003/internal/models"
)

var (
	receiptTmpl = template.Must(template.New("receipt").Parse(
		`<p>Hi {{.Name}},</p><p>Your payment of <b>{{printf "%.2f" .Amount}}</b> for <b>{{.Course}}</b> ({{.Session}}) is {{.Status}}. You can start learning now.</p>`))
	rejectionTmpl = template.Must(template.New("rejection").Parse(
		`<p>Hi {{.Name}},</p><p>Your payment for <b>{{.Course}}</b> was rejected.</p>{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}`))
	invoiceTmpl = template.Must(template.New("invoice").Parse(
		`<p>Your kit order <b>{{.Order}}</b> is paid.</p><table>{{range .Lines}}<tr><td>{{.KitName}}</td><td>{{.Quantity}}</td><td>{{printf "%.2f" .Price}}</td></tr>{{end}}</table><p>Discount: {{printf "%.0f" .Discount}}%</p><p>Total paid: <b>{{printf "%.2f" .Payable}}</b></p>`))
)

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

func TransactionReceipt(t models.Transaction) Message {
	data := map[string]any{
		"Name":    t.StudentName,
		"Amount":  t.Amount,
		"Course":  t.CourseTitle,
		"Session": t.SessionType,
		"Status":  t.Status,
	}
	return Message{
		To:      t.StudentEmail,
		Subject: "Payment receipt: " + t.CourseTitle,
		Text:    fmt.Sprintf("Your payment of %.2f for %s (%s) is %s.", t.Amount, t.CourseTitle, t.SessionType, t.Status),
		HTML:    render(receiptTmpl, data),
	}
}

func TransactionRejected(t models.Transaction) Message {
	data := map[string]any{
		"Name":   t.StudentName,
		"Course": t.CourseTitle,
		"Reason": t.RejectedReason,
	}
	return Message{
		To:      t.StudentEmail,
		Subject: "Payment rejected: " + t.CourseTitle,
		Text:    fmt.Sprintf("Your payment for %s was rejected. %s", t.CourseTitle, t.RejectedReason),
		HTML:    render(rejectionTmpl, data),
	}
}

func KitInvoice(email string, o models.KitOrder) Message {
	data := map[string]any{
		"Order":    o.ID.String(),
		"Lines":    o.Lines,
		"Discount": o.BulkDiscountPercent,
		"Payable":  o.Payable,
	}
	return Message{
		To:      email,
		Subject: "Invoice for kit order " + o.ID.String(),
		Text:    fmt.Sprintf("Kit order %s is paid. Total: %.2f", o.ID, o.Payable),
		HTML:    render(invoiceTmpl, data),
	}
}

func KitPaymentRejected(p models.Payment) Message {
	return Message{
		To:      p.StudentEmail,
		Subject: "Kit order payment rejected",
		Text:    fmt.Sprintf("Your payment for kit order %s was rejected. %s", p.KitOrderID, p.RejectedReason),
	}
}
