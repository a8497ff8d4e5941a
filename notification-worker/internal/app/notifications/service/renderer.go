package service

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"

	"spectre/notification-worker/internal/app/notifications/entity"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Email - готовое к отправке письмо
type Email struct {
	Subject string
	Body    string
}

type Renderer struct {
	templates    *template.Template
	businessName string
}

func NewRenderer(businessName string) (*Renderer, error) {
	tmpl, err := template.New("emails").
		Funcs(template.FuncMap{"money": FormatMoney}).
		ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &Renderer{templates: tmpl, businessName: businessName}, nil
}

// lineView - цены уже отформатированы, "" означает позицию без цены
type lineView struct {
	Name      string
	Quantity  int
	UnitPrice string
	LineTotal string
}

type emailView struct {
	Business string
	Quote    *entity.Quote
	Lines    []lineView
	Totals   *entity.Totals
}

// Render собирает письмо вида kind (entity.Kind*) по снимку заявки
func (r *Renderer) Render(kind string, quote *entity.Quote) (*Email, error) {
	var subject string
	switch kind {
	case entity.KindQuoteReceivedAdmin:
		subject = "Nouvelle demande de soumission - " + quote.Customer.Name
	case entity.KindQuoteReceivedCustomer:
		subject = "Nous avons bien reçu votre demande - " + r.businessName
	case entity.KindQuoteSent:
		subject = "Votre soumission - " + r.businessName
	default:
		return nil, fmt.Errorf("unknown notification kind %q", kind)
	}

	view := emailView{
		Business: r.businessName,
		Quote:    quote,
		Lines:    make([]lineView, 0, len(quote.Items)),
		Totals:   quote.Totals,
	}
	for _, item := range quote.Items {
		line := lineView{Name: item.Name, Quantity: item.Quantity}
		if item.UnitPrice != nil {
			line.UnitPrice = FormatMoney(*item.UnitPrice)
			line.LineTotal = FormatMoney(*item.UnitPrice * float64(item.Quantity))
		}
		view.Lines = append(view.Lines, line)
	}

	var body bytes.Buffer
	if err := r.templates.ExecuteTemplate(&body, kind+".html", view); err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", kind, err)
	}
	return &Email{Subject: subject, Body: body.String()}, nil
}

// FormatMoney - сумма в стиле fr-CA, округление до центов: 1234.5 -> "1 234,50 $"
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}

	s := strconv.FormatFloat(math.Abs(math.Round(v*100)/100), 'f', 2, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if v < 0 && s != "0.00" {
		b.WriteByte('-')
	}
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	b.WriteString(" $")
	return b.String()
}
