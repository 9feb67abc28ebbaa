package mail

import (
	"bytes"
	"fmt"
	"html/template"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;background:#f0f9ff;margin:0;padding:24px">
<div style="max-width:600px;margin:0 auto;background:#ffffff;border-radius:8px;overflow:hidden">
<div style="background:#0e7490;color:#ffffff;padding:20px 24px"><h1 style="margin:0;font-size:22px">La Pesqueria Outfitters</h1></div>
<div style="padding:24px;color:#0f172a">{{template "body" .}}</div>
<div style="padding:16px 24px;font-size:12px;color:#64748b">South Padre Island, TX. {{if .UnsubscribeURL}}<a href="{{.UnsubscribeURL}}">Unsubscribe</a>{{end}}</div>
</div></body></html>{{end}}`

var templates = map[string]string{
	"order_confirmation": `{{define "body"}}<h2>Thanks for your order, {{.Name}}!</h2>
<p>Order <strong>#{{.OrderNumber}}</strong> is confirmed.</p>
<table style="width:100%;border-collapse:collapse">{{range .Items}}<tr><td>{{.Name}} &times; {{.Quantity}}</td><td style="text-align:right">${{printf "%.2f" .Total}}</td></tr>{{end}}</table>
<p>Subtotal: ${{printf "%.2f" .Subtotal}}<br>{{if .Discount}}Discount: -${{printf "%.2f" .Discount}}<br>{{end}}Shipping: ${{printf "%.2f" .Shipping}}<br>Tax: ${{printf "%.2f" .Tax}}<br><strong>Total: ${{printf "%.2f" .Total}}</strong></p>
<p>${{printf "%.2f" .Conservation}} of your purchase supports ocean conservation.</p>{{end}}`,

	"shipping_notification": `{{define "body"}}<h2>Your order is on the way, {{.Name}}!</h2>
<p>Order <strong>#{{.OrderNumber}}</strong> shipped via {{.Carrier}}.</p>
<p>Tracking number: <strong>{{.TrackingNumber}}</strong></p>{{end}}`,

	"welcome": `{{define "body"}}<h2>Welcome aboard, {{.Name}}!</h2>
<p>Your account is ready and we've added <strong>{{.Points}} reward points</strong> to get you started.</p>{{end}}`,

	"newsletter_welcome": `{{define "body"}}<h2>{{if .Returning}}Welcome back{{else}}Welcome{{end}}{{if .Name}}, {{.Name}}{{end}}!</h2>
<p>You'll get fishing reports, new gear drops and conservation news from the Laguna Madre.</p>{{end}}`,

	"campaign": `{{define "body"}}{{if .Preheader}}<p style="color:#64748b">{{.Preheader}}</p>{{end}}{{.Content}}{{end}}`,
}

var parsed = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(templates))
	for name, body := range templates {
		t := template.Must(template.New(name).Parse(layout))
		out[name] = template.Must(t.Parse(body))
	}
	return out
}()

func render(name string, data any) (string, error) {
	t, ok := parsed[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

// LineItem is a purchased line in a confirmation email.
type LineItem struct {
	Name     string
	Quantity int
	Total    float64
}

// OrderConfirmation is the data of the order confirmation email.
type OrderConfirmation struct {
	Name           string
	OrderNumber    string
	Items          []LineItem
	Subtotal       float64
	Discount       float64
	Shipping       float64
	Tax            float64
	Total          float64
	Conservation   float64
	UnsubscribeURL string
}

// ShippingNotification is the data of the shipment email.
type ShippingNotification struct {
	Name           string
	OrderNumber    string
	Carrier        string
	TrackingNumber string
	UnsubscribeURL string
}

// Welcome is the data of the account welcome email.
type Welcome struct {
	Name           string
	Points         int
	UnsubscribeURL string
}

// NewsletterWelcome is the data of the subscription email.
type NewsletterWelcome struct {
	Name           string
	Returning      bool
	UnsubscribeURL string
}

// Campaign is the data of a marketing email. Content is trusted HTML.
type Campaign struct {
	Preheader      string
	Content        template.HTML
	UnsubscribeURL string
}

func OrderConfirmationMessage(to string, d OrderConfirmation) (Message, error) {
	html, err := render("order_confirmation", d)
	return Message{To: to, Subject: fmt.Sprintf("Order Confirmation #%s - La Pesqueria Outfitters", d.OrderNumber), HTML: html}, err
}

func ShippingNotificationMessage(to string, d ShippingNotification) (Message, error) {
	html, err := render("shipping_notification", d)
	return Message{To: to, Subject: fmt.Sprintf("Your order #%s has shipped!", d.OrderNumber), HTML: html}, err
}

func WelcomeMessage(to string, d Welcome) (Message, error) {
	html, err := render("welcome", d)
	return Message{To: to, Subject: "Welcome to La Pesqueria Outfitters!", HTML: html}, err
}

func NewsletterWelcomeMessage(to string, d NewsletterWelcome) (Message, error) {
	html, err := render("newsletter_welcome", d)
	subject := "Welcome to the La Pesqueria newsletter!"
	if d.Returning {
		subject = "Welcome back to the La Pesqueria newsletter!"
	}
	return Message{To: to, Subject: subject, HTML: html}, err
}

func CampaignMessage(to, subject string, d Campaign) (Message, error) {
	html, err := render("campaign", d)
	return Message{To: to, Subject: subject, HTML: html}, err
}
