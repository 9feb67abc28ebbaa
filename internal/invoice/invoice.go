// Package invoice renders order invoices as PDF documents.
package invoice

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
)

// Seller is the issuing store printed in the invoice header.
type Seller struct {
	Name  string
	Email string
}

// Render writes a PDF invoice for o to w.
func Render(w io.Writer, seller Seller, o *entity.Order) error {
	pdf := gofpdf.New("P", "mm", "Letter", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Invoice %s", o.OrderNumber), true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 10, tr(seller.Name), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, tr(seller.Email), "", 1, "L", false, 0, "")
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, fmt.Sprintf("Invoice #%s", o.OrderNumber), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 5, fmt.Sprintf("Date: %s", o.CreatedAt.Format("January 2, 2006")), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Status: %s", o.Status), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(0, 6, "Bill To", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, line := range []string{
		o.CustomerName,
		o.CustomerEmail,
		o.ShippingAddress,
		fmt.Sprintf("%s, %s %s", o.ShippingCity, o.ShippingState, o.ShippingZip),
		o.ShippingCountry,
	} {
		if line == "" || line == ",  " {
			continue
		}
		pdf.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(14, 116, 144)
	pdf.SetTextColor(255, 255, 255)
	pdf.CellFormat(90, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 8, "SKU", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(25, 8, "Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(25, 8, "Total", "1", 1, "R", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	pdf.SetFont("Arial", "", 10)
	for _, it := range o.Items {
		name := it.ProductName
		if it.VariantName != "" {
			name = fmt.Sprintf("%s (%s)", it.ProductName, it.VariantName)
		}
		pdf.CellFormat(90, 7, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, tr(it.SKU), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", it.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(25, 7, money(it.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, money(it.Price*float64(it.Quantity)), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	total := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.CellFormat(165, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, value, "", 1, "R", false, 0, "")
	}
	total("Subtotal", money(o.Subtotal), false)
	if o.Discount > 0 {
		total("Discount", "-"+money(o.Discount), false)
	}
	total("Shipping", money(o.Shipping), false)
	total("Tax", money(o.Tax), false)
	total("Total", money(o.Total), true)
	pdf.Ln(6)

	if o.ConservationAmount > 0 {
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, fmt.Sprintf("%s of this order supports ocean conservation. Thank you!", money(o.ConservationAmount)), "", "C", false)
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build invoice: %w", err)
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write invoice: %w", err)
	}
	return nil
}

// Bytes renders the invoice into memory.
func Bytes(seller Seller, o *entity.Order) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, seller, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
