package orders

import (
	"bytes"
	"fmt"
	"strings"

	"outfitorbit/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// RenderInvoice draws a one page A4 invoice for o. The QR code in the corner carries
// "<order id>|<total>" for counter staff to scan.
func RenderInvoice(storeName string, o models.Order) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, tr(storeName+" - Tax Invoice"))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, "Order: "+o.OrderID)
	pdf.Ln(6)
	pdf.Cell(0, 7, "Date: "+o.CreatedAt.Format("2 January 2006"))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Payment: %s (%s)", paymentLabel(o.PaymentMethod), o.PaymentStatus))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, "Deliver to")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 11)
	for _, line := range addressLines(o.Address) {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(5)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 10)
	widths := []float64{80, 20, 20, 30, 30}
	for i, h := range []string{"Item", "Size", "Qty", "Price", "Amount"} {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, it := range o.Items {
		pdf.CellFormat(widths[0], 7, tr(it.Product.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, it.Size, "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprint(it.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 7, Rupees(it.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, Rupees(it.LineTotal()), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	totals := [][2]string{
		{"Subtotal", Rupees(o.Pricing.Subtotal)},
		{"Shipping (" + string(o.Delivery) + ")", shippingLabel(o.Pricing.Shipping)},
		{"GST (18%)", Rupees(o.Pricing.Tax)},
		{"Total", Rupees(o.Pricing.Total)},
	}
	for i, row := range totals {
		if i == len(totals)-1 {
			pdf.SetFont("Arial", "B", 11)
		}
		pdf.CellFormat(150, 7, row[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, row[1], "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	qrPNG, err := qrcode.Encode(fmt.Sprintf("%s|%d", o.OrderID, o.Pricing.Total), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode invoice QR: %w", err)
	}
	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 160, 15, 35, 35, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Rupees formats a whole-rupee amount with Indian digit grouping, e.g. Rs. 1,23,456.
func Rupees(amount int64) string {
	sign := ""
	if amount < 0 {
		sign, amount = "-", -amount
	}
	s := fmt.Sprint(amount)
	if len(s) > 3 {
		head, tail := s[:len(s)-3], s[len(s)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		groups = append([]string{head}, groups...)
		s = strings.Join(groups, ",") + "," + tail
	}
	return "Rs. " + sign + s
}

func shippingLabel(fee int64) string {
	if fee == 0 {
		return "Free"
	}
	return Rupees(fee)
}

func paymentLabel(m models.PaymentMethod) string {
	if m == models.PaymentCOD {
		return "Cash on Delivery"
	}
	return "Card / UPI"
}

func addressLines(a models.Address) []string {
	lines := []string{a.FullName, a.Line1}
	if a.Line2 != "" {
		lines = append(lines, a.Line2)
	}
	lines = append(lines,
		fmt.Sprintf("%s, %s %s", a.City, a.State, a.Pincode),
		a.Country,
		"Phone: "+a.Phone)
	return lines
}
