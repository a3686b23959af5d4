package service

import (
	"strconv"
	"time"

	"github.com/kassahq/terminal-api/internal/domain/entity"
	"github.com/kassahq/terminal-api/pkg/printer"
)

// ReceiptService renders finalized sales as ESC/POS documents and drives the
// thermal printer. Printing is best-effort everywhere: a printer failure never
// affects the sale it documents.
type ReceiptService struct {
	printer     printer.Printer
	printerType string
	storeName   string
	charWidth   int
}

// NewReceiptService creates a new receipt service
func NewReceiptService(p printer.Printer, printerType, storeName string, charWidth int) *ReceiptService {
	if charWidth <= 0 {
		charWidth = 32
	}
	return &ReceiptService{
		printer:     p,
		printerType: printerType,
		storeName:   storeName,
		charWidth:   charWidth,
	}
}

// PrinterStatus describes the configured printer and its connection state.
type PrinterStatus struct {
	Type      string `json:"type"`
	Connected bool   `json:"connected"`
}

// Status returns the printer's connection state.
func (s *ReceiptService) Status() *PrinterStatus {
	return &PrinterStatus{
		Type:      s.printerType,
		Connected: s.printer.IsConnected(),
	}
}

// PrintSale renders and prints a receipt for a finalized sale. The rendered
// text is returned either way so the register UI can show it when no printer
// hardware is attached.
func (s *ReceiptService) PrintSale(sale *entity.PendingSale) (string, error) {
	doc := s.renderSale(sale)
	text := string(doc.Bytes())
	if err := s.printer.Print(doc.Bytes()); err != nil {
		return text, err
	}
	return text, nil
}

// TestPrint sends a short alignment page to the printer.
func (s *ReceiptService) TestPrint() (string, error) {
	doc := printer.NewDocument(s.charWidth)
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		Text(s.storeName).
		SetBold(false).
		Text("PRINTER TEST").
		SetAlign(printer.AlignLeft).
		Separator('-').
		KeyValue("Time", time.Now().Format("2006-01-02 15:04")).
		Separator('-').
		FeedLines(3).
		Cut()

	text := string(doc.Bytes())
	if err := s.printer.Print(doc.Bytes()); err != nil {
		return text, err
	}
	return text, nil
}

func (s *ReceiptService) renderSale(sale *entity.PendingSale) *printer.Document {
	doc := printer.NewDocument(s.charWidth)

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(s.storeName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if sale.IsReturn {
		doc.Text("*** RETURN ***")
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-').
		KeyValue("Receipt", shortID(sale.LocalID.String())).
		KeyValue("Register", sale.RegisterID).
		KeyValue("Date", sale.CreatedAt.Format("2006-01-02 15:04")).
		Separator('-')

	for _, item := range sale.Items {
		doc.ItemLine(item.Quantity, item.Name, formatAmount(item.UnitPrice*int64(item.Quantity)))
	}

	doc.Separator('-').
		SetBold(true).
		KeyValue("TOTAL", formatAmount(sale.Total)).
		SetBold(false).
		KeyValue("Paid", formatAmount(sale.Paid))

	if due := sale.Due(); due > 0 {
		doc.KeyValue("Balance due", formatAmount(due))
	} else if sale.Paid > sale.Total {
		doc.KeyValue("Change", formatAmount(sale.Paid-sale.Total))
	}

	doc.KeyValue("Payment", sale.PaymentType).
		Separator('-').
		SetAlign(printer.AlignCenter).
		Text("Thank you!").
		FeedLines(3).
		Cut()

	return doc
}

// formatAmount renders a whole-unit amount with thousands grouping, e.g.
// 1150000 -> "1 150 000".
func formatAmount(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ' ')
		}
		out = append(out, d)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
