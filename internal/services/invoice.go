package services

import (
	"bytes"
	"fmt"
	"image/color"
	"os"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	types "github.com/yungbote/hatchbot-backend/internal/domain"
	"github.com/yungbote/hatchbot-backend/internal/platform/logger"
)

const (
	invoiceWidth  = 1240
	invoiceHeight = 1754
	invoiceMargin = 72.0

	invoiceLineH       = 36.0
	invoiceNoteLineH   = 30.0
	invoiceFooterLines = 2
	invoiceFooterLineH = 30.0

	invoiceSignatureMin = 120.0
	invoiceSignatureMax = 280.0
)

var (
	invoiceInk    = color.NRGBA{R: 0x21, G: 0x21, B: 0x21, A: 0xFF}
	invoiceAccent = color.NRGBA{R: 0x1B, G: 0x5E, B: 0x20, A: 0xFF}
	invoiceFaint  = color.NRGBA{R: 0x75, G: 0x75, B: 0x75, A: 0xFF}
)

var eatZone = time.FixedZone("EAT", 3*60*60)

type InvoiceService interface {
	Render(order types.Order) ([]byte, error)
}

type invoiceService struct {
	log     *logger.Logger
	regular *truetype.Font
	bold    *truetype.Font
}

// NewInvoiceService parses the invoice typefaces once. The embedded Go
// fonts are the default; INVOICE_FONT / INVOICE_FONT_BOLD point at brand
// TTF files when set.
func NewInvoiceService(log *logger.Logger) (InvoiceService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	svcLog := log.With("service", "InvoiceService")

	regular, err := loadInvoiceFont("INVOICE_FONT", goregular.TTF, svcLog)
	if err != nil {
		return nil, fmt.Errorf("could not load invoice font: %w", err)
	}
	bold, err := loadInvoiceFont("INVOICE_FONT_BOLD", gobold.TTF, svcLog)
	if err != nil {
		return nil, fmt.Errorf("could not load invoice bold font: %w", err)
	}

	return &invoiceService{log: svcLog, regular: regular, bold: bold}, nil
}

func loadInvoiceFont(envName string, fallback []byte, log *logger.Logger) (*truetype.Font, error) {
	raw := fallback
	if path := strings.TrimSpace(os.Getenv(envName)); path != "" {
		log.Info("Loading invoice font", "env", envName, "path", path)
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", envName, err)
		}
		raw = b
	}
	parsed, err := truetype.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse TTF: %w", err)
	}
	return parsed, nil
}

// invoiceLayout fixes every block's vertical position. The footer is
// pinned inside the bottom margin and the signature block absorbs the
// slack, clamped so the document is always exactly one page.
type invoiceLayout struct {
	CompanyY  float64
	TaglineY  float64
	TitleY    float64
	RuleY     float64
	MetaTopY  float64
	TableTopY float64
	TotalsY   float64
	NotesTopY float64

	SignatureTop float64
	SignatureH   float64

	FooterRuleY float64
	FooterTopY  float64
}

func computeInvoiceLayout(noteLines int) invoiceLayout {
	var l invoiceLayout

	l.CompanyY = invoiceMargin + 44
	l.TaglineY = l.CompanyY + 32
	l.TitleY = l.TaglineY + 62
	l.RuleY = l.TitleY + 22
	l.MetaTopY = l.RuleY + 52

	metaBottom := l.MetaTopY + 3*invoiceLineH
	l.TableTopY = metaBottom + 70
	tableBottom := l.TableTopY + 2*46
	l.TotalsY = tableBottom + 60
	totalsBottom := l.TotalsY + 44
	l.NotesTopY = totalsBottom + 64
	notesBottom := l.NotesTopY + float64(noteLines)*invoiceNoteLineH

	l.FooterTopY = invoiceHeight - invoiceMargin - float64(invoiceFooterLines-1)*invoiceFooterLineH
	l.FooterRuleY = l.FooterTopY - 42

	available := l.FooterRuleY - 36 - (notesBottom + 36)
	l.SignatureH = clampF(available, invoiceSignatureMin, invoiceSignatureMax)
	l.SignatureTop = l.FooterRuleY - 36 - l.SignatureH

	return l
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func invoiceNotes(order types.Order) []string {
	return []string{
		"Payment: " + paymentNote + ".",
		fmt.Sprintf("Delivery: %s (%s).", titleCase(order.DeliveryZone), order.EtaLabel),
		"Warranty: 12 months with free setup guidance.",
		"Prices do not include solar panels.",
	}
}

// Render draws the pro-forma invoice as a single-page PNG. It is a pure
// function of the order: same order in, same bytes out. Font faces are
// built per call because truetype faces are not safe for concurrent use.
func (s *invoiceService) Render(order types.Order) ([]byte, error) {
	if strings.TrimSpace(order.ID) == "" {
		return nil, fmt.Errorf("order id required")
	}

	notes := invoiceNotes(order)
	l := computeInvoiceLayout(len(notes))

	company44 := s.face(s.bold, 44)
	regular24 := s.face(s.regular, 24)
	title36 := s.face(s.bold, 36)
	label26 := s.face(s.bold, 26)
	body26 := s.face(s.regular, 26)
	total30 := s.face(s.bold, 30)
	note22 := s.face(s.regular, 22)

	dc := gg.NewContext(invoiceWidth, invoiceHeight)
	dc.SetColor(color.White)
	dc.Clear()

	right := float64(invoiceWidth) - invoiceMargin

	// Header
	dc.SetColor(invoiceAccent)
	dc.SetFontFace(company44)
	dc.DrawString(businessName, invoiceMargin, l.CompanyY)

	dc.SetColor(invoiceFaint)
	dc.SetFontFace(regular24)
	dc.DrawString("Leading incubators supplier in Kenya and East Africa", invoiceMargin, l.TaglineY)

	dc.SetColor(invoiceInk)
	dc.SetFontFace(title36)
	dc.DrawString("PRO FORMA INVOICE", invoiceMargin, l.TitleY)

	dc.SetColor(invoiceAccent)
	dc.SetLineWidth(3)
	dc.DrawLine(invoiceMargin, l.RuleY, right, l.RuleY)
	dc.Stroke()

	// Meta: customer block left, invoice block right
	dc.SetColor(invoiceInk)
	dc.SetFontFace(label26)
	dc.DrawString("Billed To:", invoiceMargin, l.MetaTopY)
	dc.SetFontFace(body26)
	dc.DrawString(order.CustomerName, invoiceMargin, l.MetaTopY+invoiceLineH)
	dc.DrawString(order.CustomerPhone, invoiceMargin, l.MetaTopY+2*invoiceLineH)
	dc.DrawString(titleCase(order.DeliveryZone), invoiceMargin, l.MetaTopY+3*invoiceLineH)

	metaRightX := float64(invoiceWidth)/2 + 60
	dc.DrawString("Invoice No: "+order.ID, metaRightX, l.MetaTopY)
	dc.DrawString("Date: "+order.CreatedAt.In(eatZone).Format("02 Jan 2006, 15:04")+" EAT", metaRightX, l.MetaTopY+invoiceLineH)
	dc.DrawString("Delivery: "+order.EtaLabel, metaRightX, l.MetaTopY+2*invoiceLineH)

	// Line-item table
	colItem := invoiceMargin
	colCapacity := invoiceMargin + 470.0
	colQty := invoiceMargin + 700.0
	colUnitRight := invoiceMargin + 930.0
	colAmountRight := right

	headerY := l.TableTopY
	rowY := headerY + 46

	dc.SetFontFace(label26)
	dc.DrawString("Item", colItem, headerY)
	dc.DrawString("Capacity", colCapacity, headerY)
	dc.DrawString("Qty", colQty, headerY)
	s.drawRight(dc, "Unit Price", colUnitRight, headerY)
	s.drawRight(dc, "Amount", colAmountRight, headerY)

	dc.SetColor(invoiceFaint)
	dc.SetLineWidth(1.5)
	dc.DrawLine(invoiceMargin, headerY+14, right, headerY+14)
	dc.Stroke()

	amount := types.FormatKSh(order.ItemPrice)
	dc.SetColor(invoiceInk)
	dc.SetFontFace(body26)
	dc.DrawString(order.ItemName, colItem, rowY)
	dc.DrawString(fmt.Sprintf("%d %s", order.ItemCapacity, categoryUnit(order.ItemCategory)), colCapacity, rowY)
	dc.DrawString("1", colQty, rowY)
	s.drawRight(dc, amount, colUnitRight, rowY)
	s.drawRight(dc, amount, colAmountRight, rowY)

	dc.SetColor(invoiceFaint)
	dc.DrawLine(invoiceMargin, rowY+14, right, rowY+14)
	dc.Stroke()

	// Totals
	dc.SetColor(invoiceInk)
	dc.SetFontFace(body26)
	s.drawRight(dc, "Subtotal:  "+amount, colAmountRight, l.TotalsY)
	dc.SetFontFace(total30)
	s.drawRight(dc, "TOTAL:  "+amount, colAmountRight, l.TotalsY+44)

	// Notes
	dc.SetFontFace(label26)
	dc.DrawString("Notes", invoiceMargin, l.NotesTopY-8)
	dc.SetFontFace(note22)
	for i, line := range notes {
		dc.DrawString(line, invoiceMargin, l.NotesTopY+float64(i+1)*invoiceNoteLineH)
	}

	// Signature block
	sigLineY := l.SignatureTop + l.SignatureH - 34
	sigW := 380.0
	dc.SetColor(invoiceInk)
	dc.SetLineWidth(1.5)
	dc.DrawLine(invoiceMargin, sigLineY, invoiceMargin+sigW, sigLineY)
	dc.DrawLine(right-sigW, sigLineY, right, sigLineY)
	dc.Stroke()
	dc.SetFontFace(note22)
	dc.SetColor(invoiceFaint)
	dc.DrawString("Customer Signature", invoiceMargin, sigLineY+28)
	dc.DrawString("For "+businessName, right-sigW, sigLineY+28)

	// Footer, pinned inside the bottom margin
	dc.SetColor(invoiceAccent)
	dc.SetLineWidth(2)
	dc.DrawLine(invoiceMargin, l.FooterRuleY, right, l.FooterRuleY)
	dc.Stroke()
	dc.SetColor(invoiceFaint)
	dc.SetFontFace(note22)
	s.drawCentered(dc, businessName+"  |  Call "+callLine+" / "+chicksCallLine, l.FooterTopY)
	s.drawCentered(dc, "Thank you for your business. Karibu!", l.FooterTopY+invoiceFooterLineH)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	s.log.Debug("Invoice rendered", "order_id", order.ID, "bytes", buf.Len())
	return buf.Bytes(), nil
}

func (s *invoiceService) face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func (s *invoiceService) drawRight(dc *gg.Context, text string, xRight, y float64) {
	w, _ := dc.MeasureString(text)
	dc.DrawString(text, xRight-w, y)
}

func (s *invoiceService) drawCentered(dc *gg.Context, text string, y float64) {
	w, _ := dc.MeasureString(text)
	dc.DrawString(text, (float64(invoiceWidth)-w)/2, y)
}
