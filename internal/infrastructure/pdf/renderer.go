// Package pdf renders credential sheets: A4 pages holding a grid of QR codes,
// each captioned with the attendee name.
package pdf

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/skip2/go-qrcode"

	"qrentry/internal/domain/entities"
	"qrentry/internal/ports/output"
	"qrentry/pkg/credential"
)

var _ output.CredentialRenderer = (*Renderer)(nil)

const (
	margin   = 36.0
	cols     = 4
	rows     = 6
	perPage  = cols * rows
	fontSize = 10.0
	qrTopPad = 8.0
	nameGap  = 6.0
	namePad  = 4.0
)

// Layout is the fixed geometry of a credential sheet, in points.
type Layout struct {
	PageW, PageH float64
	CellW, CellH float64
	QRSize       float64
}

// A4 returns the layout of an A4 portrait sheet.
func A4() Layout {
	const pageW, pageH = 595.28, 841.89
	l := Layout{
		PageW: pageW,
		PageH: pageH,
		CellW: (pageW - 2*margin) / cols,
		CellH: (pageH - 2*margin) / rows,
	}
	l.QRSize = min(l.CellW*0.7, l.CellH*0.6)
	return l
}

// Slot locates the i-th credential: its zero-based page and the top-left
// corner of its QR image.
func (l Layout) Slot(i int) (page int, x, y float64) {
	page = i / perPage
	pos := i % perPage
	col, row := pos%cols, pos/cols
	cellX := margin + float64(col)*l.CellW
	cellY := margin + float64(row)*l.CellH
	return page, cellX + (l.CellW-l.QRSize)/2, cellY + qrTopPad
}

// Renderer implements output.CredentialRenderer with fpdf and go-qrcode.
type Renderer struct {
	layout Layout
	level  qrcode.RecoveryLevel
}

func NewRenderer() *Renderer {
	return &Renderer{layout: A4(), level: qrcode.Medium}
}

func (r *Renderer) ContentType() string { return "application/pdf" }

// Render draws one credential per attendee in the given order, starting a new
// page every 24 credentials.
func (r *Renderer) Render(ctx context.Context, attendees []entities.Attendee) ([]byte, error) {
	doc := fpdf.New("P", "pt", "A4", "")
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(false, 0)
	doc.SetFont("Helvetica", "", fontSize)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	// QR images are rasterised at four times their printed size.
	px := int(r.layout.QRSize * 4)
	lastPage := -1
	for i, a := range attendees {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, x, y := r.layout.Slot(i)
		if page != lastPage {
			doc.AddPage()
			lastPage = page
		}

		payload, err := credential.Encode(a.UID, a.Event)
		if err != nil {
			return nil, fmt.Errorf("encode credential %s: %w", a.UID, err)
		}
		png, err := qrcode.Encode(payload, r.level, px)
		if err != nil {
			return nil, fmt.Errorf("encode qr %s: %w", a.UID, err)
		}

		opts := fpdf.ImageOptions{ImageType: "PNG"}
		doc.RegisterImageOptionsReader(a.UID, opts, bytes.NewReader(png))
		doc.ImageOptions(a.UID, x, y, r.layout.QRSize, r.layout.QRSize, false, opts, 0, "")

		cellX := x - (r.layout.CellW-r.layout.QRSize)/2
		doc.SetXY(cellX+namePad, y+r.layout.QRSize+nameGap)
		doc.MultiCell(r.layout.CellW-2*namePad, fontSize*1.2, tr(a.Name), "", "C", false)

		if err := doc.Error(); err != nil {
			return nil, fmt.Errorf("draw credential %s: %w", a.UID, err)
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
