package loads

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/jung-kurt/gofpdf"

	"dockboard/frontend/board"
)

// SheetData is one lane card printed for the loading crew.
type SheetData struct {
	TimeSlot  string
	Lane      board.Lane
	PrintedAt time.Time
}

func renderLoadingSheetPDF(sheet SheetData) ([]byte, error) {
	trailer := strings.TrimSpace(sheet.Lane.TrailerNo)
	if trailer == "" {
		trailer = board.DefaultTrailer
	}
	status := strings.TrimSpace(sheet.Lane.Status)
	if status == "" {
		status = "PL"
	}
	shipDate := strings.TrimSpace(sheet.Lane.ShipDate)
	if shipDate == "" {
		shipDate = "-"
	}

	barcodePNG, err := renderCode128PNG(trailer, 1200, 220)
	if err != nil {
		return nil, fmt.Errorf("render trailer barcode: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Loading sheet %s %s", sheet.TimeSlot, sheet.Lane.Name), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 26)
	pdf.CellFormat(0, 14, fmt.Sprintf("%s  |  %s", sheet.Lane.Name, sheet.TimeSlot), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, "Status: "+status, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, "Ship date: "+shipDate, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, "Printed: "+sheet.PrintedAt.Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	imageName := "trailer-barcode-" + trailer
	pdf.RegisterImageOptionsReader(imageName, opt, bytes.NewReader(barcodePNG))
	pageW, _ := pdf.GetPageSize()
	imgW := 150.0
	imgH := 30.0
	y := pdf.GetY() + 4
	pdf.ImageOptions(imageName, (pageW-imgW)/2, y, imgW, imgH, false, opt, 0, "")
	pdf.SetY(y + imgH + 2)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, "Trailer "+trailer, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	headers := []string{"Seq", "Planned", "Done", "LO code", "Picker", "Area", "Flag"}
	widths := []float64{18, 24, 24, 34, 34, 26, 30}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	// Core fonts are cp1252; picker names may carry other characters.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFont("Helvetica", "", 11)
	if len(sheet.Lane.Rows) == 0 {
		pdf.CellFormat(sumWidths(widths), 8, "No rows on this lane", "1", 1, "C", false, 0, "")
	}
	for _, row := range sheet.Lane.Rows {
		r, g, b := flagFill(row)
		pdf.SetFillColor(r, g, b)
		cells := []string{row.SeqText(), row.PlannedText(), row.DoneText(), row.LOCode, row.Picker, row.Area, flagLabel(row)}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 8, tr(c), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func flagLabel(row board.Row) string {
	switch {
	case row.Flags.Conflicted:
		return "CONFLICT"
	case row.Flags.Completed:
		return "DONE"
	case row.Flags.PickingActive:
		return "PICKING"
	default:
		return ""
	}
}

// Same colours as the board rows.
func flagFill(row board.Row) (int, int, int) {
	switch {
	case row.Flags.Conflicted:
		return 248, 215, 218
	case row.Flags.Completed:
		return 212, 237, 218
	case row.Flags.PickingActive:
		return 255, 243, 205
	default:
		return 255, 255, 255
	}
}

func sumWidths(ws []float64) float64 {
	total := 0.0
	for _, w := range ws {
		total += w
	}
	return total
}

func renderCode128PNG(value string, width, height int) ([]byte, error) {
	code, err := code128.Encode(value)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(code, width, height)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, toNRGBA(scaled)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
