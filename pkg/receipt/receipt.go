// Package receipt renders parking receipts and delivers them by email.
package receipt

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Receipt is the printable summary of a completed kiosk session
type Receipt struct {
	SiteID             string    `json:"siteId"`
	SiteName           string    `json:"siteName"`
	Reference          string    `json:"reference"`
	RegistrationNumber string    `json:"registrationNumber"`
	Nickname           string    `json:"nickname,omitempty"`
	Option             string    `json:"option"`
	AmountLabel        string    `json:"amount,omitempty"`
	ParkingEndTime     string    `json:"parkingEndTime"`
	IssuedAt           time.Time `json:"issuedAt"`
}

// QRPayload is the text encoded in the receipt's QR code. Enforcement staff
// scan it to check a vehicle's stay.
func (r Receipt) QRPayload() string {
	return strings.Join([]string{r.SiteID, r.RegistrationNumber, r.ParkingEndTime, r.Reference}, "|")
}

// QRCode encodes payload as a PNG of the given pixel size
func QRCode(payload string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

// Render produces a single page PDF receipt with an embedded QR code
func Render(r Receipt) ([]byte, error) {
	qrPNG, err := QRCode(r.QRPayload(), 256)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, tr(orDefault(r.SiteName, "Parking receipt")))
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 12)
	lines := [][2]string{
		{"Registration", r.RegistrationNumber},
		{"Option", r.Option},
		{"Amount paid", orDefault(r.AmountLabel, "-")},
		{"Parking ends", r.ParkingEndTime},
		{"Reference", orDefault(r.Reference, "-")},
		{"Issued", r.IssuedAt.Format("02/01/2006 15:04")},
	}
	if r.Nickname != "" {
		lines = append(lines, [2]string{"Donor", r.Nickname})
	}
	for _, l := range lines {
		pdf.CellFormat(40, 8, tr(l[0]+":"), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 8, tr(l[1]), "", 1, "L", false, 0, "")
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 44, pdf.GetY()+8, 60, 60, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
