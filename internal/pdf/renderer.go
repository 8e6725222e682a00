package pdf

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/formgate/formgate-api/internal/models"
)

// Renderer produces the PDF document attached to outgoing submission mail.
// The document is a single-page summary: a title block with the submission
// identifier, then one labelled row per field.
type Renderer struct {
	now func() time.Time
}

func NewRenderer() *Renderer {
	return &Renderer{now: time.Now}
}

// Render builds the PDF for one validated submission and returns its bytes.
// The submission identifier is embedded in the document metadata so the
// artifact stays correlatable with the mail it was attached to.
func (r *Renderer) Render(fields models.SanitizedFields, submissionID int64) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle("Contact form submission "+strconv.FormatInt(submissionID, 10), false)
	doc.SetSubject("Submission "+strconv.FormatInt(submissionID, 10), false)
	doc.SetAuthor("formgate-api", false)

	doc.SetMargins(20, 20, 20)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 18)
	doc.CellFormat(0, 10, "Contact Form Submission", "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(90, 90, 90)
	doc.CellFormat(0, 6, fmt.Sprintf("Submission ID: %d", submissionID), "", 1, "L", false, 0, "")
	doc.CellFormat(0, 6, "Received: "+r.now().UTC().Format(time.RFC1123), "", 1, "L", false, 0, "")
	doc.Ln(4)
	doc.SetTextColor(0, 0, 0)

	writeRow(doc, "Name", fields.Name)
	writeRow(doc, "Email", fields.Email)
	if fields.Company != "" {
		writeRow(doc, "Company", fields.Company)
	}
	if fields.Interest != "" {
		writeRow(doc, "Interest", fields.Interest)
	}

	doc.Ln(2)
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(0, 7, "Message", "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.MultiCell(0, 6, fields.Message, "", "L", false)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render submission document: %w", err)
	}

	return buf.Bytes(), nil
}

func writeRow(doc *fpdf.Fpdf, label, value string) {
	doc.SetFont("Helvetica", "B", 11)
	doc.CellFormat(35, 7, label, "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.MultiCell(0, 7, value, "", "L", false)
}
