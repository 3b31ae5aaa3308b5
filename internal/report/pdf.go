package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/poweringeg/fichas-backend/internal/analysis"
	"github.com/poweringeg/fichas-backend/internal/models"
)

var bucketHeadings = map[string]string{
	analysis.BucketOpenTooLong:        "Fichas abertas há 5 ou mais dias",
	analysis.BucketOverdue:            "Fichas com 2 ou mais dias após o agendamento",
	analysis.BucketAlertStatus:        "Fichas com status de alerta",
	analysis.BucketMissingNotes:       "Fichas sem notas",
	analysis.BucketStaleNotes:         "Fichas com notas desatualizadas",
	analysis.BucketReturnGlass:        "Vidros a devolver",
	analysis.BucketMissingClientEmail: "Fichas sem email do cliente",
}

// RenderPDF produces the printable version of a store report.
func RenderPDF(r models.StoreReport, analyzedAt time.Time) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(15, 15, 15)
	doc.SetAutoPageBreak(true, 15)
	doc.AddPage()

	tr := doc.UnicodeTranslatorFromDescriptor("")

	// Text logo, matching the email header.
	doc.SetFont("Helvetica", "BI", 22)
	doc.SetTextColor(229, 57, 53)
	doc.CellFormat(40, 10, "EXPRESS", "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 22)
	doc.SetTextColor(26, 54, 93)
	doc.CellFormat(40, 10, "GLASS", "", 1, "L", false, 0, "")

	doc.SetFont("Helvetica", "", 14)
	doc.SetTextColor(31, 41, 55)
	doc.CellFormat(0, 10, tr("Análise de Fichas de Serviço"), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(107, 114, 128)
	doc.CellFormat(0, 6, tr(formatDatePT(analyzedAt)), "", 1, "L", false, 0, "")
	doc.Ln(4)

	title := r.StoreName
	if r.StoreNumber != nil {
		title = fmt.Sprintf("%s (#%d)", r.StoreName, *r.StoreNumber)
	}
	doc.SetFont("Helvetica", "B", 13)
	doc.SetTextColor(31, 41, 55)
	doc.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.CellFormat(0, 6, tr(fmt.Sprintf("Total de fichas: %d   Nível de urgência: %s", r.TotalTickets, r.UrgencyLevel)), "", 1, "L", false, 0, "")
	doc.Ln(3)

	// Print warning strip.
	doc.SetFillColor(254, 243, 199)
	doc.SetTextColor(146, 64, 14)
	doc.SetFont("Helvetica", "B", 9)
	doc.MultiCell(0, 7, tr("IMPRIMIR ESTE RELATÓRIO E ATUAR EM CONFORMIDADE NOS PROCESSOS IDENTIFICADOS"), "1", "C", true)
	doc.Ln(4)

	doc.SetFont("Helvetica", "B", 11)
	doc.SetTextColor(31, 41, 55)
	doc.CellFormat(0, 7, tr("Resumo da Análise"), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 9)
	doc.SetTextColor(55, 65, 81)
	doc.MultiCell(0, 5, tr(r.Narrative), "", "L", false)
	doc.Ln(3)

	for _, bucket := range analysis.BucketNames {
		tickets := r.Buckets[bucket]
		if len(tickets) == 0 {
			continue
		}
		doc.SetFont("Helvetica", "B", 10)
		doc.SetTextColor(31, 41, 55)
		doc.CellFormat(0, 7, tr(fmt.Sprintf("%s (%d)", bucketHeadings[bucket], len(tickets))), "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 9)
		doc.SetTextColor(55, 65, 81)
		for _, ticket := range tickets {
			line := fmt.Sprintf("FS %d | %s | %s %s | %s", ticket.TicketNumber, ticket.Plate, ticket.Make, ticket.Model, ticket.Status)
			doc.CellFormat(0, 5, tr(line), "", 1, "L", false, 0, "")
		}
		doc.Ln(2)
	}

	if len(r.ReturnableGlassRefs) > 0 {
		doc.SetFont("Helvetica", "B", 10)
		doc.SetTextColor(31, 41, 55)
		doc.CellFormat(0, 7, tr("Referências de vidro a devolver"), "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 9)
		doc.SetTextColor(55, 65, 81)
		for _, ref := range r.ReturnableGlassRefs {
			doc.CellFormat(0, 5, tr(ref), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
