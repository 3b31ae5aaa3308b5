package ingest

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/poweringeg/fichas-backend/internal/models"
)

// ParseWorkbook reads the monitoring export in XLSX form. It prefers the
// "Base" worksheet and falls back to the first one when the export was
// renamed. The first row is the header.
func ParseWorkbook(r io.Reader) ([]models.ServiceTicket, []string, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	sheet := SheetName
	if idx, err := book.GetSheetIndex(sheet); err != nil || idx < 0 {
		sheet = book.GetSheetName(0)
	}
	if sheet == "" {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := book.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	idx := headerIndex(rows[0])
	var tickets []models.ServiceTicket
	var softErrs []string
	for i, rec := range rows[1:] {
		if emptyRow(rec) {
			continue
		}
		ticket := decodeTicket(rec, idx)
		if ticket.TicketNumber == 0 && ticket.StoreLabel == "" && ticket.DocTypeLabel == "" {
			softErrs = append(softErrs, fmt.Sprintf("linha %d: sem número de ficha nem loja", i+2))
			continue
		}
		tickets = append(tickets, ticket)
	}
	return tickets, softErrs, nil
}
