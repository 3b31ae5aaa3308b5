package ingest

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/poweringeg/fichas-backend/internal/models"
)

// ParseCSV reads the monitoring export in CSV form. Rows that cannot be read
// are reported as soft errors; the batch keeps going.
func ParseCSV(r io.Reader) ([]models.ServiceTicket, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}
	idx := headerIndex(headers)

	var tickets []models.ServiceTicket
	var softErrs []string
	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			softErrs = append(softErrs, fmt.Sprintf("linha %d: %v", line, err))
			continue
		}
		if emptyRow(rec) {
			continue
		}
		tickets = append(tickets, decodeTicket(rec, idx))
	}
	return tickets, softErrs, nil
}
