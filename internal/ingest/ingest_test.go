package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const sampleCSV = `NMDOS,Lojas,OBRANO,Matricula,Status,Nº Dias Aberto:,Dias Nota:,OBS,EMAIL,Marca,Modelo,REF,Fechado
Ficha Servico 7,Guimarães,4711,AA-11-BB,AUTORIZADO,6,2,cliente contactado,cliente@mail.pt,Renault,Clio,EG-77,0
Ficha S.Movel 7-Leiria,Serviço Móvel Leiria,4712,CC-22-DD,RECUSADO,3,1,aguarda seguradora,,Fiat,Punto,,Sim
,,,,,,,,,,,,
`

func TestParseCSV(t *testing.T) {
	tickets, softErrs, err := ParseCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(softErrs) != 0 {
		t.Fatalf("unexpected soft errors: %v", softErrs)
	}
	if len(tickets) != 2 {
		t.Fatalf("expected 2 tickets (empty row skipped), got %d", len(tickets))
	}

	first := tickets[0]
	if first.DocTypeLabel != "Ficha Servico 7" || first.StoreLabel != "Guimarães" {
		t.Fatalf("unexpected labels: %+v", first)
	}
	if first.TicketNumber != 4711 || first.DaysOpen != 6 || first.DaysSinceNoteUpdate != 2 {
		t.Fatalf("unexpected counters: %+v", first)
	}
	if first.ClientEmail != "cliente@mail.pt" || first.GlassRef != "EG-77" {
		t.Fatalf("unexpected fields: %+v", first)
	}
	if first.Closed {
		t.Fatalf("expected open ticket")
	}

	second := tickets[1]
	if second.Status != "RECUSADO" || second.ClientEmail != "" {
		t.Fatalf("unexpected second ticket: %+v", second)
	}
	if !second.Closed {
		t.Fatalf("expected Sim to coerce to closed")
	}
}

func TestParseCSVHeadersAreCaseInsensitive(t *testing.T) {
	csv := "nmdos,LOJA,obrano\nFicha Servico 3,Porto,99\n"
	tickets, _, err := ParseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(tickets) != 1 || tickets[0].StoreLabel != "Porto" || tickets[0].TicketNumber != 99 {
		t.Fatalf("unexpected tickets: %+v", tickets)
	}
}

func TestParseCSVMissingHeader(t *testing.T) {
	_, _, err := ParseCSV(strings.NewReader(""))
	if err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func buildWorkbook(t *testing.T, sheet string) *bytes.Buffer {
	t.Helper()
	book := excelize.NewFile()
	defer book.Close()
	if sheet != "Sheet1" {
		if err := book.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	}
	rows := [][]interface{}{
		{"NMDOS", "Lojas", "OBRANO", "Status", "Nº Dias Aberto:", "OBS"},
		{"Ficha Servico 18", "Braga", 300, "EM CURSO", 12, "falta notas"},
		{"Ficha Servico 18", "Braga", 301, "AUTORIZADO", "3.0", "ok"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := book.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := book.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func TestParseWorkbook(t *testing.T) {
	buf := buildWorkbook(t, SheetName)
	tickets, softErrs, err := ParseWorkbook(buf)
	if err != nil {
		t.Fatalf("parse workbook: %v", err)
	}
	if len(softErrs) != 0 {
		t.Fatalf("unexpected soft errors: %v", softErrs)
	}
	if len(tickets) != 2 {
		t.Fatalf("expected 2 tickets, got %d", len(tickets))
	}
	if tickets[0].TicketNumber != 300 || tickets[0].DaysOpen != 12 {
		t.Fatalf("unexpected first ticket: %+v", tickets[0])
	}
	// Counters exported as floats still coerce.
	if tickets[1].DaysOpen != 3 {
		t.Fatalf("expected float counter coerced to 3, got %d", tickets[1].DaysOpen)
	}
}

func TestParseWorkbookFallsBackToFirstSheet(t *testing.T) {
	buf := buildWorkbook(t, "Exportação")
	tickets, _, err := ParseWorkbook(buf)
	if err != nil {
		t.Fatalf("parse workbook: %v", err)
	}
	if len(tickets) != 2 {
		t.Fatalf("expected fallback to first sheet, got %d tickets", len(tickets))
	}
}

func TestParseWorkbookRejectsGarbage(t *testing.T) {
	_, _, err := ParseWorkbook(strings.NewReader("not a zip archive"))
	if err == nil {
		t.Fatalf("expected error for non-xlsx payload")
	}
}
