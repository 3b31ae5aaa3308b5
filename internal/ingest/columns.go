package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/poweringeg/fichas-backend/internal/models"
)

// SheetName is the worksheet the monitoring export normally uses. The first
// sheet is the fallback.
const SheetName = "Base"

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2006-01-02 15:04:05", time.RFC3339}

func headerIndex(headers []string) map[string]int {
	idx := map[string]int{}
	for i, h := range headers {
		if h == "" {
			continue
		}
		idx[normalizeHeader(h)] = i
	}
	return idx
}

func normalizeHeader(h string) string {
	h = strings.ReplaceAll(h, "\uFEFF", "")
	return strings.ToLower(strings.TrimSpace(h))
}

func getField(rec []string, idx map[string]int, name string) string {
	pos, ok := idx[name]
	if !ok || pos >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[pos])
}

func getFieldAny(rec []string, idx map[string]int, names ...string) string {
	for _, name := range names {
		if v := getField(rec, idx, normalizeHeader(name)); v != "" {
			return v
		}
	}
	return ""
}

func parseIntField(v string) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	// Excel exports sometimes carry counters as "12.0".
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return int(f)
	}
	return 0
}

func parseDateField(v string) *time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}

func parseBoolField(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "sim"
}

// decodeTicket coerces one raw row into a ServiceTicket. Column names follow
// the monitoring export; every field is optional and defaults to zero/empty.
func decodeTicket(rec []string, idx map[string]int) models.ServiceTicket {
	return models.ServiceTicket{
		RowRef:              getFieldAny(rec, idx, "bostamp"),
		DocTypeLabel:        getFieldAny(rec, idx, "nmdos"),
		StoreLabel:          getFieldAny(rec, idx, "lojas", "loja"),
		Manager:             getFieldAny(rec, idx, "gestor"),
		Coordinator:         getFieldAny(rec, idx, "coordenador"),
		TicketNumber:        parseIntField(getFieldAny(rec, idx, "obrano")),
		Plate:               getFieldAny(rec, idx, "matricula"),
		OpenedAt:            parseDateField(getFieldAny(rec, idx, "dataobra")),
		DaysOpen:            parseIntField(getFieldAny(rec, idx, "nº dias aberto:", "no dias aberto:", "dias aberto")),
		ScheduledAt:         parseDateField(getFieldAny(rec, idx, "dataserviço", "dataservico")),
		DaysSinceScheduled:  parseIntField(getFieldAny(rec, idx, "nº dias executado", "no dias executado", "dias executado")),
		StartTime:           getFieldAny(rec, idx, "hora_inicio"),
		EndTime:             getFieldAny(rec, idx, "hora_fim"),
		Status:              getFieldAny(rec, idx, "status"),
		NoteUpdatedAt:       parseDateField(getFieldAny(rec, idx, "dta nota")),
		DaysSinceNoteUpdate: parseIntField(getFieldAny(rec, idx, "dias nota:", "dias nota")),
		Notes:               getFieldAny(rec, idx, "obs"),
		ClientEmail:         getFieldAny(rec, idx, "email"),
		InsuredName:         getFieldAny(rec, idx, "segurado"),
		Make:                getFieldAny(rec, idx, "marca"),
		Model:               getFieldAny(rec, idx, "modelo"),
		GlassRef:            getFieldAny(rec, idx, "ref"),
		Eurocode:            getFieldAny(rec, idx, "eurocode"),
		InvoiceNumber:       parseIntField(getFieldAny(rec, idx, "nrfactura")),
		InvoiceSeries:       getFieldAny(rec, idx, "seriefcatura", "seriefactura"),
		ClaimNumber:         getFieldAny(rec, idx, "nrsinistro"),
		Warehouse:           parseIntField(getFieldAny(rec, idx, "armazem")),
		Closed:              parseBoolField(getFieldAny(rec, idx, "fechado")),
		DamageDetail:        getFieldAny(rec, idx, "detalhe_danos"),
		InsuredContact:      getFieldAny(rec, idx, "u_contsega"),
		ClientName:          getFieldAny(rec, idx, "nome"),
	}
}

func emptyRow(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
