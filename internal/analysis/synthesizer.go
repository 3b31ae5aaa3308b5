package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/poweringeg/fichas-backend/internal/models"
)

// Urgency levels, driven by the number of tickets in urgency-contributing
// buckets.
const (
	UrgencyLow      = "BAIXO"
	UrgencyMedium   = "MEDIO"
	UrgencyHigh     = "ALTO"
	UrgencyCritical = "CRITICO"
)

// urgencyBuckets contribute to the urgency classification. Return-glass and
// missing-email are operational follow-ups, not urgency signals.
var urgencyBuckets = []string{
	BucketOpenTooLong,
	BucketOverdue,
	BucketAlertStatus,
	BucketMissingNotes,
	BucketStaleNotes,
}

var bucketTitles = map[string]string{
	BucketOpenTooLong:        "FS ABERTAS HÁ 5 OU MAIS DIAS QUE NÃO ESTÃO FINALIZADAS",
	BucketOverdue:            "FS QUE PASSARAM 2 OU MAIS DIAS DO AGENDAMENTO E NÃO ESTÃO CONCLUÍDAS",
	BucketAlertStatus:        "FS EM STATUS DE ALERTA (FALTA DOCUMENTOS, RECUSADO OU INCIDÊNCIA)",
	BucketMissingNotes:       "FS SEM NOTAS",
	BucketStaleNotes:         "FS CUJAS NOTAS NÃO SÃO ATUALIZADAS HÁ 5 OU MAIS DIAS",
	BucketReturnGlass:        "FS COM STATUS: DEVOLVE VIDRO E ENCERRA!",
	BucketMissingClientEmail: "FS SEM EMAIL DE CLIENTE",
}

var bucketActions = map[string][]string{
	BucketOpenTooLong: {
		"Contactar o cliente de cada processo para agendar ou concluir o serviço.",
		"Atualizar o status e registar notas após cada contacto.",
	},
	BucketOverdue: {
		"Confirmar com o cliente o motivo do não comparecimento ao agendamento.",
		"Reagendar de imediato ou encerrar o processo conforme a resposta.",
	},
	BucketAlertStatus: {
		"RECUSADO: confirmar com a seguradora o motivo da recusa e informar o cliente.",
		"FALTA DOCUMENTOS: solicitar de imediato os documentos em falta ao cliente.",
		"INCIDÊNCIA: escalar ao coordenador e registar o detalhe da ocorrência.",
	},
	BucketMissingNotes: {
		"Registar uma nota com o ponto de situação atual de cada processo.",
	},
	BucketStaleNotes: {
		"Rever cada processo e atualizar a nota com o estado atual.",
	},
}

// Synthesize turns one store group's categorization into its report:
// sorted buckets, urgency level, narrative recommendation and the
// presentation-ready HTML fragment. It never fails on data content; an
// unknown bucket key is a programmer error and panics.
func Synthesize(storeName string, storeNumber *int, isMobile bool, totalTickets int, cat Categorized) models.StoreReport {
	sortBucket(cat.Buckets[BucketOpenTooLong], func(t models.ServiceTicket) int { return t.DaysOpen })
	sortBucket(cat.Buckets[BucketOverdue], func(t models.ServiceTicket) int { return t.DaysSinceScheduled })
	sortBucket(cat.Buckets[BucketStaleNotes], func(t models.ServiceTicket) int { return t.DaysSinceNoteUpdate })

	issueCount := 0
	for _, name := range urgencyBuckets {
		issueCount += len(cat.Buckets[name])
	}

	report := models.StoreReport{
		StoreName:           storeName,
		StoreNumber:         storeNumber,
		IsMobileService:     isMobile,
		TotalTickets:        totalTickets,
		Buckets:             cat.Buckets,
		StatusCounts:        cat.StatusCounts,
		ReturnableGlassRefs: cat.ReturnableGlassRefs,
		UrgencyLevel:        UrgencyFor(issueCount),
	}
	report.Narrative = buildNarrative(report, issueCount)
	report.DocumentHTML = buildDocumentHTML(report)
	return report
}

// UrgencyFor classifies the urgency-contributing issue count.
func UrgencyFor(issueCount int) string {
	switch {
	case issueCount > 20:
		return UrgencyCritical
	case issueCount > 10:
		return UrgencyHigh
	case issueCount > 5:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

func sortBucket(tickets []models.ServiceTicket, key func(models.ServiceTicket) int) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return key(tickets[i]) > key(tickets[j])
	})
}

func buildNarrative(report models.StoreReport, issueCount int) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("PONTO DE SITUAÇÃO - %s", strings.ToUpper(report.StoreName)))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("A loja tem atualmente %d fichas de serviço em aberto que requerem atenção e acompanhamento.", report.TotalTickets))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("NÍVEL DE URGÊNCIA: %s", report.UrgencyLevel))
	lines = append(lines, "")

	if issueCount == 0 {
		lines = append(lines, "PARABÉNS! A loja não apresenta problemas significativos. Continuar o bom trabalho e manter os processos atualizados.")
		return strings.Join(lines, "\n")
	}

	section := 0
	for _, name := range urgencyBuckets {
		bucket := report.Buckets[name]
		if len(bucket) == 0 {
			continue
		}
		section++
		lines = append(lines, fmt.Sprintf("%d. %s: %d processos", section, bucketTitles[name], len(bucket)))
		for _, action := range bucketActions[name] {
			lines = append(lines, "   - "+action)
		}
		lines = append(lines, "")
	}

	switch report.UrgencyLevel {
	case UrgencyCritical:
		lines = append(lines, "PRAZO DE RESOLUÇÃO: situação crítica, iniciar a resolução HOJE e rever o relatório diariamente até estar tudo resolvido.")
	case UrgencyHigh:
		lines = append(lines, "PRAZO DE RESOLUÇÃO: resolver os processos identificados nas próximas 24 horas.")
	default:
		lines = append(lines, "PRAZO DE RESOLUÇÃO: resolver os processos identificados nas próximas 48 horas.")
	}
	return strings.Join(lines, "\n")
}

// dayAnnotation says which counter a bucket shows next to each ticket.
func dayAnnotation(bucket string, t models.ServiceTicket) string {
	switch bucket {
	case BucketOpenTooLong:
		return fmt.Sprintf(" (%d dias)", t.DaysOpen)
	case BucketOverdue:
		return fmt.Sprintf(" (%d dias)", t.DaysSinceScheduled)
	case BucketStaleNotes:
		return fmt.Sprintf(" (%d dias)", t.DaysSinceNoteUpdate)
	case BucketAlertStatus, BucketMissingNotes, BucketReturnGlass, BucketMissingClientEmail:
		return ""
	}
	panic("analysis: unknown bucket " + bucket)
}

var bucketAccents = map[string]string{
	BucketOpenTooLong:        "#c53030",
	BucketOverdue:            "#dd6b20",
	BucketAlertStatus:        "#dc2626",
	BucketMissingNotes:       "#ca8a04",
	BucketStaleNotes:         "#16a34a",
	BucketReturnGlass:        "#7c3aed",
	BucketMissingClientEmail: "#2563eb",
}

func buildDocumentHTML(report models.StoreReport) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto;">`)

	title := report.StoreName
	if report.StoreNumber != nil {
		title = fmt.Sprintf("%s (%d)", report.StoreName, *report.StoreNumber)
	}
	fmt.Fprintf(&b, `<h1 style="color: #1a365d; border-bottom: 2px solid #1a365d; padding-bottom: 10px;">%s</h1>`, title)

	if len(report.StatusCounts) > 0 {
		b.WriteString(`<div style="margin: 20px 0; padding: 15px; background: #f7fafc; border-radius: 8px;">`)
		b.WriteString(`<h3 style="margin: 0 0 10px 0; color: #2d3748;">QUANTIDADE DE PROCESSOS PARA INTERVIR POR STATUS</h3>`)
		b.WriteString(`<table style="width: 100%; border-collapse: collapse;">`)
		b.WriteString(`<tr style="background: #e2e8f0;"><th style="padding: 8px; text-align: left;">Status</th><th style="padding: 8px; text-align: center;">Quantidade</th></tr>`)
		for _, entry := range sortedStatusCounts(report.StatusCounts) {
			fmt.Fprintf(&b, `<tr><td style="padding: 8px; border: 1px solid #cbd5e0;">%s</td><td style="padding: 8px; text-align: center; border: 1px solid #cbd5e0;">%d</td></tr>`, entry.status, entry.count)
		}
		b.WriteString(`</table></div>`)
	}

	for _, name := range BucketNames {
		bucket := report.Buckets[name]
		if len(bucket) == 0 {
			continue
		}
		accent := bucketAccents[name]
		fmt.Fprintf(&b, `<div style="margin: 20px 0; padding: 15px; border-radius: 8px; border-left: 4px solid %s;">`, accent)
		fmt.Fprintf(&b, `<h3 style="margin: 0 0 10px 0; color: %s; text-transform: uppercase; font-weight: bold;">%s</h3>`, accent, bucketTitles[name])
		b.WriteString(`<table style="width: 100%; border-collapse: collapse;">`)
		for _, ticket := range bucket {
			b.WriteString(`<tr style="border-bottom: 1px solid #e5e7eb;">`)
			writeTicketCells(&b, name, ticket)
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</table>`)
		fmt.Fprintf(&b, `<p style="margin: 10px 0 0 0; font-weight: bold; color: %s;">Total: %d processos</p>`, accent, len(bucket))
		b.WriteString(`</div>`)
	}

	if len(report.ReturnableGlassRefs) > 0 {
		b.WriteString(`<div style="margin: 20px 0; padding: 15px; border-radius: 8px; border-left: 4px solid #db2777;">`)
		b.WriteString(`<h3 style="margin: 0 0 10px 0; color: #db2777; text-transform: uppercase; font-weight: bold;">EFETUAR DE FORMA IMEDIATA DEVOLUÇÕES DOS SEGUINTES VIDROS</h3>`)
		b.WriteString(`<table style="width: 100%; border-collapse: collapse;">`)
		b.WriteString(`<tr style="background: #fce7f3;"><th style="padding: 8px; text-align: left;">Referência</th></tr>`)
		for _, ref := range report.ReturnableGlassRefs {
			fmt.Fprintf(&b, `<tr><td style="padding: 8px; border: 1px solid #fbcfe8;">%s</td></tr>`, ref)
		}
		b.WriteString(`</table></div>`)
	}

	b.WriteString(`</div>`)
	return b.String()
}

// writeTicketCells renders one ticket row: FS number, plate, make/model,
// status with the bucket's day annotation.
func writeTicketCells(b *strings.Builder, bucket string, t models.ServiceTicket) {
	makeModel := strings.TrimSpace(t.Make + " " + t.Model)
	if makeModel == "" {
		makeModel = "-"
	}
	fmt.Fprintf(b, `<td style="padding: 6px 12px; white-space: nowrap;">FS %d</td>`, t.TicketNumber)
	fmt.Fprintf(b, `<td style="padding: 6px 12px; white-space: nowrap;"><b>%s</b></td>`, t.Plate)
	fmt.Fprintf(b, `<td style="padding: 6px 12px;">%s</td>`, makeModel)
	fmt.Fprintf(b, `<td style="padding: 6px 12px;"><b>%s</b>%s</td>`, t.Status, dayAnnotation(bucket, t))
}

type statusEntry struct {
	status string
	count  int
}

func sortedStatusCounts(counts map[string]int) []statusEntry {
	entries := make([]statusEntry, 0, len(counts))
	for status, count := range counts {
		entries = append(entries, statusEntry{status, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count == entries[j].count {
			return entries[i].status < entries[j].status
		}
		return entries[i].count > entries[j].count
	})
	return entries
}
