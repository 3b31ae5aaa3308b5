package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/poweringeg/fichas-backend/internal/analysis"
	"github.com/poweringeg/fichas-backend/internal/models"
)

var ptMonths = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

func formatDatePT(t time.Time) string {
	return fmt.Sprintf("%02d de %s de %d", t.Day(), ptMonths[t.Month()-1], t.Year())
}

func metricColor(count int, accent string) string {
	if count > 0 {
		return accent
	}
	return "#059669"
}

// BuildEmailHTML wraps a store report into the full email document: header,
// print warning, metric strip, narrative, deadlines and the detail fragment.
func BuildEmailHTML(r models.StoreReport, analyzedAt time.Time) string {
	numberText := ""
	if r.StoreNumber != nil {
		numberText = fmt.Sprintf(" (#%d)", *r.StoreNumber)
	}

	openCount := len(r.Buckets[analysis.BucketOpenTooLong])
	overdueCount := len(r.Buckets[analysis.BucketOverdue])
	alertCount := len(r.Buckets[analysis.BucketAlertStatus])
	missingNotes := len(r.Buckets[analysis.BucketMissingNotes])
	staleNotes := len(r.Buckets[analysis.BucketStaleNotes])
	issueCount := openCount + overdueCount + alertCount + missingNotes + staleNotes

	narrative := strings.ReplaceAll(r.Narrative, "\n", "<br>")

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html lang="pt">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Análise de Fichas de Serviço - ` + r.StoreName + `</title>
  <style>
    @media print {
      .no-print { display: none !important; }
      body { background: white !important; }
    }
  </style>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; margin: 0; padding: 0; background: #f5f5f5; color: #333; line-height: 1.5;">
  <table role="presentation" width="100%" cellpadding="0" cellspacing="0" border="0" style="background: #f5f5f5;">
    <tr>
      <td align="center" style="padding: 20px;">
        <table role="presentation" width="600" cellpadding="0" cellspacing="0" border="0" style="background: #ffffff; border-radius: 8px; overflow: hidden;">
`)

	// Header with the text logo.
	fmt.Fprintf(&b, `          <tr>
            <td align="center" style="padding: 30px 30px 20px 30px; border-bottom: 1px solid #e5e7eb;">
              <div style="font-size: 26px; margin-bottom: 15px;"><span style="color: #e53935; font-weight: 700; font-style: italic;">EXPRESS</span><span style="color: #1a365d; font-weight: 400;">GLASS</span></div>
              <h1 style="color: #1f2937; margin: 0 0 8px 0; font-size: 20px; font-weight: 500;">Análise de Fichas de Serviço</h1>
              <p style="color: #6b7280; margin: 0; font-size: 13px;">%s</p>
            </td>
          </tr>
`, formatDatePT(analyzedAt))

	// Print warning.
	b.WriteString(`          <tr>
            <td style="padding: 0 30px 20px 30px;">
              <table role="presentation" width="100%" cellpadding="0" cellspacing="0" border="0" style="background: #fffbeb; border: 1px solid #fcd34d; border-radius: 6px;">
                <tr>
                  <td align="center" style="padding: 12px 20px;">
                    <p style="color: #92400e; font-weight: 500; margin: 0; font-size: 13px;">⚠️ IMPRIMIR ESTE RELATÓRIO E ATUAR EM CONFORMIDADE NOS PROCESSOS IDENTIFICADOS</p>
                  </td>
                </tr>
              </table>
            </td>
          </tr>
`)

	// Store title.
	fmt.Fprintf(&b, `          <tr>
            <td style="background: #f9fafb; padding: 20px 30px; border-bottom: 1px solid #e5e7eb;">
              <h2 style="color: #1f2937; margin: 0; font-size: 18px; font-weight: 500;">%s%s</h2>
              <p style="color: #6b7280; margin: 4px 0 0 0; font-size: 13px;">Relatório de Monitorização de Fichas de Serviço</p>
            </td>
          </tr>
`, r.StoreName, numberText)

	// Metric strip.
	fmt.Fprintf(&b, `          <tr>
            <td style="padding: 25px 20px; border-bottom: 1px solid #e5e7eb;">
              <table role="presentation" width="100%%" cellpadding="0" cellspacing="0" border="0">
                <tr>
                  <td align="center" width="25%%" style="padding: 10px;">
                    <div style="font-size: 28px; font-weight: 500; color: #1f2937;">%d</div>
                    <div style="font-size: 11px; color: #6b7280; margin-top: 4px; text-transform: uppercase; letter-spacing: 0.5px;">Total Fichas</div>
                  </td>
                  <td align="center" width="25%%" style="padding: 10px;">
                    <div style="font-size: 28px; font-weight: 500; color: %s;">%d</div>
                    <div style="font-size: 11px; color: #6b7280; margin-top: 4px; text-transform: uppercase; letter-spacing: 0.5px;">Abertas +5 dias</div>
                  </td>
                  <td align="center" width="25%%" style="padding: 10px;">
                    <div style="font-size: 28px; font-weight: 500; color: %s;">%d</div>
                    <div style="font-size: 11px; color: #6b7280; margin-top: 4px; text-transform: uppercase; letter-spacing: 0.5px;">Status Alerta</div>
                  </td>
                  <td align="center" width="25%%" style="padding: 10px;">
                    <div style="font-size: 28px; font-weight: 500; color: %s;">%d</div>
                    <div style="font-size: 11px; color: #6b7280; margin-top: 4px; text-transform: uppercase; letter-spacing: 0.5px;">Sem Notas</div>
                  </td>
                </tr>
              </table>
            </td>
          </tr>
`, r.TotalTickets,
		metricColor(openCount, "#dc2626"), openCount,
		metricColor(alertCount, "#ea580c"), alertCount,
		metricColor(missingNotes, "#d97706"), missingNotes)

	// Narrative.
	fmt.Fprintf(&b, `          <tr>
            <td style="padding: 25px 30px; border-bottom: 1px solid #e5e7eb;">
              <h3 style="color: #1f2937; margin: 0 0 15px 0; font-size: 15px; font-weight: 500; text-transform: uppercase; letter-spacing: 0.5px;">Resumo da Análise</h3>
              <div style="line-height: 1.6; font-size: 14px; color: #374151;">%s</div>
            </td>
          </tr>
`, narrative)

	if issueCount > 0 {
		b.WriteString(`          <tr>
            <td style="padding: 25px 30px; border-bottom: 1px solid #e5e7eb; background: #fef3c7;">
              <h3 style="color: #92400e; margin: 0 0 15px 0; font-size: 15px; font-weight: 600; text-transform: uppercase; letter-spacing: 0.5px;">⏱️ Prazo para Resolução</h3>
              <div style="line-height: 1.8; font-size: 14px; color: #78350f;">
                <p style="margin: 0 0 8px 0;"><strong>• Processos CRÍTICOS (&gt;30 dias):</strong> Resolver HOJE</p>
                <p style="margin: 0 0 8px 0;"><strong>• Processos URGENTES (&gt;15 dias):</strong> Resolver em 24 horas</p>
                <p style="margin: 0 0 12px 0;"><strong>• Demais processos:</strong> Resolver em 48 horas</p>
                <p style="margin: 0; font-style: italic; font-size: 13px;">Este relatório deve ser revisto diariamente até que todos os pontos estejam resolvidos.</p>
              </div>
            </td>
          </tr>
`)
	}

	// Detail fragment produced by the analysis engine.
	fmt.Fprintf(&b, `          <tr>
            <td style="padding: 25px 30px;">
              <h3 style="color: #1f2937; margin: 0 0 15px 0; font-size: 15px; font-weight: 500; text-transform: uppercase; letter-spacing: 0.5px;">Fichas a Intervir (Detalhe)</h3>
              <div style="font-size: 14px; color: #374151;">%s</div>
            </td>
          </tr>
`, r.DocumentHTML)

	b.WriteString(`          <tr>
            <td style="background: #f9fafb; padding: 20px 30px; text-align: center; border-top: 1px solid #e5e7eb;">
              <p style="color: #6b7280; margin: 4px 0; font-size: 11px;">PoweringEG Platform 2.0 - a IA ao serviço da ExpressGlass</p>
              <p style="color: #6b7280; margin: 4px 0; font-size: 11px;">Este email foi gerado automaticamente.</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`)

	return b.String()
}
