package analysis

import (
	"strings"
	"testing"

	"github.com/poweringeg/fichas-backend/internal/models"
)

func makeTickets(n int, mutate func(i int, t *models.ServiceTicket)) []models.ServiceTicket {
	out := make([]models.ServiceTicket, n)
	for i := range out {
		out[i] = models.ServiceTicket{TicketNumber: i + 1, Status: "EM CURSO", Notes: "ok"}
		if mutate != nil {
			mutate(i, &out[i])
		}
	}
	return out
}

func TestUrgencyThresholds(t *testing.T) {
	cases := map[int]string{
		0:  UrgencyLow,
		5:  UrgencyLow,
		6:  UrgencyMedium,
		10: UrgencyMedium,
		11: UrgencyHigh,
		20: UrgencyHigh,
		21: UrgencyCritical,
	}
	for count, want := range cases {
		if got := UrgencyFor(count); got != want {
			t.Fatalf("issue count %d: expected %s, got %s", count, want, got)
		}
	}
}

func TestUrgencyMonotonicity(t *testing.T) {
	prev := UrgencyFor(0)
	rank := map[string]int{UrgencyLow: 0, UrgencyMedium: 1, UrgencyHigh: 2, UrgencyCritical: 3}
	for count := 1; count <= 40; count++ {
		level := UrgencyFor(count)
		if rank[level] < rank[prev] {
			t.Fatalf("urgency decreased from %s to %s at count %d", prev, level, count)
		}
		prev = level
	}
}

func TestSynthesizeCriticalStore(t *testing.T) {
	rules := DefaultRules()
	// 15 open too long + 7 alert status = 22 contributing issues.
	tickets := makeTickets(22, func(i int, ticket *models.ServiceTicket) {
		if i < 15 {
			ticket.DaysOpen = 11
		} else {
			ticket.Status = "RECUSADO"
		}
	})
	cat := Categorize(tickets, rules)
	report := Synthesize("Braga", nil, false, len(tickets), cat)
	if report.UrgencyLevel != UrgencyCritical {
		t.Fatalf("expected CRITICO, got %s", report.UrgencyLevel)
	}
	if !strings.Contains(report.Narrative, "HOJE") {
		t.Fatalf("critical narrative must demand same-day resolution:\n%s", report.Narrative)
	}
}

func TestSynthesizeCleanStore(t *testing.T) {
	rules := DefaultRules()
	tickets := makeTickets(3, nil)
	cat := Categorize(tickets, rules)
	report := Synthesize("Aveiro", nil, false, len(tickets), cat)
	if report.UrgencyLevel != UrgencyLow {
		t.Fatalf("expected BAIXO, got %s", report.UrgencyLevel)
	}
	if !strings.Contains(report.Narrative, "PARABÉNS") {
		t.Fatalf("clean store must get the congratulatory narrative:\n%s", report.Narrative)
	}
	if strings.Contains(report.Narrative, "PRAZO DE RESOLUÇÃO") {
		t.Fatalf("clean store narrative must not carry a resolution deadline")
	}
}

func TestSynthesizeMissingEmailDoesNotRaiseUrgency(t *testing.T) {
	rules := DefaultRules()
	// 30 tickets missing a client email, nothing else wrong.
	tickets := makeTickets(30, func(i int, ticket *models.ServiceTicket) {
		ticket.ClientEmail = ""
	})
	cat := Categorize(tickets, rules)
	report := Synthesize("Faro", nil, false, len(tickets), cat)
	if report.UrgencyLevel != UrgencyLow {
		t.Fatalf("informational buckets must not contribute to urgency, got %s", report.UrgencyLevel)
	}
}

func TestSynthesizeSortsBucketsByCounter(t *testing.T) {
	rules := DefaultRules()
	tickets := []models.ServiceTicket{
		{TicketNumber: 1, DaysOpen: 6, Notes: "ok", Status: "EM CURSO"},
		{TicketNumber: 2, DaysOpen: 30, Notes: "ok", Status: "EM CURSO"},
		{TicketNumber: 3, DaysOpen: 12, Notes: "ok", Status: "EM CURSO"},
	}
	cat := Categorize(tickets, rules)
	report := Synthesize("Porto", nil, false, len(tickets), cat)
	bucket := report.Buckets[BucketOpenTooLong]
	if len(bucket) != 3 {
		t.Fatalf("expected 3 tickets, got %d", len(bucket))
	}
	if bucket[0].DaysOpen != 30 || bucket[1].DaysOpen != 12 || bucket[2].DaysOpen != 6 {
		t.Fatalf("open bucket not sorted descending by days open: %v", []int{bucket[0].DaysOpen, bucket[1].DaysOpen, bucket[2].DaysOpen})
	}
}

func TestSynthesizeNarrativeSections(t *testing.T) {
	rules := DefaultRules()
	tickets := []models.ServiceTicket{
		{TicketNumber: 1, DaysOpen: 8, Notes: "ok", Status: "EM CURSO"},
		{TicketNumber: 2, Status: "RECUSADO", Notes: "ok"},
	}
	cat := Categorize(tickets, rules)
	report := Synthesize("Sintra", nil, false, len(tickets), cat)

	if !strings.Contains(report.Narrative, "1. "+bucketTitles[BucketOpenTooLong]) {
		t.Fatalf("expected numbered open-bucket section:\n%s", report.Narrative)
	}
	if !strings.Contains(report.Narrative, "2. "+bucketTitles[BucketAlertStatus]) {
		t.Fatalf("expected numbered alert section:\n%s", report.Narrative)
	}
	if !strings.Contains(report.Narrative, "RECUSADO: confirmar com a seguradora") {
		t.Fatalf("alert section must carry the refused sub-guidance:\n%s", report.Narrative)
	}
	if !strings.Contains(report.Narrative, "48 horas") {
		t.Fatalf("low-urgency store gets the 48h deadline:\n%s", report.Narrative)
	}
}

func TestSynthesizeDocumentFragment(t *testing.T) {
	rules := DefaultRules()
	number := 18
	tickets := []models.ServiceTicket{
		{TicketNumber: 4711, Plate: "AA-11-BB", Make: "Renault", Model: "Clio", DaysOpen: 9, Notes: "ok", Status: "EM CURSO"},
		{TicketNumber: 4712, Plate: "CC-22-DD", Status: "Devolve Vidro e Encerra!", GlassRef: "EG-77", Notes: "ok"},
	}
	cat := Categorize(tickets, rules)
	report := Synthesize("Braga", &number, false, len(tickets), cat)

	html := report.DocumentHTML
	for _, want := range []string{"Braga (18)", "FS 4711", "AA-11-BB", "Renault Clio", "(9 dias)", "EG-77", "QUANTIDADE DE PROCESSOS"} {
		if !strings.Contains(html, want) {
			t.Fatalf("document fragment missing %q:\n%s", want, html)
		}
	}
}

func TestSynthesizeEmptyGroup(t *testing.T) {
	rules := DefaultRules()
	cat := Categorize(nil, rules)
	report := Synthesize("Vazia", nil, false, 0, cat)
	if report.UrgencyLevel != UrgencyLow {
		t.Fatalf("empty group must be BAIXO, got %s", report.UrgencyLevel)
	}
	if !strings.Contains(report.Narrative, "PARABÉNS") {
		t.Fatalf("empty group gets the congratulatory narrative")
	}
}
