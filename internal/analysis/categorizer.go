package analysis

import (
	"strings"

	"github.com/poweringeg/fichas-backend/internal/models"
)

// Bucket names. Buckets are not mutually exclusive: one ticket can appear in
// several (except missing/stale notes, exclusive by construction).
const (
	BucketOpenTooLong        = "open_too_long"
	BucketOverdue            = "overdue"
	BucketAlertStatus        = "alert_status"
	BucketMissingNotes       = "missing_notes"
	BucketStaleNotes         = "stale_notes"
	BucketReturnGlass        = "return_glass"
	BucketMissingClientEmail = "missing_client_email"
)

// BucketNames lists every bucket in presentation order.
var BucketNames = []string{
	BucketOpenTooLong,
	BucketOverdue,
	BucketAlertStatus,
	BucketMissingNotes,
	BucketStaleNotes,
	BucketReturnGlass,
	BucketMissingClientEmail,
}

const (
	minDaysOpen       = 5
	minDaysOverdue    = 2
	minDaysStaleNotes = 5
)

// Categorized is the output of one group's categorization pass.
type Categorized struct {
	Buckets             map[string][]models.ServiceTicket
	StatusCounts        map[string]int
	ReturnableGlassRefs []string
}

// PreFilter drops tickets whose status means no action is needed. Applied
// once per run, before grouping.
func PreFilter(tickets []models.ServiceTicket, rules *Rules) []models.ServiceTicket {
	out := make([]models.ServiceTicket, 0, len(tickets))
	for _, ticket := range tickets {
		if rules.IsExcludedStatus(strings.TrimSpace(ticket.Status)) {
			continue
		}
		out = append(out, ticket)
	}
	return out
}

// Categorize evaluates every bucket predicate over the group in a single
// pass per ticket, builds the status frequency table, and collects the glass
// references of return-glass tickets (ordered, duplicates kept: each ticket
// must surface its own ref downstream).
func Categorize(tickets []models.ServiceTicket, rules *Rules) Categorized {
	cat := Categorized{
		Buckets:      make(map[string][]models.ServiceTicket, len(BucketNames)),
		StatusCounts: make(map[string]int),
	}
	for _, name := range BucketNames {
		cat.Buckets[name] = nil
	}

	for _, ticket := range tickets {
		if ticket.Status != "" {
			cat.StatusCounts[ticket.Status]++
		}

		hasNotes := rules.HasNotes(ticket.Notes)

		if ticket.DaysOpen >= minDaysOpen {
			cat.Buckets[BucketOpenTooLong] = append(cat.Buckets[BucketOpenTooLong], ticket)
		}
		if ticket.DaysSinceScheduled >= minDaysOverdue {
			cat.Buckets[BucketOverdue] = append(cat.Buckets[BucketOverdue], ticket)
		}
		if rules.IsAlertStatus(ticket.Status) {
			cat.Buckets[BucketAlertStatus] = append(cat.Buckets[BucketAlertStatus], ticket)
		}
		if !hasNotes {
			cat.Buckets[BucketMissingNotes] = append(cat.Buckets[BucketMissingNotes], ticket)
		}
		// A ticket without notes cannot also have stale notes.
		if hasNotes && ticket.DaysSinceNoteUpdate >= minDaysStaleNotes {
			cat.Buckets[BucketStaleNotes] = append(cat.Buckets[BucketStaleNotes], ticket)
		}
		if ticket.Status == rules.ReturnGlassStatus {
			cat.Buckets[BucketReturnGlass] = append(cat.Buckets[BucketReturnGlass], ticket)
			if ref := strings.TrimSpace(ticket.GlassRef); ref != "" {
				cat.ReturnableGlassRefs = append(cat.ReturnableGlassRefs, ticket.GlassRef)
			}
		}
		if rules.IsInternalEmail(ticket.ClientEmail) {
			cat.Buckets[BucketMissingClientEmail] = append(cat.Buckets[BucketMissingClientEmail], ticket)
		}
	}
	return cat
}
