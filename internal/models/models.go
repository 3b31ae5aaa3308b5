package models

import "time"

// ServiceTicket is one row of the uploaded monitoring export, already coerced
// by the ingest layer. Missing numeric cells arrive as 0, missing dates as nil.
type ServiceTicket struct {
	RowRef              string     `json:"row_ref,omitempty"`
	DocTypeLabel        string     `json:"doc_type_label"`
	StoreLabel          string     `json:"store_label"`
	Manager             string     `json:"manager,omitempty"`
	Coordinator         string     `json:"coordinator,omitempty"`
	TicketNumber        int        `json:"ticket_number"`
	Plate               string     `json:"plate"`
	OpenedAt            *time.Time `json:"opened_at,omitempty"`
	DaysOpen            int        `json:"days_open"`
	ScheduledAt         *time.Time `json:"scheduled_at,omitempty"`
	DaysSinceScheduled  int        `json:"days_since_scheduled"`
	StartTime           string     `json:"start_time,omitempty"`
	EndTime             string     `json:"end_time,omitempty"`
	Status              string     `json:"status"`
	NoteUpdatedAt       *time.Time `json:"note_updated_at,omitempty"`
	DaysSinceNoteUpdate int        `json:"days_since_note_update"`
	Notes               string     `json:"notes"`
	ClientEmail         string     `json:"client_email"`
	InsuredName         string     `json:"insured_name,omitempty"`
	Make                string     `json:"make"`
	Model               string     `json:"model"`
	GlassRef            string     `json:"glass_ref"`
	Eurocode            string     `json:"eurocode,omitempty"`
	InvoiceNumber       int        `json:"invoice_number,omitempty"`
	InvoiceSeries       string     `json:"invoice_series,omitempty"`
	ClaimNumber         string     `json:"claim_number,omitempty"`
	Warehouse           int        `json:"warehouse,omitempty"`
	Closed              bool       `json:"closed,omitempty"`
	DamageDetail        string     `json:"damage_detail,omitempty"`
	InsuredContact      string     `json:"insured_contact,omitempty"`
	ClientName          string     `json:"client_name,omitempty"`
}

// StoreIdentity is the canonical identity derived from a ticket's noisy
// doc-type and store-name labels. StoreNumber is nil for mobile-service
// units: their ticket-label numbers are service-instance numbers, never
// store numbers.
type StoreIdentity struct {
	CanonicalName   string `json:"canonical_name"`
	StoreNumber     *int   `json:"store_number"`
	IsMobileService bool   `json:"is_mobile_service"`
}

// StoreReport is the categorized intervention report for one store group.
type StoreReport struct {
	StoreName           string                     `json:"store_name"`
	StoreNumber         *int                       `json:"store_number"`
	IsMobileService     bool                       `json:"is_mobile_service"`
	TotalTickets        int                        `json:"total_tickets"`
	Buckets             map[string][]ServiceTicket `json:"buckets"`
	StatusCounts        map[string]int             `json:"status_counts"`
	ReturnableGlassRefs []string                   `json:"returnable_glass_refs"`
	UrgencyLevel        string                     `json:"urgency_level"`
	Narrative           string                     `json:"narrative"`
	DocumentHTML        string                     `json:"document_html"`
}

// GlobalTotals sums each bucket's size across all store reports.
type GlobalTotals struct {
	OpenTooLong        int `json:"open_too_long"`
	Overdue            int `json:"overdue"`
	AlertStatus        int `json:"alert_status"`
	MissingNotes       int `json:"missing_notes"`
	StaleNotes         int `json:"stale_notes"`
	ReturnGlass        int `json:"return_glass"`
	MissingClientEmail int `json:"missing_client_email"`
}

// AnalysisResult is the terminal artifact of one analysis run.
type AnalysisResult struct {
	RunID              string         `json:"run_id"`
	RunTimestamp       time.Time      `json:"run_timestamp"`
	SourceFileName     string         `json:"source_file_name"`
	TotalTickets       int            `json:"total_tickets"`
	TotalStores        int            `json:"total_stores"`
	Reports            []StoreReport  `json:"reports"`
	GlobalTotals       GlobalTotals   `json:"global_totals"`
	GlobalStatusCounts map[string]int `json:"global_status_counts"`
}

type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Status     string    `json:"status"`
	Summary    []byte    `json:"summary"`
}
