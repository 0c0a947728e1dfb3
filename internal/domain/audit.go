package domain

import "time"

// ExportKind names the dataset of an export.
type ExportKind string

const (
	ExportBuyers   ExportKind = "BUYERS"
	ExportContacts ExportKind = "CONTACTS"
)

// SearchRecord is an append-only search audit row.
type SearchRecord struct {
	UserID  string
	Query   string
	Filters map[string]string
	Results int
}

// ExportRecord is an append-only export audit row.
type ExportRecord struct {
	UserID  string
	Kind    ExportKind
	Count   int
	Filters map[string]string
}

// UsageReport is the caller's metered usage for the current calendar month.
type UsageReport struct {
	Plan        PlanID                  `json:"plan"`
	PeriodStart time.Time               `json:"periodStart"`
	PeriodEnd   time.Time               `json:"periodEnd"`
	Used        map[LimitKind]int       `json:"used"`
	Remaining   map[LimitKind]Remaining `json:"remaining"`
}
