package analysis

import (
	"sort"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/poweringeg/fichas-backend/internal/models"
)

// Aggregate folds all per-store reports into the run's terminal artifact:
// named global bucket totals, one merged status table, and a stable report
// ordering (case-insensitive Portuguese collation).
func Aggregate(reports []models.StoreReport, ticketCount, storeCount int, fileName string) models.AnalysisResult {
	result := models.AnalysisResult{
		RunTimestamp:       time.Now().UTC(),
		SourceFileName:     fileName,
		TotalTickets:       ticketCount,
		TotalStores:        storeCount,
		Reports:            reports,
		GlobalStatusCounts: make(map[string]int),
	}

	for _, report := range reports {
		result.GlobalTotals.OpenTooLong += len(report.Buckets[BucketOpenTooLong])
		result.GlobalTotals.Overdue += len(report.Buckets[BucketOverdue])
		result.GlobalTotals.AlertStatus += len(report.Buckets[BucketAlertStatus])
		result.GlobalTotals.MissingNotes += len(report.Buckets[BucketMissingNotes])
		result.GlobalTotals.StaleNotes += len(report.Buckets[BucketStaleNotes])
		result.GlobalTotals.ReturnGlass += len(report.Buckets[BucketReturnGlass])
		result.GlobalTotals.MissingClientEmail += len(report.Buckets[BucketMissingClientEmail])
		for status, count := range report.StatusCounts {
			result.GlobalStatusCounts[status] += count
		}
	}

	collator := collate.New(language.Portuguese, collate.IgnoreCase)
	sort.SliceStable(result.Reports, func(i, j int) bool {
		return collator.CompareString(result.Reports[i].StoreName, result.Reports[j].StoreName) < 0
	})
	return result
}
