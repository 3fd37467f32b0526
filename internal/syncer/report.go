package syncer

import (
	"strings"

	"woosync/internal/logger"
	"woosync/internal/models"
)

// Report logs the success count and the failed SKUs of a run.
func Report(l *logger.Logger, outcomes []models.SyncOutcome) models.SyncSummary {
	summary := models.Summarize(outcomes)
	l.Info("Sync completed: %d/%d products succeeded", summary.Succeeded, summary.Total)
	if summary.Failed == 0 {
		return summary
	}

	l.Error("Failed SKUs: %s", strings.Join(summary.FailedSKUs, ", "))
	for i, o := range outcomes {
		if !o.Success {
			l.Errorw("product sync failed", "position", i, "sku", o.SKU, "error", o.Error)
		}
	}
	return summary
}
