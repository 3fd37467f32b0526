package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncOutcome is the result of syncing one product. On success Product holds
// the store's copy after the write; on failure Error describes what went wrong.
type SyncOutcome struct {
	Success bool     `json:"success"`
	SKU     string   `json:"sku"`
	Product *Product `json:"product,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type SyncSummary struct {
	Total      int      `json:"total"`
	Succeeded  int      `json:"succeeded"`
	Failed     int      `json:"failed"`
	FailedSKUs []string `json:"failed_skus"`
}

func Summarize(outcomes []SyncOutcome) SyncSummary {
	summary := SyncSummary{Total: len(outcomes), FailedSKUs: []string{}}
	for _, o := range outcomes {
		if o.Success {
			summary.Succeeded++
			continue
		}
		summary.Failed++
		summary.FailedSKUs = append(summary.FailedSKUs, o.SKU)
	}
	return summary
}

// SyncRun records one batch sync for later inspection. It is an audit trail,
// the store stays the system of record for products.
type SyncRun struct {
	ID         string       `json:"id" gorm:"type:varchar(36);primaryKey"`
	Source     SyncSource   `json:"source" gorm:"not null"`
	Total      int          `json:"total"`
	Succeeded  int          `json:"succeeded"`
	Failed     int          `json:"failed"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Results    []SyncResult `json:"results,omitempty" gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time    `json:"created_at"`
}

type SyncResult struct {
	ID        string `json:"id" gorm:"type:varchar(36);primaryKey"`
	RunID     string `json:"run_id" gorm:"type:varchar(36);index;not null"`
	Position  int    `json:"position"`
	SKU       string `json:"sku" gorm:"index"`
	Success   bool   `json:"success"`
	ProductID int64  `json:"product_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

type SyncSource string

const (
	SyncSourceAPI    SyncSource = "API"
	SyncSourceCLI    SyncSource = "CLI"
	SyncSourceWorker SyncSource = "WORKER"
)

// NewSyncRun builds a run record from outcomes in input order.
func NewSyncRun(source SyncSource, startedAt, finishedAt time.Time, outcomes []SyncOutcome) *SyncRun {
	summary := Summarize(outcomes)
	run := &SyncRun{
		ID:         uuid.New().String(),
		Source:     source,
		Total:      summary.Total,
		Succeeded:  summary.Succeeded,
		Failed:     summary.Failed,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Results:    make([]SyncResult, 0, len(outcomes)),
	}
	for i, o := range outcomes {
		result := SyncResult{
			RunID:    run.ID,
			Position: i,
			SKU:      o.SKU,
			Success:  o.Success,
			Error:    o.Error,
		}
		if o.Product != nil {
			result.ProductID = o.Product.ID
		}
		run.Results = append(run.Results, result)
	}
	return run
}

func (r *SyncRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

func (r *SyncResult) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}
