package fieldops

import (
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// JobType is a catalog entry describing a kind of work
type JobType struct {
	shared.BaseEntity
	Name             string          `gorm:"type:varchar(200)" json:"name"`
	Description      string          `gorm:"type:text" json:"description"`
	DefaultPrice     decimal.Decimal `gorm:"type:numeric(12,2)" json:"default_price"`
	EstimatedMinutes int             `json:"estimated_minutes"`
	Active           bool            `json:"active"`
}

// TableName returns the table name for GORM
func (JobType) TableName() string {
	return "job_types"
}

// Job is one scheduled piece of work for a client
type Job struct {
	shared.BaseEntity
	ClientID     *int64          `gorm:"index" json:"client_id"`
	JobTypeID    *int64          `gorm:"index" json:"job_type_id"`
	PlantationID *int64          `gorm:"index" json:"plantation_id"`
	Title        string          `gorm:"type:varchar(200)" json:"title"`
	Description  string          `gorm:"type:text" json:"description"`
	Status       string          `gorm:"type:varchar(30)" json:"status"`
	ScheduledAt  *time.Time      `json:"scheduled_at"`
	CompletedAt  *time.Time      `json:"completed_at"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2)" json:"price"`
	Notes        string          `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (Job) TableName() string {
	return "jobs"
}
