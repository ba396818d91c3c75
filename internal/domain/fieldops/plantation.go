package fieldops

import (
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Plantation is a property serviced for one or more clients
type Plantation struct {
	shared.BaseEntity
	Name          string              `gorm:"type:varchar(200)" json:"name"`
	StreetAddress string              `gorm:"type:varchar(255)" json:"street_address"`
	City          string              `gorm:"type:varchar(100)" json:"city"`
	State         string              `gorm:"type:varchar(50)" json:"state"`
	Zip           string              `gorm:"type:varchar(20)" json:"zip"`
	Latitude      decimal.NullDecimal `gorm:"type:numeric(9,6)" json:"latitude"`
	Longitude     decimal.NullDecimal `gorm:"type:numeric(9,6)" json:"longitude"`
	Acreage       decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"acreage"`
	Notes         string              `gorm:"type:text" json:"notes"`
	Active        bool                `json:"active"`
}

// TableName returns the table name for GORM
func (Plantation) TableName() string {
	return "plantations"
}
