package fieldops

import (
	"github.com/fieldops/backend/internal/domain/shared"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Client is a customer of the service
type Client struct {
	shared.BaseEntity
	LastName             string              `gorm:"type:varchar(100)" json:"last_name"`
	FirstName            string              `gorm:"type:varchar(100)" json:"first_name"`
	StreetAddress        string              `gorm:"type:varchar(255)" json:"street_address"`
	City                 string              `gorm:"type:varchar(100)" json:"city"`
	State                string              `gorm:"type:varchar(50)" json:"state"`
	Zip                  string              `gorm:"type:varchar(20)" json:"zip"`
	Tags                 pq.StringArray      `gorm:"type:text[]" json:"tags"`
	Phone                string              `gorm:"type:varchar(50)" json:"phone"`
	Email                string              `gorm:"type:varchar(200)" json:"email"`
	TaxExempt            bool                `json:"tax_exempt"`
	AdminNotes           string              `gorm:"type:text" json:"admin_notes"`
	TeamNotes            string              `gorm:"type:text" json:"team_notes"`
	Latitude             decimal.NullDecimal `gorm:"type:numeric(9,6)" json:"latitude"`
	Longitude            decimal.NullDecimal `gorm:"type:numeric(9,6)" json:"longitude"`
	PlantationID         *int64              `gorm:"index" json:"plantation_id"`
	Weekly               bool                `json:"weekly"`
	ClientType           string              `gorm:"type:varchar(50)" json:"client_type"`
	PaymentMethod        string              `gorm:"type:varchar(50)" json:"payment_method"`
	CreditCardNumber     string              `gorm:"type:varchar(32)" json:"credit_card_number"`
	CreditCardExpiry     string              `gorm:"type:varchar(10)" json:"credit_card_expiry"`
	CreditCardCVV        string              `gorm:"column:credit_card_cvv;type:varchar(8)" json:"credit_card_cvv"`
	BillingAddressSame   bool                `json:"billing_address_same"`
	BillingStreetAddress string              `gorm:"type:varchar(255)" json:"billing_street_address"`
	BillingCity          string              `gorm:"type:varchar(100)" json:"billing_city"`
	BillingState         string              `gorm:"type:varchar(50)" json:"billing_state"`
	BillingZip           string              `gorm:"type:varchar(20)" json:"billing_zip"`
}

// TableName returns the table name for GORM
func (Client) TableName() string {
	return "clients"
}
