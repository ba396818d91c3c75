package shared

import "time"

// BaseEntity provides the identifier and timestamps shared by all entities.
// The identifier is a store-assigned serial; timestamps are maintained by gorm.
type BaseEntity struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetID returns the entity ID
func (e *BaseEntity) GetID() int64 {
	return e.ID
}

// ResetIdentity clears the store-assigned fields so client input cannot set them
func (e *BaseEntity) ResetIdentity() {
	e.ID = 0
	e.CreatedAt = time.Time{}
	e.UpdatedAt = time.Time{}
}
