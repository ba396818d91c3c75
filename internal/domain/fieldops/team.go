package fieldops

import (
	"time"

	"github.com/fieldops/backend/internal/domain/shared"
)

// Team is a crew that jobs are assigned to
type Team struct {
	shared.BaseEntity
	Name       string `gorm:"type:varchar(200)" json:"name"`
	Color      string `gorm:"type:varchar(20)" json:"color"`
	LeaderName string `gorm:"type:varchar(200)" json:"leader_name"`
	Active     bool   `json:"active"`
	Notes      string `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (Team) TableName() string {
	return "teams"
}

// TeamMember is a person working in a team
type TeamMember struct {
	shared.BaseEntity
	TeamID    *int64 `gorm:"index" json:"team_id"`
	FirstName string `gorm:"type:varchar(100)" json:"first_name"`
	LastName  string `gorm:"type:varchar(100)" json:"last_name"`
	Role      string `gorm:"type:varchar(50)" json:"role"`
	Phone     string `gorm:"type:varchar(50)" json:"phone"`
	Email     string `gorm:"type:varchar(200)" json:"email"`
	Active    bool   `json:"active"`
}

// TableName returns the table name for GORM
func (TeamMember) TableName() string {
	return "team_members"
}

// TeamAssignment links a team to a job
type TeamAssignment struct {
	shared.BaseEntity
	TeamID       int64      `gorm:"index" json:"team_id"`
	JobID        int64      `gorm:"index" json:"job_id"`
	AssignedDate *time.Time `json:"assigned_date"`
	Notes        string     `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (TeamAssignment) TableName() string {
	return "team_assignments"
}
