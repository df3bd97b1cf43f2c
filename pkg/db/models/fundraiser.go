package models

import (
	"fmt"
	"time"
)

// Fundraiser is a campaign that may be tied to a product.
type Fundraiser struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Description string     `gorm:"column:description" json:"description"`
	Goal        string     `gorm:"column:goal" json:"goal"`
	GoalPKR     *int64     `gorm:"column:goal_pkr" json:"goal_pkr,omitempty"`
	Active      bool       `gorm:"column:active;not null" json:"active"`
	ProductID   *int64     `gorm:"column:product_id" json:"product_id,omitempty"`
	StartDate   *time.Time `gorm:"column:start_date;type:date" json:"start_date,omitempty"`
	EndDate     *time.Time `gorm:"column:end_date;type:date" json:"end_date,omitempty"`
	Image       *string    `gorm:"column:image" json:"image,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Fundraiser) TableName() string {
	return "fundraisers"
}

// RecordID returns the server-assigned identifier.
func (f Fundraiser) RecordID() int64 {
	return f.ID
}

// FormatGoal renders the display string for a numeric goal.
func FormatGoal(goalPKR int64) string {
	return fmt.Sprintf("PKR %d", goalPKR)
}

// DisplayGoal prefers the authoritative numeric goal when present.
func (f Fundraiser) DisplayGoal() string {
	if f.GoalPKR != nil {
		return FormatGoal(*f.GoalPKR)
	}
	return f.Goal
}
