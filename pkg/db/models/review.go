package models

import "time"

// Review is customer feedback on a product. Only approved reviews are public.
type Review struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProductID int64     `gorm:"column:product_id;not null;index" json:"product_id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	Rating    int       `gorm:"column:rating;not null" json:"rating"`
	Comment   string    `gorm:"column:comment" json:"comment"`
	Approved  bool      `gorm:"column:approved;not null" json:"approved"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Review) TableName() string {
	return "reviews"
}

// RecordID returns the server-assigned identifier.
func (r Review) RecordID() int64 {
	return r.ID
}
