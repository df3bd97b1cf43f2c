package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/phoolcraft/phool-backend/pkg/enums"
)

// OrderItem is the price and name of a basket line captured at order time.
type OrderItem struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	Quantity   int    `json:"quantity"`
	CustomText string `json:"customText,omitempty"`
}

// Order is an immutable snapshot apart from Status.
type Order struct {
	ID                int64                          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID           string                         `gorm:"column:order_id;not null;uniqueIndex" json:"order_id"`
	Name              string                         `gorm:"column:name;not null" json:"name"`
	Email             string                         `gorm:"column:email;not null;index" json:"email"`
	Phone             string                         `gorm:"column:phone" json:"phone"`
	Address           string                         `gorm:"column:address" json:"address"`
	Products          string                         `gorm:"column:products" json:"products"`
	Quantity          string                         `gorm:"column:quantity" json:"quantity"`
	PaymentMethod     string                         `gorm:"column:payment_method" json:"payment_method"`
	Notes             string                         `gorm:"column:notes" json:"notes"`
	OrderType         enums.OrderType                `gorm:"column:order_type;not null" json:"order_type"`
	Status            enums.OrderStatus              `gorm:"column:status;not null" json:"status"`
	Items             datatypes.JSONSlice[OrderItem] `gorm:"column:items" json:"items"`
	Subtotal          int64                          `gorm:"column:subtotal;not null" json:"subtotal"`
	Discount          int64                          `gorm:"column:discount;not null" json:"discount"`
	Total             int64                          `gorm:"column:total;not null" json:"total"`
	PromoCode         *string                        `gorm:"column:promo_code" json:"promo_code"`
	GiftWrap          bool                           `gorm:"column:gift_wrap;not null" json:"gift_wrap"`
	GiftWrapCost      int64                          `gorm:"column:gift_wrap_cost;not null" json:"gift_wrap_cost"`
	GiftMessage       string                         `gorm:"column:gift_message" json:"gift_message"`
	CustomDescription string                         `gorm:"column:custom_description" json:"custom_description"`
	CustomColors      string                         `gorm:"column:custom_colors" json:"custom_colors"`
	CustomTimeline    string                         `gorm:"column:custom_timeline" json:"custom_timeline"`
	CreatedAt         time.Time                      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

// RecordID returns the server-assigned identifier.
func (o Order) RecordID() int64 {
	return o.ID
}
