package model

import (
	"time"
)

// 订单生命周期状态。status 是开放字符串：上游可能写入其他值（如 cancelled），
// 本服务只暴露 pending -> confirmed 这一个迁移。
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// OrderItem 购物车条目快照，按原样存储，本服务不重算。
type OrderItem struct {
	ID       int64   `json:"id,omitempty"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price,omitempty"`
	Variant  string  `json:"variant,omitempty"`
	Image    string  `json:"image,omitempty"`
}

// Order COD 确认订单：以 checkout_token 为主键的扁平单行记录。
// created_at 首次写入后不可变，过期判断全部基于它现算，不落库。
type Order struct {
	CheckoutToken string `gorm:"primaryKey;size:128" json:"checkout_token"`

	// 两个上游标识：order_id 是面向用户的短单号，external_id 是上游平台的
	// 大数值 ID（存字符串避免精度丢失）。
	OrderID    string `gorm:"size:64;index" json:"order_id"`
	ExternalID string `gorm:"size:64;index" json:"external_id"`

	CustomerName string `gorm:"size:128" json:"customer_name"`
	Phone        string `gorm:"size:32" json:"phone"`
	Address      string `gorm:"size:512" json:"address"`
	City         string `gorm:"size:128" json:"city"`
	Pincode      string `gorm:"size:16" json:"pincode"`

	Items []OrderItem `gorm:"serializer:json" json:"items"`

	FinalAmount    float64 `gorm:"not null;default:0" json:"final_amount"`
	ShippingAmount float64 `gorm:"not null;default:0" json:"shipping_amount"`
	CODFee         float64 `gorm:"not null;default:0;column:cod_fee" json:"cod_fee"`

	Status string `gorm:"size:32;not null;default:pending;index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Order) TableName() string { return "orders" }
