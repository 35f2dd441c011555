package notify

import (
	"fmt"

	"cod_confirm/internal/model"
)

// 收货信息相对预填值是否被客户改过，下游自动化按此分流。
const (
	PrefilledChanged   = "changed"
	PrefilledUnchanged = "unchanged"
)

// ConfirmationEvent 是订单确认后发往下游自动化系统的事件。
// order_id 与 external_id 并列透传，取舍留给消费方。
type ConfirmationEvent struct {
	EventID       string `json:"event_id"`
	CheckoutToken string `json:"checkout_token"`
	OrderID       string `json:"order_id"`
	ExternalID    string `json:"external_id"`

	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Pincode      string `json:"pincode"`

	Items       []model.OrderItem `json:"items"`
	FinalAmount float64           `json:"final_amount"`

	Status    string `json:"status"`
	Prefilled string `json:"prefilled"`
}

// Validate 做最小字段校验，防止向下游投递脏事件。
func (e ConfirmationEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if e.CheckoutToken == "" {
		return fmt.Errorf("checkout_token is required")
	}
	if e.Prefilled != PrefilledChanged && e.Prefilled != PrefilledUnchanged {
		return fmt.Errorf("prefilled must be %q or %q", PrefilledChanged, PrefilledUnchanged)
	}
	return nil
}

// NewConfirmationEvent 从已确认的订单行构造事件。
func NewConfirmationEvent(eventID string, o model.Order, prefilled string) ConfirmationEvent {
	return ConfirmationEvent{
		EventID:       eventID,
		CheckoutToken: o.CheckoutToken,
		OrderID:       o.OrderID,
		ExternalID:    o.ExternalID,
		CustomerName:  o.CustomerName,
		Phone:         o.Phone,
		Address:       o.Address,
		City:          o.City,
		Pincode:       o.Pincode,
		Items:         o.Items,
		FinalAmount:   o.FinalAmount,
		Status:        o.Status,
		Prefilled:     prefilled,
	}
}
