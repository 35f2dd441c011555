package store

import (
	"context"
	"errors"

	"cod_confirm/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTokenRequired 表示写入缺少 checkout_token，直接拒绝，不落任何数据。
var ErrTokenRequired = errors.New("store: checkout_token is required")

// orderColumns 是 upsert 冲突时整行覆盖的列集合。
// 注意不含 created_at：token 冲突时保留首次写入的时间，过期窗口不被重置。
var orderColumns = []string{
	"order_id", "external_id",
	"customer_name", "phone", "address", "city", "pincode",
	"items", "final_amount", "shipping_amount", "cod_fee",
	"status", "updated_at",
}

// OrderStore 封装订单表的全部读写。句柄由进程入口构造后注入，
// 不持有任何包级单例。
type OrderStore struct {
	db *gorm.DB
}

func New(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

// AutoMigrate 建表（入口处调用一次）。
func (s *OrderStore) AutoMigrate() error {
	return s.db.AutoMigrate(&model.Order{})
}

// Upsert 按 checkout_token 插入或整行替换（last-writer-wins），created_at 除外。
// 上游 webhook 重试重发同一 payload 时天然幂等：同一 token 永远只有一行。
// 缺省值：items -> 空切片、金额 -> 0、status -> pending。
func (s *OrderStore) Upsert(ctx context.Context, o model.Order) (model.Order, error) {
	if o.CheckoutToken == "" {
		return model.Order{}, ErrTokenRequired
	}
	if o.Items == nil {
		o.Items = []model.OrderItem{}
	}
	if o.Status == "" {
		o.Status = model.StatusPending
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "checkout_token"}},
			DoUpdates: clause.AssignmentColumns(orderColumns),
		}).
		Create(&o).Error
	if err != nil {
		return model.Order{}, err
	}

	// 冲突路径下 o.CreatedAt 是本次请求的值，回读拿到库里真实存储的行。
	stored, found, err := s.GetByToken(ctx, o.CheckoutToken)
	if err != nil {
		return model.Order{}, err
	}
	if !found {
		return model.Order{}, gorm.ErrRecordNotFound
	}
	return stored, nil
}

// GetByToken 点查。found=false 表示无此 token，不是错误；
// error 只在存储层故障时返回。
func (s *OrderStore) GetByToken(ctx context.Context, token string) (model.Order, bool, error) {
	var o model.Order
	err := s.db.WithContext(ctx).Where("checkout_token = ?", token).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Order{}, false, nil
		}
		return model.Order{}, false, err
	}
	return o, true, nil
}

// DeliveryUpdate 确认页上可编辑的收货字段。只在确认前由网关放行的请求写入。
type DeliveryUpdate struct {
	CustomerName string
	Phone        string
	Address      string
	City         string
	Pincode      string
}

// UpdateDelivery 覆盖收货字段。found=false 表示无此 token。
func (s *OrderStore) UpdateDelivery(ctx context.Context, token string, d DeliveryUpdate) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("checkout_token = ?", token).
		Updates(map[string]any{
			"customer_name": d.CustomerName,
			"phone":         d.Phone,
			"address":       d.Address,
			"city":          d.City,
			"pincode":       d.Pincode,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkConfirmed 无条件把 status 置为 confirmed，返回更新后的行。
// 写侧幂等：重复调用结果不变。是否允许二次确认由访问网关在调用前裁决，
// 存储层不做状态前置检查。
func (s *OrderStore) MarkConfirmed(ctx context.Context, token string) (model.Order, bool, error) {
	res := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("checkout_token = ?", token).
		Update("status", model.StatusConfirmed)
	if res.Error != nil {
		return model.Order{}, false, res.Error
	}
	if res.RowsAffected == 0 {
		return model.Order{}, false, nil
	}
	return s.GetByToken(ctx, token)
}
