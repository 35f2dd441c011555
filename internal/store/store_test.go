package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cod_confirm/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStore(t *testing.T) (*OrderStore, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	st := New(db)
	require.NoError(t, st.AutoMigrate())
	return st, db
}

func sampleOrder(token string) model.Order {
	return model.Order{
		CheckoutToken: token,
		OrderID:       "3416",
		ExternalID:    "987654321098765432",
		CustomerName:  "Asha Rao",
		Phone:         "+91 99999 88888",
		Address:       "42 Test Lane",
		City:          "Pune",
		Pincode:       "411001",
		Items: []model.OrderItem{
			{ID: 1, Name: "Widget", Quantity: 2, Price: 100},
			{ID: 2, Name: "Gadget", Quantity: 1, Price: 200, Variant: "blue"},
		},
		FinalAmount:    400,
		ShippingAmount: 50,
		CODFee:         30,
	}
}

func TestUpsertRoundtrip(t *testing.T) {
	st, _ := setupStore(t)
	ctx := context.Background()

	in := sampleOrder("T1")
	stored, err := st.Upsert(ctx, in)
	require.NoError(t, err)

	// 服务端缺省：status -> pending，created_at 由本次写入产生
	assert.Equal(t, model.StatusPending, stored.Status)
	assert.False(t, stored.CreatedAt.IsZero())

	got, found, err := st.GetByToken(ctx, "T1")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, in.CheckoutToken, got.CheckoutToken)
	assert.Equal(t, in.OrderID, got.OrderID)
	assert.Equal(t, in.ExternalID, got.ExternalID)
	assert.Equal(t, in.CustomerName, got.CustomerName)
	assert.Equal(t, in.Phone, got.Phone)
	assert.Equal(t, in.Items, got.Items)
	assert.Equal(t, in.FinalAmount, got.FinalAmount)
	assert.Equal(t, in.CODFee, got.CODFee)
}

func TestUpsertDefaults(t *testing.T) {
	st, _ := setupStore(t)
	ctx := context.Background()

	stored, err := st.Upsert(ctx, model.Order{CheckoutToken: "bare"})
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, stored.Status)
	assert.NotNil(t, stored.Items)
	assert.Len(t, stored.Items, 0)
	assert.Zero(t, stored.FinalAmount)
	assert.Zero(t, stored.ShippingAmount)
	assert.Zero(t, stored.CODFee)
}

func TestUpsertMissingToken(t *testing.T) {
	st, _ := setupStore(t)

	_, err := st.Upsert(context.Background(), model.Order{})
	require.ErrorIs(t, err, ErrTokenRequired)
}

func TestUpsertReplaceKeepsCreatedAt(t *testing.T) {
	st, db := setupStore(t)
	ctx := context.Background()

	first := sampleOrder("T1")
	first.CreatedAt = time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	_, err := st.Upsert(ctx, first)
	require.NoError(t, err)

	// 上游重发：不同 payload，同一 token
	second := sampleOrder("T1")
	second.CustomerName = "Replaced Name"
	second.FinalAmount = 999
	second.Items = []model.OrderItem{{Name: "Only", Quantity: 1}}
	stored, err := st.Upsert(ctx, second)
	require.NoError(t, err)

	// 整行被第二次写覆盖……
	assert.Equal(t, "Replaced Name", stored.CustomerName)
	assert.Equal(t, float64(999), stored.FinalAmount)
	assert.Equal(t, second.Items, stored.Items)
	// ……但 created_at 仍是首次写入的时间，过期窗口不被重置
	assert.WithinDuration(t, first.CreatedAt, stored.CreatedAt, time.Second)

	var n int64
	require.NoError(t, db.Model(&model.Order{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestMarkConfirmedIdempotent(t *testing.T) {
	st, _ := setupStore(t)
	ctx := context.Background()

	_, err := st.Upsert(ctx, sampleOrder("T1"))
	require.NoError(t, err)

	got, found, err := st.MarkConfirmed(ctx, "T1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.StatusConfirmed, got.Status)

	// 写侧幂等：重复迁移结果不变
	got, found, err = st.MarkConfirmed(ctx, "T1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, model.StatusConfirmed, got.Status)
}

func TestMarkConfirmedUnknownToken(t *testing.T) {
	st, _ := setupStore(t)

	_, found, err := st.MarkConfirmed(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetByTokenNotFound(t *testing.T) {
	st, _ := setupStore(t)

	_, found, err := st.GetByToken(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdateDelivery(t *testing.T) {
	st, _ := setupStore(t)
	ctx := context.Background()

	_, err := st.Upsert(ctx, sampleOrder("T1"))
	require.NoError(t, err)

	found, err := st.UpdateDelivery(ctx, "T1", DeliveryUpdate{
		CustomerName: "Edited",
		Phone:        "+91 11111 22222",
		Address:      "New Address",
		City:         "Mumbai",
		Pincode:      "400001",
	})
	require.NoError(t, err)
	require.True(t, found)

	got, found, err := st.GetByToken(ctx, "T1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Edited", got.CustomerName)
	assert.Equal(t, "Mumbai", got.City)
	// 金额与状态不受收货编辑影响
	assert.Equal(t, float64(400), got.FinalAmount)
	assert.Equal(t, model.StatusPending, got.Status)
}
