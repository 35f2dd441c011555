package router

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"cod_confirm/internal/access"
	"cod_confirm/internal/config"
	"cod_confirm/internal/middleware"
	"cod_confirm/internal/model"
	"cod_confirm/internal/notify"
	"cod_confirm/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	rd "github.com/redis/go-redis/v9"
)

// msgInvalidToken 是 NotFound 与 Terminal（已确认/已过期）共用的对外文案。
// 三种情况必须不可区分，避免通过探测 token 推断订单状态。
const msgInvalidToken = "invalid or expired order token"

// ConfirmationSink 接收确认事件。投递是 fire-and-forget：
// 失败只记日志，不影响确认结果。
type ConfirmationSink interface {
	Enqueue(ctx context.Context, ev notify.ConfirmationEvent) error
}

// Setup 注册全部 HTTP 路由。rdb 为 nil 时跳过限流（测试场景）。
func Setup(r *gin.Engine, st *store.OrderStore, rdb *rd.Client, sink ConfirmationSink, cfg config.AppConfig) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"msg": "pong"})
	})

	tokenGuard := func(c *gin.Context) { c.Next() }
	if rdb != nil {
		tokenGuard = middleware.RedisRateLimit(rdb, cfg.TokenRateLimit, cfg.TokenRateWindow)
	}

	// 上游平台握手：建单/重发
	r.POST("/api/orders", storeOrder(st))
	// 确认页读单 + 兼容上游旧路径 /api/get-order?id=<token>
	r.GET("/api/orders/:token", tokenGuard, getOrder(st, cfg.OrderExpiry))
	r.GET("/api/get-order", tokenGuard, getOrder(st, cfg.OrderExpiry))
	// 一次性确认
	r.POST("/api/orders/:token/confirm", tokenGuard, confirmOrder(st, sink, cfg.OrderExpiry))
}

// stringOrNumber 接受 JSON 字符串或数字字面量，统一还原为字符串。
// 数字按原样字面量保留（json.Number），大数值 ID 不经过 float64 不丢精度。
type stringOrNumber string

func (s *stringOrNumber) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = stringOrNumber(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*s = stringOrNumber(n.String())
	return nil
}

func (s stringOrNumber) String() string { return string(s) }

// storeOrderRequest 兼容上游两种形态：扁平 snake_case 字段，
// 以及 {id, orderId, customer{...}, finalAmount...} 的嵌套 camelCase 形态。
type storeOrderRequest struct {
	CheckoutToken string `json:"checkout_token"`

	// 上游大数值 ID 可能是数字也可能是字符串，统一收成字符串存储。
	ID      stringOrNumber `json:"id"`
	OrderID stringOrNumber `json:"orderId"`

	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Pincode      string `json:"pincode"`

	Customer struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
		City    string `json:"city"`
		Pincode string `json:"pincode"`
	} `json:"customer"`

	Items []model.OrderItem `json:"items"`

	FinalAmount         *float64 `json:"final_amount"`
	FinalAmountCamel    *float64 `json:"finalAmount"`
	ShippingAmount      *float64 `json:"shipping_amount"`
	ShippingAmountCamel *float64 `json:"shippingAmount"`
	CODFee              *float64 `json:"cod_fee"`
	CODFeeCamel         *float64 `json:"codFee"`

	Status string `json:"status"`
}

// storeOrder 接收上游平台的订单握手，按 token upsert。
// 同一 token 重发整行覆盖（created_at 除外），webhook 重试安全。
func storeOrder(st *store.OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req storeOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
			return
		}
		if req.CheckoutToken == "" {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "checkout_token 必填"})
			return
		}

		o := model.Order{
			CheckoutToken:  req.CheckoutToken,
			OrderID:        req.OrderID.String(),
			ExternalID:     req.ID.String(),
			CustomerName:   firstNonEmpty(req.CustomerName, req.Customer.Name),
			Phone:          firstNonEmpty(req.Phone, req.Customer.Phone),
			Address:        firstNonEmpty(req.Address, req.Customer.Address),
			City:           firstNonEmpty(req.City, req.Customer.City),
			Pincode:        firstNonEmpty(req.Pincode, req.Customer.Pincode),
			Items:          req.Items,
			FinalAmount:    coalesce(req.FinalAmount, req.FinalAmountCamel),
			ShippingAmount: coalesce(req.ShippingAmount, req.ShippingAmountCamel),
			CODFee:         coalesce(req.CODFee, req.CODFeeCamel),
			Status:         req.Status,
		}

		stored, err := st.Upsert(c.Request.Context(), o)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"code": 0,
			"data": gin.H{
				"checkout_token": stored.CheckoutToken,
				"confirm_url":    "/confirm?id=" + stored.CheckoutToken,
			},
		})
	}
}

// getOrder 带网关检查的读单。NotFound 与 Terminal 返回同一个 404 响应。
func getOrder(st *store.OrderStore, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")
		if token == "" {
			token = c.Query("id")
		}
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": "token 必填"})
			return
		}

		o, found, err := st.GetByToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": msgInvalidToken})
			return
		}

		if v := access.EvaluateWithWindow(o, time.Now(), window); !v.Accessible {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": msgInvalidToken})
			return
		}

		c.JSON(http.StatusOK, gin.H{"code": 0, "data": o})
	}
}

// confirmRequest 确认页表单：可携带客户改过的收货信息。
// 空字段视为未提供，保留库里预填值。
type confirmRequest struct {
	Name         string `json:"name"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	Pincode      string `json:"pincode"`
}

// confirmOrder 一次性确认入口。
// 关键流程：
// 1. 读单 + 网关裁决（终态订单不可再确认，和 NotFound 同响应）
// 2. 合并收货字段编辑、判断 prefilled changed/unchanged
// 3. status -> confirmed（存储层无条件幂等写）
// 4. 确认事件 XADD 入 outbox，失败只记日志，不阻塞不回滚
func confirmOrder(st *store.OrderStore, sink ConfirmationSink, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Param("token")

		o, found, err := st.GetByToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": msgInvalidToken})
			return
		}
		if v := access.EvaluateWithWindow(o, time.Now(), window); !v.Accessible {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": msgInvalidToken})
			return
		}

		var req confirmRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"code": 400, "msg": err.Error()})
				return
			}
		}

		upd := store.DeliveryUpdate{
			CustomerName: firstNonEmpty(req.CustomerName, req.Name, o.CustomerName),
			Phone:        firstNonEmpty(req.Phone, o.Phone),
			Address:      firstNonEmpty(req.Address, o.Address),
			City:         firstNonEmpty(req.City, o.City),
			Pincode:      firstNonEmpty(req.Pincode, o.Pincode),
		}
		prefilled := notify.PrefilledUnchanged
		if upd.CustomerName != o.CustomerName || upd.Phone != o.Phone ||
			upd.Address != o.Address || upd.City != o.City || upd.Pincode != o.Pincode {
			prefilled = notify.PrefilledChanged
		}

		if prefilled == notify.PrefilledChanged {
			if _, err := st.UpdateDelivery(c.Request.Context(), token, upd); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
				return
			}
		}

		confirmed, found, err := st.MarkConfirmed(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"code": 500, "msg": err.Error()})
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"code": 404, "msg": msgInvalidToken})
			return
		}

		if sink != nil {
			ev := notify.NewConfirmationEvent(uuid.New().String(), confirmed, prefilled)
			if err := sink.Enqueue(c.Request.Context(), ev); err != nil {
				// fire-and-forget：下游通知失败不改变确认结果。
				log.Printf("confirm notify enqueue token=%s: %v", token, err)
			}
		}

		c.JSON(http.StatusOK, gin.H{"code": 0, "data": confirmed})
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func coalesce(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}
