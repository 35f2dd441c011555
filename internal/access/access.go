// Package access 是纯裁决层：给定一条已加载的订单和当前时间，
// 判断 token 此刻是否还允许读取与一次性确认。不读时钟、不碰存储。
package access

import (
	"time"

	"cod_confirm/internal/model"
)

// ExpiryWindow 订单链接有效期：首次写入后 48 小时。
const ExpiryWindow = 48 * time.Hour

// Reason 终态原因。仅供内部日志与测试使用，
// 对外响应不得区分（防止通过探测 token 区分“已用”与“过期”）。
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonAlreadyConfirmed 订单已确认过，链接一次性已消耗。
	ReasonAlreadyConfirmed
	// ReasonExpired 超出有效期，或 created_at 缺失/非法（fail-closed）。
	ReasonExpired
	// ReasonNotPending status 为 pending/confirmed 之外的值（如 cancelled）。
	ReasonNotPending
)

// Verdict 网关裁决结果。
type Verdict struct {
	Accessible bool
	Reason     Reason
}

// Evaluate 使用默认 48h 窗口裁决。now 由调用方注入，便于测试。
func Evaluate(o model.Order, now time.Time) Verdict {
	return EvaluateWithWindow(o, now, ExpiryWindow)
}

// EvaluateWithWindow 裁决规则：
//   - status == confirmed        -> Terminal(AlreadyConfirmed)
//   - created_at 为零值          -> Terminal(Expired)，宁可拒绝不可放行
//   - now - created_at > window  -> Terminal(Expired)
//   - status != pending          -> Terminal(NotPending)
//   - 否则 Accessible
//
// 恰好等于窗口边界仍可访问（严格大于才过期）。
func EvaluateWithWindow(o model.Order, now time.Time, window time.Duration) Verdict {
	if o.Status == model.StatusConfirmed {
		return Verdict{Accessible: false, Reason: ReasonAlreadyConfirmed}
	}
	if o.CreatedAt.IsZero() {
		return Verdict{Accessible: false, Reason: ReasonExpired}
	}
	if now.Sub(o.CreatedAt) > window {
		return Verdict{Accessible: false, Reason: ReasonExpired}
	}
	if o.Status != model.StatusPending {
		return Verdict{Accessible: false, Reason: ReasonNotPending}
	}
	return Verdict{Accessible: true, Reason: ReasonNone}
}
