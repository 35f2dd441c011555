package redis

import "fmt"

// RateLimitIPKey 按客户端 IP 的限流键，覆盖 token 类接口。
func RateLimitIPKey(ip string) string {
	return fmt.Sprintf("cod_confirm:rate_limit:ip:%s", ip)
}

// 确认事件 outbox stream 的字段名约定（XADD / relay 两侧共用）。
const (
	FieldEventID = "event_id"
	FieldPayload = "payload"
	FieldToken   = "checkout_token"
)
