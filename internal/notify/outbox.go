package notify

import (
	"context"
	"encoding/json"

	rediskey "cod_confirm/pkg/redis"

	rd "github.com/redis/go-redis/v9"
)

// Outbox 把确认事件写入 Redis Stream，由 Relay 异步转发 Kafka。
// 确认接口只做一次 XADD（单命令、快），投递失败由调用方记日志后忽略：
// 通知是 fire-and-forget，绝不阻塞也不回滚订单确认本身。
type Outbox struct {
	rdb    *rd.Client
	stream string
}

func NewOutbox(rdb *rd.Client, stream string) *Outbox {
	return &Outbox{rdb: rdb, stream: stream}
}

// Enqueue 事件入流。
func (o *Outbox) Enqueue(ctx context.Context, ev ConfirmationEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return o.rdb.XAdd(ctx, &rd.XAddArgs{
		Stream: o.stream,
		Values: map[string]any{
			rediskey.FieldEventID: ev.EventID,
			rediskey.FieldToken:   ev.CheckoutToken,
			rediskey.FieldPayload: string(b),
		},
	}).Err()
}
