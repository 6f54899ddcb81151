// Package messaging 订单事件的发布与消费
package messaging

import (
	"context"
	"time"

	"github.com/MonkyMars/gecho"

	"github.com/xiebiao/tintayhojas/internal/domain/order"
	"github.com/xiebiao/tintayhojas/pkg/circuitbreaker"
	"github.com/xiebiao/tintayhojas/pkg/metrics"
)

// publishTimeout 单次发布的最长等待时间
const publishTimeout = 3 * time.Second

// Publisher pkg/mq.Publisher的最小接口
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
	Exchange() string
}

// OrderEventPublisher 在熔断器保护下发布订单事件
// Broker故障时熔断，发布直接失败返回，不拖慢结账
type OrderEventPublisher struct {
	publisher Publisher
	breaker   *circuitbreaker.CircuitBreaker
	logger    *gecho.Logger
}

func NewOrderEventPublisher(publisher Publisher, logger *gecho.Logger) *OrderEventPublisher {
	breaker := circuitbreaker.NewCircuitBreaker("order-events", circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
	})
	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		logger.Warn("熔断器状态变化",
			gecho.Field("name", name),
			gecho.Field("from", from.String()),
			gecho.Field("to", to.String()),
		)
	})
	return &OrderEventPublisher{publisher: publisher, breaker: breaker, logger: logger}
}

func (p *OrderEventPublisher) PublishOrderPaid(ctx context.Context, event order.PaidEvent) error {
	return p.publish(ctx, order.EventOrderPaid, event)
}

func (p *OrderEventPublisher) PublishOrderStatusChanged(ctx context.Context, event order.StatusChangedEvent) error {
	return p.publish(ctx, order.EventOrderStatusChanged, event)
}

func (p *OrderEventPublisher) publish(ctx context.Context, routingKey string, event interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := p.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		return p.publisher.Publish(ctx, routingKey, event)
	})

	result := "success"
	if err != nil {
		result = "failure"
		p.logger.Error("订单事件发布失败",
			gecho.Field("routing_key", routingKey),
			gecho.Field("breaker", p.breaker.State().String()),
			gecho.Field("error", err.Error()),
		)
	}
	metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{
		"exchange":    p.publisher.Exchange(),
		"routing_key": routingKey,
		"result":      result,
	})
	return err
}

// LogPublisher MQ未启用时使用，事件只写日志
type LogPublisher struct {
	logger *gecho.Logger
}

func NewLogPublisher(logger *gecho.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) PublishOrderPaid(_ context.Context, event order.PaidEvent) error {
	p.logger.Info("订单已支付",
		gecho.Field("order_no", event.OrderNo),
		gecho.Field("user_id", event.UserID),
		gecho.Field("total", event.Total),
	)
	return nil
}

func (p *LogPublisher) PublishOrderStatusChanged(_ context.Context, event order.StatusChangedEvent) error {
	p.logger.Info("订单状态已变更",
		gecho.Field("order_no", event.OrderNo),
		gecho.Field("from", event.From),
		gecho.Field("to", event.To),
	)
	return nil
}
