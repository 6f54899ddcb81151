package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"time"

	"github.com/MonkyMars/gecho"

	"github.com/xiebiao/tintayhojas/internal/domain/order"
	"github.com/xiebiao/tintayhojas/pkg/metrics"
)

// Mailer 邮件发送接口
type Mailer interface {
	Send(ctx context.Context, to []string, subject, html string) error
}

// OrderNotifier cmd/notifier的消息处理器
// 返回error时消息会Nack重新入队
type OrderNotifier struct {
	queue  string
	mailer Mailer // 为nil时不发邮件
	logger *gecho.Logger
}

func NewOrderNotifier(queue string, mailer Mailer, logger *gecho.Logger) *OrderNotifier {
	return &OrderNotifier{queue: queue, mailer: mailer, logger: logger}
}

// Handle 处理一条订单事件
func (n *OrderNotifier) Handle(routingKey string, body []byte) error {
	start := time.Now()
	err := n.handle(routingKey, body)
	metrics.ObserveHistogram(metrics.MessageProcessingDuration, time.Since(start).Seconds())

	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.IncCounterVec(metrics.MessagesConsumedTotal, map[string]string{"queue": n.queue, "result": result})
	return err
}

func (n *OrderNotifier) handle(routingKey string, body []byte) error {
	switch routingKey {
	case order.EventOrderPaid:
		var event order.PaidEvent
		if err := json.Unmarshal(body, &event); err != nil {
			// 格式错误的消息重试也没用，记录后丢弃
			n.logger.Error("订单事件解析失败", gecho.Field("routing_key", routingKey), gecho.Field("error", err.Error()))
			return nil
		}
		return n.onOrderPaid(event)

	case order.EventOrderStatusChanged:
		var event order.StatusChangedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			n.logger.Error("订单事件解析失败", gecho.Field("routing_key", routingKey), gecho.Field("error", err.Error()))
			return nil
		}
		n.logger.Info("订单状态变更",
			gecho.Field("order_no", event.OrderNo),
			gecho.Field("from", event.From),
			gecho.Field("to", event.To),
		)
		return nil

	default:
		n.logger.Warn("忽略未知事件", gecho.Field("routing_key", routingKey))
		return nil
	}
}

func (n *OrderNotifier) onOrderPaid(event order.PaidEvent) error {
	n.logger.Info("收到订单支付事件",
		gecho.Field("order_no", event.OrderNo),
		gecho.Field("username", event.Username),
		gecho.Field("total", event.Total),
		gecho.Field("lines", len(event.Lines)),
	)

	if n.mailer == nil || event.Email == "" {
		return nil
	}

	html, err := RenderOrderConfirmation(event)
	if err != nil {
		n.logger.Error("渲染确认邮件失败", gecho.Field("order_no", event.OrderNo), gecho.Field("error", err.Error()))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	subject := fmt.Sprintf("Tinta y Hojas - Pedido %s confirmado", event.OrderNo)
	if err := n.mailer.Send(ctx, []string{event.Email}, subject, html); err != nil {
		return fmt.Errorf("发送确认邮件失败: %w", err)
	}
	return nil
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<h2>¡Gracias por tu compra, {{.Username}}!</h2>
<p>Pedido <strong>{{.OrderNo}}</strong></p>
<table>
<tr><th>Libro</th><th>Cantidad</th><th>Precio</th></tr>
{{range .Lines}}<tr><td>{{.Title}}</td><td>{{.Quantity}}</td><td>${{.UnitPrice}}</td></tr>
{{end}}</table>
<p>Subtotal: ${{.Subtotal}}<br>IVA: ${{.Taxes}}<br><strong>Total: ${{.Total}}</strong></p>
<p>Envío a: {{.Address}}</p>`))

// RenderOrderConfirmation 渲染订单确认邮件
func RenderOrderConfirmation(event order.PaidEvent) (string, error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, event); err != nil {
		return "", err
	}
	return buf.String(), nil
}
