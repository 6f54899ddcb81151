// Package port 应用层依赖的基础设施接口，由infrastructure层实现
package port

import (
	"context"
	"io"
	"time"

	"github.com/xiebiao/tintayhojas/internal/domain/order"
)

// TxManager 事务管理（mysql.TxManager）
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ImageStore 图片存储（storage.LocalStorage）
type ImageStore interface {
	Save(ctx context.Context, kind string, r io.Reader) (string, error)
	Delete(ctx context.Context, stored string) error
	URL(stored string) string
}

// CatalogCache 目录缓存（redis.CatalogCache）
type CatalogCache interface {
	Get(ctx context.Context, name string, dest interface{}) bool
	Set(ctx context.Context, name string, value interface{})
	Invalidate(ctx context.Context)
}

// OrderEventPublisher 订单事件发布（messaging.OrderEventPublisher / LogPublisher）
type OrderEventPublisher interface {
	PublishOrderPaid(ctx context.Context, event order.PaidEvent) error
	PublishOrderStatusChanged(ctx context.Context, event order.StatusChangedEvent) error
}

// SessionStore 会话与Token黑名单（redis.SessionStore）
type SessionStore interface {
	SaveSession(ctx context.Context, userID uint, data map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID uint) error
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// ReceiptRenderer 生成订单PDF收据（receipt.PDFRenderer）
type ReceiptRenderer interface {
	Render(o *order.Order) ([]byte, error)
}
