package order

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateOrderNo 生成订单号
// 格式:ORD + 年月日时分秒 + 6位随机数，例如 ORD20261016153045123456
// 唯一性最终由orders.order_no的UNIQUE索引保证
func GenerateOrderNo() string {
	return fmt.Sprintf("ORD%s%06d", time.Now().Format("20060102150405"), rand.Intn(1000000))
}
