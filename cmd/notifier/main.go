// notifier 消费订单事件：记录日志、上报指标，按配置发送订单确认邮件
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xiebiao/tintayhojas/internal/domain/order"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/config"
	applogger "github.com/xiebiao/tintayhojas/internal/infrastructure/logger"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/messaging"
	"github.com/xiebiao/tintayhojas/pkg/metrics"
	"github.com/xiebiao/tintayhojas/pkg/mq"
)

// metricsAddr notifier自己的/metrics端口
const metricsAddr = ":9101"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}
	logger := applogger.New(cfg.Log)

	if !cfg.MQ.Enabled {
		logger.Warn("mq.enabled=false，没有可消费的订单事件，notifier退出")
		return
	}

	metrics.InitMetrics()
	go serveMetrics(logger)

	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, "topic", cfg.MQ.Queue,
		[]string{order.EventOrderPaid, order.EventOrderStatusChanged}, logger)
	if err != nil {
		logger.Error("连接RabbitMQ失败", gecho.Field("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = consumer.Close() }()

	var mailer messaging.Mailer
	if cfg.Email.Enabled {
		mailer = messaging.NewResendMailer(cfg.Email.APIKey, cfg.Email.From, logger)
	}
	notifier := messaging.NewOrderNotifier(consumer.Queue(), mailer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("开始消费订单事件",
		gecho.Field("queue", consumer.Queue()),
		gecho.Field("email", cfg.Email.Enabled),
	)
	if err := consumer.Consume(ctx, notifier.Handle); err != nil {
		logger.Error("消费中断", gecho.Field("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("notifier已退出")
}

func serveMetrics(logger *gecho.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Warn("metrics端口不可用", gecho.Field("error", err.Error()))
	}
}
