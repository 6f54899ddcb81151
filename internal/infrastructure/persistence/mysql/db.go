package mysql

import (
	"fmt"
	"time"

	"github.com/MonkyMars/gecho"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xiebiao/tintayhojas/internal/infrastructure/config"
	applogger "github.com/xiebiao/tintayhojas/internal/infrastructure/logger"
)

// NewDB 创建数据库连接
//  1. GORM日志接入gecho，debug级别打印全部SQL，否则只记录慢查询和错误
//  2. 配置连接池
//  3. 按配置执行AutoMigrate
func NewDB(cfg *config.Config, logger *gecho.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if applogger.IsDebug(cfg.Log) {
		level = gormlogger.Info
	}

	db, err := gorm.Open(mysql.Open(cfg.Database.DSN()), &gorm.Config{
		Logger:         NewGormLogger(logger, slowQueryThreshold).LogMode(level),
		NowFunc: func() time.Time {
			return time.Now().Truncate(time.Microsecond)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	logger.Info("数据库连接成功",
		gecho.Field("host", cfg.Database.Host),
		gecho.Field("database", cfg.Database.DBName),
	)

	if cfg.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
		logger.Info("数据库表迁移完成")
	}

	return db, nil
}

// AutoMigrate 自动迁移表结构（只加表加字段，不删列）
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels()...)
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
