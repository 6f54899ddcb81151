// createsuperuser 创建超级管理员（同时创建购物车和个人资料）
//
//	go run ./cmd/createsuperuser --username admin --email admin@tintayhojas.mx --password 's3cr3t0123'
//
// 未指定--password时读取环境变量TINTAYHOJAS_SUPERUSER_PASSWORD
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/xiebiao/tintayhojas/internal/domain/user"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/config"
	applogger "github.com/xiebiao/tintayhojas/internal/infrastructure/logger"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/persistence/mysql"

	userapp "github.com/xiebiao/tintayhojas/internal/application/user"
)

const passwordEnv = "TINTAYHOJAS_SUPERUSER_PASSWORD"

type options struct {
	username string
	email    string
	password string
	migrate  bool
}

func parseFlags(args []string) (*options, error) {
	opts := &options{}
	fs := pflag.NewFlagSet("createsuperuser", pflag.ContinueOnError)
	fs.StringVarP(&opts.username, "username", "u", "", "用户名（必填）")
	fs.StringVarP(&opts.email, "email", "e", "", "邮箱（必填）")
	fs.StringVarP(&opts.password, "password", "p", "", "密码，8-20位且包含字母和数字")
	fs.BoolVar(&opts.migrate, "migrate", false, "创建前先执行数据库迁移")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if opts.password == "" {
		opts.password = os.Getenv(passwordEnv)
	}
	if opts.username == "" || opts.email == "" || opts.password == "" {
		return nil, fmt.Errorf("--username、--email和--password（或%s）都不能为空", passwordEnv)
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "创建超级管理员失败: %v\n", err)
		os.Exit(1)
	}
}

func run(opts *options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := applogger.New(cfg.Log)

	db, err := mysql.NewDB(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = mysql.Close(db) }()

	if opts.migrate {
		if err := mysql.AutoMigrate(db); err != nil {
			return err
		}
	}

	users := mysql.NewUserRepository(db)
	register := userapp.NewRegisterUseCase(
		mysql.NewTxManager(db),
		user.NewService(users),
		users,
		mysql.NewProfileRepository(db),
		mysql.NewCartRepository(db),
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created, err := register.Execute(ctx, userapp.RegisterRequest{
		Username:    opts.username,
		Email:       opts.email,
		Password:    opts.password,
		IsStaff:     true,
		IsSuperuser: true,
	})
	if err != nil {
		return err
	}

	fmt.Printf("超级管理员已创建: id=%d username=%s\n", created.ID, created.Username)
	return nil
}
