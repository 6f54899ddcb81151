package mysql

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// baseRepo 各Repository共用的DB获取逻辑
type baseRepo struct {
	db *gorm.DB
}

func (r baseRepo) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// isDuplicateError 判断是否为MySQL唯一索引冲突（1062 Duplicate entry）
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// offset 分页偏移（page从1开始）
func offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}
