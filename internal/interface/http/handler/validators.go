package handler

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/tintayhojas/internal/domain/order"
	"github.com/xiebiao/tintayhojas/internal/domain/review"
)

// RegisterValidators 向gin的校验引擎注册自定义tag
//
//	rating       评分1-5
//	money        非负金额，最多两位小数
//	orderstatus  pending / paid / shipped
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	rules := map[string]validator.Func{
		"rating":      validRating,
		"money":       validMoney,
		"orderstatus": validOrderStatus,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return nil
}

func validRating(fl validator.FieldLevel) bool {
	return review.ValidateRating(int(fl.Field().Int())) == nil
}

func validMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return !d.IsNegative() && d.Exponent() >= -2
}

func validOrderStatus(fl validator.FieldLevel) bool {
	_, err := order.ParseStatus(fl.Field().String())
	return err == nil
}
