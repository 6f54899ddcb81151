// Package saga 按顺序执行一组本地步骤，某一步失败时逆序执行已完成步骤的补偿
//
// 用于跨越数据库和文件存储的写操作：先保存上传的图片，再写数据库，
// 写库失败时删除刚保存的图片。补偿操作必须幂等。
package saga

import (
	"context"
	"fmt"
	"time"
)

// Step Saga中的一个步骤，Action和Compensate都可以为nil
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga 一次性使用，不要并发调用Execute
type Saga struct {
	steps     []Step
	executed  []Step
	timeout   time.Duration
	onFailure func(step string, err error)
}

// NewSaga timeout<=0表示不设整体超时
//
//	s := saga.NewSaga(0)
//	s.AddStep("保存封面", saveImage, deleteImage)
//	s.AddStep("保存图书", createBook, nil)
//	err := s.Execute(ctx)
func NewSaga(timeout time.Duration) *Saga {
	return &Saga{timeout: timeout}
}

// AddStep 按添加顺序执行，按逆序补偿
func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) *Saga {
	s.steps = append(s.steps, Step{Name: name, Action: action, Compensate: compensate})
	return s
}

// OnCompensateFailure 补偿失败时的回调，补偿失败不会中断后续补偿
func (s *Saga) OnCompensateFailure(fn func(step string, err error)) *Saga {
	s.onFailure = fn
	return s
}

// Execute 依次执行所有步骤
// 失败时先补偿再返回，返回的错误包装了失败步骤的原始错误
func (s *Saga) Execute(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		if err := ctx.Err(); err != nil {
			s.compensate(context.WithoutCancel(ctx))
			return fmt.Errorf("saga超时: %w", err)
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				// 补偿用不会被取消的ctx，避免超时后补偿也失败
				s.compensate(context.WithoutCancel(ctx))
				return fmt.Errorf("步骤[%d:%s]执行失败: %w", i, step.Name, err)
			}
		}
		s.executed = append(s.executed, step)
	}
	return nil
}

func (s *Saga) compensate(ctx context.Context) {
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil && s.onFailure != nil {
			s.onFailure(step.Name, err)
		}
	}
	s.executed = nil
}
