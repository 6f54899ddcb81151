package user

import (
	"context"
	"errors"
	"io"

	"github.com/xiebiao/tintayhojas/internal/application/port"
	"github.com/xiebiao/tintayhojas/internal/application/view"
	"github.com/xiebiao/tintayhojas/internal/domain/user"
	"github.com/xiebiao/tintayhojas/internal/infrastructure/storage"
	"github.com/xiebiao/tintayhojas/pkg/saga"
)

// ProfileUseCase 个人资料的查看和修改
// 资料随账号创建，缺失时（如历史数据）自动补建
type ProfileUseCase struct {
	profiles user.ProfileRepository
	images   port.ImageStore
}

func NewProfileUseCase(profiles user.ProfileRepository, images port.ImageStore) *ProfileUseCase {
	return &ProfileUseCase{profiles: profiles, images: images}
}

func (uc *ProfileUseCase) Get(ctx context.Context, userID uint) (*view.ProfileView, error) {
	p, err := uc.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	v := view.NewProfile(p, uc.images.URL)
	return &v, nil
}

// UpdateProfileRequest Photo为nil时保留原照片
type UpdateProfileRequest struct {
	UserID  uint
	Phone   string
	Address string
	Photo   io.Reader
}

func (uc *ProfileUseCase) Update(ctx context.Context, req UpdateProfileRequest) (*view.ProfileView, error) {
	p, err := uc.getOrCreate(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	var photo string
	old := p.Photo
	err = saga.NewSaga(0).
		AddStep("保存照片", func(ctx context.Context) error {
			if req.Photo == nil {
				return nil
			}
			var err error
			photo, err = uc.images.Save(ctx, storage.KindUsers, req.Photo)
			return err
		}, func(ctx context.Context) error {
			return deleteImage(ctx, uc.images, photo)
		}).
		AddStep("保存资料", func(ctx context.Context) error {
			if err := p.Update(req.Phone, req.Address, photo); err != nil {
				return err
			}
			return uc.profiles.Update(ctx, p)
		}, nil).
		Execute(ctx)
	if err != nil {
		return nil, err
	}
	if photo != "" {
		_ = deleteImage(ctx, uc.images, old)
	}

	v := view.NewProfile(p, uc.images.URL)
	return &v, nil
}

func (uc *ProfileUseCase) getOrCreate(ctx context.Context, userID uint) (*user.Profile, error) {
	p, err := uc.profiles.FindByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, user.ErrProfileNotFound) {
		return nil, err
	}

	p = user.NewProfile(userID)
	if err := uc.profiles.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// deleteImage 删除不再使用的图片，失败只留下孤儿文件
func deleteImage(ctx context.Context, images port.ImageStore, stored string) error {
	if stored == "" {
		return nil
	}
	return images.Delete(ctx, stored)
}
