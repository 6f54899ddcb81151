package mysql

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/xiebiao/tintayhojas/internal/domain/user"
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
)

// userRepository 用户仓储实现（MySQL）
// 用户名、邮箱的唯一性由UNIQUE索引保证，冲突按索引名区分
type userRepository struct {
	baseRepo
}

// NewUserRepository 创建用户仓储
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{baseRepo{db: db}}
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := &UserModel{
		Username:    u.Username,
		Email:       u.Email,
		Password:    u.Password,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		DateJoined:  u.DateJoined,
	}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return duplicateUserError(err)
		}
		return apperrors.Wrap(err, "创建用户失败")
	}

	u.ID = model.ID
	u.DateJoined = model.DateJoined
	u.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(email))
}

func (r *userRepository) findOne(ctx context.Context, query string, arg interface{}) (*user.User, error) {
	var model UserModel
	if err := r.getDB(ctx).Where(query, arg).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户失败")
	}
	return toUserEntity(&model), nil
}

func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	result := r.getDB(ctx).Model(&UserModel{ID: u.ID}).Updates(map[string]interface{}{
		"username":     u.Username,
		"email":        u.Email,
		"password":     u.Password,
		"is_staff":     u.IsStaff,
		"is_superuser": u.IsSuperuser,
	})
	if result.Error != nil {
		if isDuplicateError(result.Error) {
			return duplicateUserError(result.Error)
		}
		return apperrors.Wrap(result.Error, "更新用户失败")
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, u.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete 按依赖顺序删除：购物车条目 → 购物车 → 资料 → 书评 → 订单明细 → 订单 → 用户
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	db := r.getDB(ctx)

	var model UserModel
	if err := db.First(&model, id).Error; err != nil {
		if isNotFound(err) {
			return user.ErrUserNotFound
		}
		return apperrors.Wrap(err, "查询用户失败")
	}
	if model.IsSuperuser {
		return user.ErrSuperuserProtected
	}

	var cartIDs []uint
	if err := db.Model(&CartModel{}).Where("user_id = ?", id).Pluck("id", &cartIDs).Error; err != nil {
		return apperrors.Wrap(err, "查询购物车失败")
	}
	if len(cartIDs) > 0 {
		if err := db.Where("cart_id IN ?", cartIDs).Delete(&CartItemModel{}).Error; err != nil {
			return apperrors.Wrap(err, "删除购物车条目失败")
		}
	}

	var orderIDs []uint
	if err := db.Model(&OrderModel{}).Where("user_id = ?", id).Pluck("id", &orderIDs).Error; err != nil {
		return apperrors.Wrap(err, "查询订单失败")
	}
	if len(orderIDs) > 0 {
		if err := db.Where("order_id IN ?", orderIDs).Delete(&OrderLineModel{}).Error; err != nil {
			return apperrors.Wrap(err, "删除订单明细失败")
		}
	}

	for _, m := range []interface{}{&CartModel{}, &ProfileModel{}, &ReviewModel{}, &OrderModel{}} {
		if err := db.Where("user_id = ?", id).Delete(m).Error; err != nil {
			return apperrors.Wrap(err, "删除用户关联数据失败")
		}
	}

	if err := db.Delete(&UserModel{}, id).Error; err != nil {
		return apperrors.Wrap(err, "删除用户失败")
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, params user.ListParams) ([]*user.User, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 20
	}

	query := r.getDB(ctx).Model(&UserModel{})
	if params.ExcludeSuperusers {
		query = query.Where("is_superuser = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询用户总数失败")
	}

	var models []UserModel
	err := query.Order("date_joined DESC").Order("id DESC").
		Offset(offset(params.Page, params.PageSize)).
		Limit(params.PageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询用户列表失败")
	}

	users := make([]*user.User, 0, len(models))
	for i := range models {
		users = append(users, toUserEntity(&models[i]))
	}
	return users, total, nil
}

// duplicateUserError 根据冲突的索引名返回对应的业务错误
func duplicateUserError(err error) error {
	if strings.Contains(err.Error(), "uk_users_username") {
		return user.ErrUsernameDuplicate
	}
	return user.ErrEmailDuplicate
}

func toUserEntity(m *UserModel) *user.User {
	return &user.User{
		ID:          m.ID,
		Username:    m.Username,
		Email:       m.Email,
		Password:    m.Password,
		IsStaff:     m.IsStaff,
		IsSuperuser: m.IsSuperuser,
		DateJoined:  m.DateJoined,
		UpdatedAt:   m.UpdatedAt,
	}
}

// profileRepository 用户资料仓储
type profileRepository struct {
	baseRepo
}

func NewProfileRepository(db *gorm.DB) user.ProfileRepository {
	return &profileRepository{baseRepo{db: db}}
}

func (r *profileRepository) Create(ctx context.Context, p *user.Profile) error {
	model := &ProfileModel{UserID: p.UserID, Phone: p.Phone, Address: p.Address, Photo: p.Photo}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建用户资料失败")
	}
	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *profileRepository) FindByUserID(ctx context.Context, userID uint) (*user.Profile, error) {
	var model ProfileModel
	if err := r.getDB(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if isNotFound(err) {
			return nil, user.ErrProfileNotFound
		}
		return nil, apperrors.Wrap(err, "查询用户资料失败")
	}
	return &user.Profile{
		ID:        model.ID,
		UserID:    model.UserID,
		Phone:     model.Phone,
		Address:   model.Address,
		Photo:     model.Photo,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}, nil
}

func (r *profileRepository) Update(ctx context.Context, p *user.Profile) error {
	err := r.getDB(ctx).Model(&ProfileModel{ID: p.ID}).Updates(map[string]interface{}{
		"phone":   p.Phone,
		"address": p.Address,
		"photo":   p.Photo,
	}).Error
	if err != nil {
		return apperrors.Wrap(err, "更新用户资料失败")
	}
	return nil
}
