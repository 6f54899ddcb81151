package user

import (
	"strings"
	"time"
)

// User 用户实体（聚合根）
// 密码只保存bcrypt哈希值;IsStaff决定能否进入后台,IsSuperuser的账号不可删除
type User struct {
	ID          uint
	Username    string
	Email       string
	Password    string // bcrypt哈希值
	IsStaff     bool
	IsSuperuser bool
	DateJoined  time.Time
	UpdatedAt   time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(username, email, hashedPassword string) *User {
	now := time.Now()
	return &User{
		Username:   strings.TrimSpace(username),
		Email:      strings.ToLower(strings.TrimSpace(email)),
		Password:   hashedPassword,
		DateJoined: now,
		UpdatedAt:  now,
	}
}

// CanAccessAdmin 是否可以访问后台
func (u *User) CanAccessAdmin() bool {
	return u.IsStaff || u.IsSuperuser
}

// UpdateAccount 后台修改账号信息
func (u *User) UpdateAccount(username, email string, isStaff bool) {
	u.Username = strings.TrimSpace(username)
	u.Email = strings.ToLower(strings.TrimSpace(email))
	u.IsStaff = isStaff
	u.UpdatedAt = time.Now()
}

// Profile 用户扩展资料，与User一对一，注册时创建
type Profile struct {
	ID        uint
	UserID    uint
	Phone     string
	Address   string
	Photo     string // 存储路径(可选)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProfile 创建空资料
func NewProfile(userID uint) *Profile {
	now := time.Now()
	return &Profile{UserID: userID, CreatedAt: now, UpdatedAt: now}
}

// Update 更新资料,photo为空时保留原照片
func (p *Profile) Update(phone, address, photo string) error {
	phone = strings.TrimSpace(phone)
	if len([]rune(phone)) > 20 {
		return ErrInvalidPhone
	}
	p.Phone = phone
	p.Address = strings.TrimSpace(address)
	if photo != "" {
		p.Photo = photo
	}
	p.UpdatedAt = time.Now()
	return nil
}
