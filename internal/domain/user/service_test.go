package user

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeRepo struct {
	Repository
	users map[string]*User
}

func (r *fakeRepo) FindByUsername(_ context.Context, username string) (*User, error) {
	if u, ok := r.users[username]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func TestNewAccount(t *testing.T) {
	svc := NewService(&fakeRepo{}, WithBcryptCost(bcrypt.MinCost))

	u, err := svc.NewAccount(" lector ", "Lector@Example.com", "clave1234")
	require.NoError(t, err)
	assert.Equal(t, "lector", u.Username)
	assert.Equal(t, "lector@example.com", u.Email)
	assert.NotEqual(t, "clave1234", u.Password)
	assert.False(t, u.IsStaff)

	tests := []struct {
		name     string
		username string
		email    string
		password string
		want     error
	}{
		{"用户名为空", "", "a@b.co", "clave1234", ErrInvalidUsername},
		{"用户名含空格", "a b", "a@b.co", "clave1234", ErrInvalidUsername},
		{"用户名过长", strings.Repeat("a", 151), "a@b.co", "clave1234", ErrInvalidUsername},
		{"邮箱格式错误", "ana", "not-an-email", "clave1234", ErrInvalidEmail},
		{"密码太短", "ana", "a@b.co", "c1", ErrWeakPassword},
		{"密码无数字", "ana", "a@b.co", "clavesecreta", ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.NewAccount(tt.username, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("clave1234"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &fakeRepo{users: map[string]*User{
		"ana": {ID: 1, Username: "ana", Password: string(hashed)},
	}}
	svc := NewService(repo)

	u, err := svc.Authenticate(context.Background(), "ana", "clave1234")
	require.NoError(t, err)
	assert.Equal(t, uint(1), u.ID)

	_, err = svc.Authenticate(context.Background(), "ana", "otra1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nadie", "clave1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestProfileUpdate(t *testing.T) {
	p := NewProfile(1)
	require.NoError(t, p.Update("555-0100", "Calle 1", "profiles/a.png"))
	require.NoError(t, p.Update("555-0101", "Calle 2", ""))
	assert.Equal(t, "profiles/a.png", p.Photo)
	assert.Equal(t, "Calle 2", p.Address)

	assert.ErrorIs(t, p.Update(strings.Repeat("9", 21), "", ""), ErrInvalidPhone)
}

func TestCanAccessAdmin(t *testing.T) {
	assert.False(t, (&User{}).CanAccessAdmin())
	assert.True(t, (&User{IsStaff: true}).CanAccessAdmin())
	assert.True(t, (&User{IsSuperuser: true}).CanAccessAdmin())
}
