package user

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/tintayhojas/internal/application/apptest"
	"github.com/xiebiao/tintayhojas/internal/domain/user"
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
	"github.com/xiebiao/tintayhojas/pkg/jwt"
)

type fixture struct {
	store    *apptest.Store
	sessions *apptest.Sessions
	service  user.Service
	jwt      *jwt.Manager
	register *RegisterUseCase
}

func newFixture() *fixture {
	store := apptest.NewStore()
	service := user.NewService(store.Users(), user.WithBcryptCost(bcrypt.MinCost))
	return &fixture{
		store:    store,
		sessions: apptest.NewSessions(),
		service:  service,
		jwt:      jwt.NewManager("test-secret", time.Hour, 24*time.Hour),
		register: NewRegisterUseCase(store, service, store.Users(), store.Profiles(), store.Carts(), gecho.NewDefaultLogger()),
	}
}

func TestRegisterProvisionsCartAndProfile(t *testing.T) {
	f := newFixture()

	u, err := f.register.Execute(context.Background(), RegisterRequest{
		Username: "lectora", Email: "Lectora@Example.com", Password: "secreto123",
	})
	require.NoError(t, err)
	assert.Equal(t, "lectora@example.com", u.Email)
	assert.False(t, u.IsStaff)
	assert.True(t, f.store.HasCart(u.ID))
	assert.True(t, f.store.HasProfile(u.ID))
}

func TestRegisterSuperuserIsStaff(t *testing.T) {
	f := newFixture()

	u, err := f.register.Execute(context.Background(), RegisterRequest{
		Username: "admin", Email: "admin@example.com", Password: "secreto123", IsSuperuser: true,
	})
	require.NoError(t, err)
	assert.True(t, u.IsStaff)
	assert.True(t, u.IsSuperuser)
}

func TestRegisterFailures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.register.Execute(ctx, RegisterRequest{Username: "lectora", Email: "a@example.com", Password: "secreto123"})
	require.NoError(t, err)

	_, err = f.register.Execute(ctx, RegisterRequest{Username: "lectora", Email: "b@example.com", Password: "secreto123"})
	assert.ErrorIs(t, err, user.ErrUsernameDuplicate)

	_, err = f.register.Execute(ctx, RegisterRequest{Username: "otra", Email: "a@example.com", Password: "secreto123"})
	assert.ErrorIs(t, err, user.ErrEmailDuplicate)

	_, err = f.register.Execute(ctx, RegisterRequest{Username: "otra", Email: "c@example.com", Password: "corta"})
	assert.ErrorIs(t, err, user.ErrWeakPassword)

	assert.Equal(t, 1, f.store.UserCount())
}

func TestRegisterRollsBackOnProfileFailure(t *testing.T) {
	f := newFixture()
	f.store.FailOn("profile.Create", errors.New("disk full"))

	_, err := f.register.Execute(context.Background(), RegisterRequest{Username: "lectora", Email: "a@example.com", Password: "secreto123"})
	require.Error(t, err)
	assert.Zero(t, f.store.UserCount())
}

func TestLoginLogoutRefresh(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	registered, err := f.register.Execute(ctx, RegisterRequest{Username: "lectora", Email: "a@example.com", Password: "secreto123"})
	require.NoError(t, err)

	login := NewLoginUseCase(f.service, f.jwt, f.sessions, gecho.NewDefaultLogger())
	resp, err := login.Execute(ctx, LoginRequest{Username: "lectora", Password: "secreto123", ClientIP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, resp.User.ID)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, "10.0.0.1", f.sessions.Sessions[registered.ID]["ip"])

	claims, err := f.jwt.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "lectora", claims.Username)

	refresh := NewRefreshTokenUseCase(f.store.Users(), f.jwt, f.sessions)
	pair, err := refresh.Execute(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, err = refresh.Execute(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken, "Refresh Token只能用一次")

	_, err = refresh.Execute(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	logout := NewLogoutUseCase(f.sessions, f.jwt)
	require.NoError(t, logout.Execute(ctx, registered.ID, resp.AccessToken))
	assert.NotContains(t, f.sessions.Sessions, registered.ID)
	blocked, err := f.sessions.IsInBlacklist(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, blocked)
	assert.Equal(t, time.Hour, f.sessions.Blacklist[resp.AccessToken])
}

func TestLoginFailuresAreUniform(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.register.Execute(ctx, RegisterRequest{Username: "lectora", Email: "a@example.com", Password: "secreto123"})
	require.NoError(t, err)
	login := NewLoginUseCase(f.service, f.jwt, f.sessions, gecho.NewDefaultLogger())

	_, wrongPassword := login.Execute(ctx, LoginRequest{Username: "lectora", Password: "otraclave1"})
	_, unknownUser := login.Execute(ctx, LoginRequest{Username: "nadie", Password: "secreto123"})
	assert.ErrorIs(t, wrongPassword, user.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownUser, user.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestProfile(t *testing.T) {
	ctx := context.Background()
	store := apptest.NewStore()
	images := apptest.NewImages()
	u := store.AddUser("lectora", false)
	uc := NewProfileUseCase(store.Profiles(), images)

	p, err := uc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, p.Photo)

	p, err = uc.Update(ctx, UpdateProfileRequest{UserID: u.ID, Phone: "555-0100", Address: "Calle 5", Photo: bytes.NewReader([]byte("png"))})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", p.Phone)
	require.NotEmpty(t, p.Photo)
	first := p.Photo

	// 不上传照片时保留原照片
	p, err = uc.Update(ctx, UpdateProfileRequest{UserID: u.ID, Address: "Calle 6"})
	require.NoError(t, err)
	assert.Equal(t, first, p.Photo)
	assert.Empty(t, images.Deleted)

	// 换照片后删除旧文件
	p, err = uc.Update(ctx, UpdateProfileRequest{UserID: u.ID, Photo: bytes.NewReader([]byte("png2"))})
	require.NoError(t, err)
	assert.NotEqual(t, first, p.Photo)
	require.Len(t, images.Deleted, 1)

	_, err = uc.Update(ctx, UpdateProfileRequest{UserID: u.ID, Phone: "012345678901234567890"})
	assert.ErrorIs(t, err, user.ErrInvalidPhone)

	// 资料校验失败时删除刚上传的照片
	_, err = uc.Update(ctx, UpdateProfileRequest{UserID: u.ID, Phone: "012345678901234567890", Photo: bytes.NewReader([]byte("png3"))})
	assert.ErrorIs(t, err, user.ErrInvalidPhone)
	assert.Len(t, images.Deleted, 2)
}

func TestProfileCreatedWhenMissing(t *testing.T) {
	store := apptest.NewStore()
	u := store.PutUser(user.User{Username: "antiguo", Email: "antiguo@example.com"})
	uc := NewProfileUseCase(store.Profiles(), apptest.NewImages())

	_, err := uc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, store.HasProfile(u.ID))
}
