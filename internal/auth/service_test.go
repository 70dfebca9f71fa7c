package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/connectly/backend/internal/logger"
	"github.com/connectly/backend/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	logger.InitializeForTests()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	return NewService(db, []byte("test-secret"))
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc := newTestService(t)

	reg, err := svc.Register(RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret1",
		Name:     "Alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, models.RoleUser, reg.User.Role)
	assert.NotEqual(t, "supersecret1", reg.User.PasswordHash)

	login, err := svc.Login(LoginRequest{Email: "alice@example.com", Password: "supersecret1"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
}

func TestRegisterDuplicates(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "supersecret1",
	})
	require.NoError(t, err)

	_, err = svc.Register(RegisterRequest{
		Username: "alice2", Email: "ALICE@example.com", Password: "supersecret1",
	})
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = svc.Register(RegisterRequest{
		Username: "ALICE", Email: "other@example.com", Password: "supersecret1",
	})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register(RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "supersecret1",
	})
	require.NoError(t, err)

	_, err = svc.Login(LoginRequest{Email: "alice@example.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(LoginRequest{Email: "ghost@example.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateToken(t *testing.T) {
	svc := newTestService(t)

	reg, err := svc.Register(RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "supersecret1",
	})
	require.NoError(t, err)

	user, err := svc.ValidateToken(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, user.ID)

	_, err = svc.ValidateToken("garbage.token.value")
	assert.Error(t, err)

	other := NewService(svc.db, []byte("different-secret"))
	_, err = other.ValidateToken(reg.Token)
	assert.Error(t, err)
}
