package service_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"autorenta/internal/db"
	apperrors "autorenta/internal/errors"
	"autorenta/internal/service"
)

type fakeUserRepo struct {
	seq   int
	users map[string]*db.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*db.User)}
}

func (f *fakeUserRepo) GetByEmail(email string) (*db.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByID(id int) (*db.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.NotFound("user %d not found", id)
}

func (f *fakeUserRepo) Create(name, email, phone, password, role string) (*db.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	f.seq++
	u := &db.User{ID: f.seq, Name: name, Email: email, Phone: phone, Role: role, PasswordHash: string(hashed)}
	f.users[email] = u
	copied := *u
	return &copied, nil
}

func TestRegisterAndLogin(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc := service.NewAuthService(newFakeUserRepo())

	user, err := svc.Register("Ana", "ana@example.com", "3001234567", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, db.RoleUser, user.Role)

	token, err := svc.Login("ana@example.com", "hunter22")
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.EqualValues(t, user.ID, claims["user_id"])
	assert.Equal(t, db.RoleUser, claims["role"])
}

func TestLoginWrongPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc := service.NewAuthService(newFakeUserRepo())

	_, err := svc.Register("Ana", "ana@example.com", "", "hunter22")
	require.NoError(t, err)

	_, err = svc.Login("ana@example.com", "wrong")
	assert.EqualError(t, err, "invalid credentials")

	_, err = svc.Login("nobody@example.com", "hunter22")
	assert.EqualError(t, err, "invalid credentials")
}

func TestRegisterValidation(t *testing.T) {
	svc := service.NewAuthService(newFakeUserRepo())

	_, err := svc.Register("", "", "", "123")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := service.NewAuthService(newFakeUserRepo())

	_, err := svc.Register("Ana", "ana@example.com", "", "hunter22")
	require.NoError(t, err)

	_, err = svc.Register("Ana B", "ana@example.com", "", "hunter23")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}
