package service_test

import (
	"database/sql"
	"testing"

	"eventos-api/internal/auth"
	"eventos-api/internal/models"
	"eventos-api/internal/users/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockUserDB struct {
	mock.Mock
}

func (m *MockUserDB) EmailExists(email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserDB) CPFExists(cpf string) (bool, error) {
	args := m.Called(cpf)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserDB) CreatePessoaWithUsuario(pessoa *models.Pessoa, usuario *models.Usuario) error {
	return m.Called(pessoa, usuario).Error(0)
}

func (m *MockUserDB) GetUsuarioByEmail(email string) (*models.Usuario, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Usuario), args.Error(1)
}

func (m *MockUserDB) GetUsuarioByCPF(cpf string) (*models.Usuario, error) {
	args := m.Called(cpf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Usuario), args.Error(1)
}

func (m *MockUserDB) GetUsuarioByID(id int64) (*models.Usuario, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Usuario), args.Error(1)
}

func (m *MockUserDB) TouchLastLogin(id int64) error {
	return m.Called(id).Error(0)
}

func (m *MockUserDB) IsBlacklisted(jti string) (bool, error) {
	args := m.Called(jti)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserDB) Blacklist(jti string) error {
	return m.Called(jti).Error(0)
}

var testHash string

func passwordHash(t *testing.T) string {
	if testHash == "" {
		hash, err := auth.HashPassword("senha-secreta")
		if err != nil {
			t.Fatalf("Failed to hash password: %v", err)
		}
		testHash = hash
	}
	return testHash
}

func newService(mockDB *MockUserDB) *service.UserService {
	return service.NewUserService(mockDB, auth.NewCodec("test-secret"), 60, 120)
}

func storedUser(t *testing.T) *models.Usuario {
	cpf := "12345678901"
	nascimento, err := models.ParseDate("1990-05-20")
	if err != nil {
		t.Fatalf("bad date: %v", err)
	}
	return &models.Usuario{
		ID:        7,
		IDPessoa:  3,
		Email:     "maria@example.com",
		SenhaHash: passwordHash(t),
		IsActive:  true,
		Pessoa: &models.Pessoa{
			ID:             3,
			Nome:           "Maria Silva",
			CPF:            &cpf,
			DataNascimento: nascimento,
		},
	}
}

func TestRegisterNormalizesAndCreates(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := newService(mockDB)

	mockDB.On("EmailExists", "maria@example.com").Return(false, nil)
	mockDB.On("CPFExists", "12345678901").Return(false, nil)
	mockDB.On("CreatePessoaWithUsuario", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Pessoa).ID = 3
		args.Get(1).(*models.Usuario).IDPessoa = 3
	}).Return(nil)

	nascimento, _ := models.ParseDate("1990-05-20")
	pessoa, usuario, err := svc.Register(service.RegisterInput{
		Nome:           "  Maria Silva  ",
		CPF:            "123.456.789-01",
		DataNascimento: nascimento,
		Email:          "  Maria@Example.COM ",
		Senha:          "senha-secreta",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Maria Silva", pessoa.Nome)
	if assert.NotNil(t, pessoa.CPF) {
		assert.Equal(t, "12345678901", *pessoa.CPF)
	}
	assert.Equal(t, int64(3), usuario.IDPessoa)
	assert.Equal(t, "maria@example.com", usuario.Email)
	assert.True(t, usuario.IsActive)
	assert.True(t, auth.VerifyPassword("senha-secreta", usuario.SenhaHash))
	mockDB.AssertExpectations(t)
}

func TestRegisterEmailTaken(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := newService(mockDB)

	mockDB.On("EmailExists", "maria@example.com").Return(true, nil)

	_, _, err := svc.Register(service.RegisterInput{Email: "maria@example.com", Senha: "x"})
	assert.ErrorIs(t, err, service.ErrEmailTaken)
	mockDB.AssertNotCalled(t, "CreatePessoaWithUsuario", mock.Anything, mock.Anything)
}

func TestRegisterCPFTaken(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := newService(mockDB)

	mockDB.On("EmailExists", "maria@example.com").Return(false, nil)
	mockDB.On("CPFExists", "12345678901").Return(true, nil)

	_, _, err := svc.Register(service.RegisterInput{
		Email: "maria@example.com",
		CPF:   "12345678901",
		Senha: "x",
	})
	assert.ErrorIs(t, err, service.ErrCPFTaken)
}

func TestRegisterWithoutCPFSkipsCheck(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := newService(mockDB)

	mockDB.On("EmailExists", "maria@example.com").Return(false, nil)
	mockDB.On("CreatePessoaWithUsuario", mock.Anything, mock.Anything).Return(nil)

	pessoa, _, err := svc.Register(service.RegisterInput{
		Email: "maria@example.com",
		Senha: "senha-secreta",
	})
	assert.NoError(t, err)
	assert.Nil(t, pessoa.CPF)
	mockDB.AssertNotCalled(t, "CPFExists", mock.Anything)
}

func TestLoginByEmail(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := newService(mockDB)

	mockDB.On("GetUsuarioByEmail", "maria@example.com").Return(storedUser(t), nil)
	mockDB.On("TouchLastLogin", int64(7)).Return(nil)

	access, refresh, err := svc.Login("Maria@Example.com", "senha-secreta")
	assert.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)
	mockDB.AssertNotCalled(t, "GetUsuarioByCPF", mock.Anything)
}

func TestLoginByCPF(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := newService(mockDB)

	mockDB.On("GetUsuarioByCPF", "12345678901").Return(storedUser(t), nil)
	mockDB.On("TouchLastLogin", int64(7)).Return(nil)

	// Punctuation is stripped before the lookup.
	access, _, err := svc.Login("123.456.789-01", "senha-secreta")
	assert.NoError(t, err)
	assert.NotEmpty(t, access)
	mockDB.AssertNotCalled(t, "GetUsuarioByEmail", mock.Anything)
}

func TestLoginWrongPassword(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := newService(mockDB)

	mockDB.On("GetUsuarioByEmail", "maria@example.com").Return(storedUser(t), nil)

	_, _, err := svc.Login("maria@example.com", "senha-errada")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	mockDB.AssertNotCalled(t, "TouchLastLogin", mock.Anything)
}

func TestLoginUnknownUser(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := newService(mockDB)

	mockDB.On("GetUsuarioByEmail", "ninguem@example.com").Return(nil, sql.ErrNoRows)

	_, _, err := svc.Login("ninguem@example.com", "qualquer")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLoginSurvivesTouchFailure(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := newService(mockDB)

	mockDB.On("GetUsuarioByEmail", "maria@example.com").Return(storedUser(t), nil)
	mockDB.On("TouchLastLogin", int64(7)).Return(sql.ErrConnDone)

	access, _, err := svc.Login("maria@example.com", "senha-secreta")
	assert.NoError(t, err)
	assert.NotEmpty(t, access)
}

func TestMe(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := newService(mockDB)

	mockDB.On("GetUsuarioByEmail", "maria@example.com").Return(storedUser(t), nil)
	mockDB.On("TouchLastLogin", int64(7)).Return(nil)
	mockDB.On("IsBlacklisted", mock.Anything).Return(false, nil)
	mockDB.On("GetUsuarioByID", int64(7)).Return(storedUser(t), nil)

	access, _, err := svc.Login("maria@example.com", "senha-secreta")
	assert.NoError(t, err)

	profile, err := svc.Me(access)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), profile.Usuario.ID)
	assert.Equal(t, "maria@example.com", profile.Usuario.Email)
	assert.Equal(t, "Maria Silva", profile.Pessoa.Nome)
}

func TestMeRejectsRefreshToken(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := newService(mockDB)

	mockDB.On("GetUsuarioByEmail", "maria@example.com").Return(storedUser(t), nil)
	mockDB.On("TouchLastLogin", int64(7)).Return(nil)

	_, refresh, err := svc.Login("maria@example.com", "senha-secreta")
	assert.NoError(t, err)

	_, err = svc.Me(refresh)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestMeBlacklistedToken(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := newService(mockDB)

	mockDB.On("GetUsuarioByEmail", "maria@example.com").Return(storedUser(t), nil)
	mockDB.On("TouchLastLogin", int64(7)).Return(nil)
	mockDB.On("IsBlacklisted", mock.Anything).Return(true, nil)

	access, _, err := svc.Login("maria@example.com", "senha-secreta")
	assert.NoError(t, err)

	_, err = svc.Me(access)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
	mockDB.AssertNotCalled(t, "GetUsuarioByID", mock.Anything)
}

func TestMeUserGone(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := newService(mockDB)

	mockDB.On("GetUsuarioByEmail", "maria@example.com").Return(storedUser(t), nil)
	mockDB.On("TouchLastLogin", int64(7)).Return(nil)
	mockDB.On("IsBlacklisted", mock.Anything).Return(false, nil)
	mockDB.On("GetUsuarioByID", int64(7)).Return(nil, sql.ErrNoRows)

	access, _, err := svc.Login("maria@example.com", "senha-secreta")
	assert.NoError(t, err)

	_, err = svc.Me(access)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestMeGarbageToken(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := newService(mockDB)

	_, err := svc.Me("not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestRefreshIssuesNewAccessOnly(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := newService(mockDB)

	mockDB.On("GetUsuarioByEmail", "maria@example.com").Return(storedUser(t), nil)
	mockDB.On("TouchLastLogin", int64(7)).Return(nil)
	mockDB.On("IsBlacklisted", mock.Anything).Return(false, nil)
	mockDB.On("GetUsuarioByID", int64(7)).Return(storedUser(t), nil)

	access, refresh, err := svc.Login("maria@example.com", "senha-secreta")
	assert.NoError(t, err)

	newAccess, err := svc.Refresh(refresh)
	assert.NoError(t, err)
	assert.NotEmpty(t, newAccess)
	assert.NotEqual(t, refresh, newAccess)

	// The new token works for /me, the old refresh token stays valid.
	_, err = svc.Me(newAccess)
	assert.NoError(t, err)
	_, err = svc.Refresh(refresh)
	assert.NoError(t, err)

	// An access token cannot be used to refresh.
	_, err = svc.Refresh(access)
	assert.ErrorIs(t, err, service.ErrInvalidToken)
}

func TestLogoutBlacklistsBothTokens(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := newService(mockDB)

	mockDB.On("GetUsuarioByEmail", "maria@example.com").Return(storedUser(t), nil)
	mockDB.On("TouchLastLogin", int64(7)).Return(nil)
	mockDB.On("IsBlacklisted", mock.Anything).Return(false, nil)
	mockDB.On("Blacklist", mock.Anything).Return(nil)

	access, refresh, err := svc.Login("maria@example.com", "senha-secreta")
	assert.NoError(t, err)

	svc.Logout(access, refresh)
	mockDB.AssertNumberOfCalls(t, "Blacklist", 2)
}

func TestLogoutFailSoft(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := newService(mockDB)

	mockDB.On("GetUsuarioByEmail", "maria@example.com").Return(storedUser(t), nil)
	mockDB.On("TouchLastLogin", int64(7)).Return(nil)
	mockDB.On("IsBlacklisted", mock.Anything).Return(false, sql.ErrConnDone)

	access, _, err := svc.Login("maria@example.com", "senha-secreta")
	assert.NoError(t, err)

	// Garbage tokens, missing tokens and storage errors never surface.
	svc.Logout("not-a-token", "")
	svc.Logout(access, "")
	mockDB.AssertNotCalled(t, "Blacklist", mock.Anything)
}

func TestLogoutRevokesExpiredToken(t *testing.T) {
	mockDB := new(MockUserDB)
	svc := service.NewUserService(mockDB, auth.NewCodec("test-secret"), -1, -1)

	mockDB.On("GetUsuarioByEmail", "maria@example.com").Return(storedUser(t), nil)
	mockDB.On("TouchLastLogin", int64(7)).Return(nil)
	mockDB.On("IsBlacklisted", mock.Anything).Return(false, nil)
	mockDB.On("Blacklist", mock.Anything).Return(nil)

	access, _, err := svc.Login("maria@example.com", "senha-secreta")
	assert.NoError(t, err)

	// Already expired, but its jti still lands on the blacklist.
	svc.Logout(access, "")
	mockDB.AssertNumberOfCalls(t, "Blacklist", 1)
}
