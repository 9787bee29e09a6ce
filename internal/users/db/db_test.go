package db_test

import (
	"context"
	"database/sql"
	"testing"

	"eventos-api/internal/models"
	"eventos-api/internal/users/db"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	for _, model := range []interface{}{
		(*models.Pessoa)(nil),
		(*models.Usuario)(nil),
		(*models.TokenBlacklist)(nil),
	} {
		if _, err := bunDB.NewCreateTable().Model(model).Exec(context.Background()); err != nil {
			t.Fatalf("Failed to create table for %T: %v", model, err)
		}
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func seedUser(t *testing.T, userDB *db.DB, email, cpf string) (*models.Pessoa, *models.Usuario) {
	nascimento, err := models.ParseDate("1990-05-20")
	if err != nil {
		t.Fatalf("bad date: %v", err)
	}

	pessoa := &models.Pessoa{Nome: "Maria Silva", DataNascimento: nascimento}
	if cpf != "" {
		pessoa.CPF = &cpf
	}
	usuario := &models.Usuario{
		Email:     email,
		SenhaHash: "$2a$12$fakehashfortests",
		IsActive:  true,
	}
	if err := userDB.CreatePessoaWithUsuario(pessoa, usuario); err != nil {
		t.Fatalf("Failed to create pessoa+usuario: %v", err)
	}
	return pessoa, usuario
}

func TestEmailAndCPFExists(t *testing.T) {
	userDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedUser(t, userDB, "maria@example.com", "12345678901")

	exists, err := userDB.EmailExists("maria@example.com")
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = userDB.EmailExists("outra@example.com")
	assert.NoError(t, err)
	assert.False(t, exists)

	exists, err = userDB.CPFExists("12345678901")
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = userDB.CPFExists("00000000000")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestCreatePessoaWithUsuarioSetsLink(t *testing.T) {
	userDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	pessoa, usuario := seedUser(t, userDB, "maria@example.com", "")
	assert.NotZero(t, pessoa.ID)
	assert.Equal(t, pessoa.ID, usuario.IDPessoa)
}

func TestCreatePessoaWithUsuarioRollsBack(t *testing.T) {
	userDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedUser(t, userDB, "maria@example.com", "12345678901")

	// Duplicate email fails the usuario insert; the pessoa insert
	// must roll back with it, releasing the cpf.
	cpf := "98765432100"
	pessoa := &models.Pessoa{Nome: "João Souza", DataNascimento: pessoa2Nascimento(t), CPF: &cpf}
	usuario := &models.Usuario{Email: "maria@example.com", SenhaHash: "x"}
	assert.Error(t, userDB.CreatePessoaWithUsuario(pessoa, usuario))

	exists, err := userDB.CPFExists("98765432100")
	assert.NoError(t, err)
	assert.False(t, exists)

	// A retry with a free email can still claim that cpf.
	pessoa = &models.Pessoa{Nome: "João Souza", DataNascimento: pessoa2Nascimento(t), CPF: &cpf}
	usuario = &models.Usuario{Email: "joao@example.com", SenhaHash: "x"}
	assert.NoError(t, userDB.CreatePessoaWithUsuario(pessoa, usuario))
}

func pessoa2Nascimento(t *testing.T) models.Date {
	d, err := models.ParseDate("1985-02-11")
	if err != nil {
		t.Fatalf("bad date: %v", err)
	}
	return d
}

func TestGetUsuarioByEmailLoadsPessoa(t *testing.T) {
	userDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	pessoa, _ := seedUser(t, userDB, "maria@example.com", "12345678901")

	usuario, err := userDB.GetUsuarioByEmail("maria@example.com")
	assert.NoError(t, err)
	assert.Equal(t, "maria@example.com", usuario.Email)
	if assert.NotNil(t, usuario.Pessoa) {
		assert.Equal(t, pessoa.ID, usuario.Pessoa.ID)
		assert.Equal(t, "Maria Silva", usuario.Pessoa.Nome)
	}

	_, err = userDB.GetUsuarioByEmail("ninguem@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGetUsuarioByCPF(t *testing.T) {
	userDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seedUser(t, userDB, "maria@example.com", "12345678901")

	usuario, err := userDB.GetUsuarioByCPF("12345678901")
	assert.NoError(t, err)
	assert.Equal(t, "maria@example.com", usuario.Email)

	_, err = userDB.GetUsuarioByCPF("99999999999")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestGetUsuarioByID(t *testing.T) {
	userDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	_, created := seedUser(t, userDB, "maria@example.com", "")

	usuario, err := userDB.GetUsuarioByID(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, created.Email, usuario.Email)
	assert.NotNil(t, usuario.Pessoa)
	// A pessoa without cpf stays NULL.
	assert.Nil(t, usuario.Pessoa.CPF)
}

func TestTouchLastLogin(t *testing.T) {
	userDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	_, created := seedUser(t, userDB, "maria@example.com", "")
	assert.Nil(t, created.LastLoginAt)

	assert.NoError(t, userDB.TouchLastLogin(created.ID))

	usuario, err := userDB.GetUsuarioByID(created.ID)
	assert.NoError(t, err)
	assert.NotNil(t, usuario.LastLoginAt)
}

func TestBlacklist(t *testing.T) {
	userDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	listed, err := userDB.IsBlacklisted("some-jti")
	assert.NoError(t, err)
	assert.False(t, listed)

	assert.NoError(t, userDB.Blacklist("some-jti"))

	listed, err = userDB.IsBlacklisted("some-jti")
	assert.NoError(t, err)
	assert.True(t, listed)

	// The jti column is unique.
	assert.Error(t, userDB.Blacklist("some-jti"))
}
