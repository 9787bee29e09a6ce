package db

import (
	"context"
	"time"

	"eventos-api/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ---------------- PESSOA / USUARIO ----------------

func (d *DB) EmailExists(email string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Usuario)(nil)).
		Where("email = ?", email).
		Exists(context.Background())
}

func (d *DB) CPFExists(cpf string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Pessoa)(nil)).
		Where("cpf = ?", cpf).
		Exists(context.Background())
}

// CreatePessoaWithUsuario inserts both rows in one transaction. A
// failed usuario insert (a concurrent register winning the email
// constraint, for instance) rolls the pessoa back instead of leaving
// an orphan holding the cpf.
func (d *DB) CreatePessoaWithUsuario(pessoa *models.Pessoa, usuario *models.Usuario) error {
	return d.Bun.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(pessoa).Exec(ctx); err != nil {
			return err
		}
		usuario.IDPessoa = pessoa.ID
		_, err := tx.NewInsert().Model(usuario).Exec(ctx)
		return err
	})
}

func (d *DB) GetUsuarioByEmail(email string) (*models.Usuario, error) {
	var usuario models.Usuario
	err := d.Bun.NewSelect().
		Model(&usuario).
		Relation("Pessoa").
		Where("usuario.email = ?", email).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &usuario, nil
}

func (d *DB) GetUsuarioByID(id int64) (*models.Usuario, error) {
	var usuario models.Usuario
	err := d.Bun.NewSelect().
		Model(&usuario).
		Relation("Pessoa").
		Where("usuario.id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &usuario, nil
}

// GetUsuarioByCPF resolves the login-by-CPF path: Pessoa by cpf,
// then its Usuario.
func (d *DB) GetUsuarioByCPF(cpf string) (*models.Usuario, error) {
	var pessoa models.Pessoa
	err := d.Bun.NewSelect().
		Model(&pessoa).
		Where("cpf = ?", cpf).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}

	var usuario models.Usuario
	err = d.Bun.NewSelect().
		Model(&usuario).
		Relation("Pessoa").
		Where("usuario.id_pessoa = ?", pessoa.ID).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &usuario, nil
}

func (d *DB) TouchLastLogin(id int64) error {
	now := time.Now()
	_, err := d.Bun.NewUpdate().
		Model((*models.Usuario)(nil)).
		Set("last_login_at = ?", now).
		Set("updated_at = ?", now).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// ---------------- BLACKLIST ----------------

func (d *DB) IsBlacklisted(jti string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.TokenBlacklist)(nil)).
		Where("jti = ?", jti).
		Exists(context.Background())
}

func (d *DB) Blacklist(jti string) error {
	entry := models.TokenBlacklist{JTI: jti}
	_, err := d.Bun.NewInsert().Model(&entry).Exec(context.Background())
	return err
}
