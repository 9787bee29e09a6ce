package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Pessoa struct {
	bun.BaseModel `bun:"table:tb_pessoa,alias:pessoa"`

	ID             int64     `bun:"id,pk,autoincrement" json:"id"`
	Nome           string    `bun:"nome,notnull" json:"nome"`
	DataNascimento Date      `bun:"data_nascimento,notnull,type:date" json:"data_nascimento"`
	CPF            *string   `bun:"cpf,unique,nullzero" json:"cpf"`
	Adm            bool      `bun:"adm,notnull,default:false" json:"adm"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Usuario *Usuario `bun:"rel:has-one,join:id=id_pessoa" json:"-"`
}

type Usuario struct {
	bun.BaseModel `bun:"table:tb_usuario,alias:usuario"`

	ID          int64      `bun:"id,pk,autoincrement" json:"id"`
	IDPessoa    int64      `bun:"id_pessoa,notnull,unique" json:"id_pessoa"`
	Email       string     `bun:"email,unique,notnull" json:"email"`
	SenhaHash   string     `bun:"senha_hash,notnull" json:"-"`
	IsActive    bool       `bun:"is_active,notnull,default:true" json:"is_active"`
	LastLoginAt *time.Time `bun:"last_login_at,nullzero" json:"last_login_at"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Pessoa *Pessoa `bun:"rel:belongs-to,join:id_pessoa=id" json:"-"`
}

// TokenBlacklist stores revoked token ids. A jti listed here is
// rejected even while its embedded expiry is still valid.
type TokenBlacklist struct {
	bun.BaseModel `bun:"table:tb_blacklist,alias:blacklist"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	JTI          string    `bun:"jti,unique,notnull" json:"jti"`
	DataInsercao time.Time `bun:"data_insercao,nullzero,notnull,default:current_timestamp" json:"data_insercao"`
}
