package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

type Evento struct {
	bun.BaseModel `bun:"table:tb_eventos,alias:evento"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	NomeEvento string    `bun:"nome_evento,notnull" json:"nome_evento"`
	Local      string    `bun:"local,notnull" json:"local"`
	DtIni      Date      `bun:"dt_ini,notnull,type:date" json:"dt_ini"`
	DtFim      Date      `bun:"dt_fim,notnull,type:date" json:"dt_fim"`
	HrIni      TimeOfDay `bun:"hr_ini,notnull,type:time" json:"hr_ini"`
	HrFim      TimeOfDay `bun:"hr_fim,notnull,type:time" json:"hr_fim"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Lotes    []*Lote    `bun:"rel:has-many,join:id=id_evento" json:"-"`
	Produtos []*Produto `bun:"rel:has-many,join:id=id_evento" json:"-"`
}

type Lote struct {
	bun.BaseModel `bun:"table:tb_lote,alias:lote"`

	ID         int64           `bun:"id,pk,autoincrement" json:"id"`
	IDEvento   int64           `bun:"id_evento,notnull" json:"id_evento"`
	Preco      decimal.Decimal `bun:"preco,notnull,type:numeric" json:"preco"`
	NumLote    int             `bun:"num_lote,notnull" json:"num_lote"`
	TotalVagas int             `bun:"total_vagas,notnull" json:"total_vagas"`
	CreatedAt  time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Evento *Evento `bun:"rel:belongs-to,join:id_evento=id" json:"-"`
}

type Produto struct {
	bun.BaseModel `bun:"table:tb_produtos,alias:produto"`

	ID        int64           `bun:"id,pk,autoincrement" json:"id"`
	IDEvento  int64           `bun:"id_evento,notnull" json:"id_evento"`
	Preco     decimal.Decimal `bun:"preco,notnull,type:numeric" json:"preco"`
	Descricao string          `bun:"descricao,notnull" json:"descricao"`
	Img       *string         `bun:"img,nullzero" json:"img"`
	CreatedAt time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Evento *Evento `bun:"rel:belongs-to,join:id_evento=id" json:"-"`
}

// EventoInfo is the read-only aggregate returned by /eventos/{id}/info.
type EventoInfo struct {
	Evento   *Evento    `json:"evento"`
	Lotes    []*Lote    `json:"lotes"`
	Produtos []*Produto `json:"produtos"`
}
