package event_api

import (
	"errors"

	"eventos-api/internal/models"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"
)

type EventoCreateRequest struct {
	NomeEvento string           `json:"nome_evento"`
	Local      string           `json:"local"`
	DtIni      models.Date      `json:"dt_ini"`
	DtFim      models.Date      `json:"dt_fim"`
	HrIni      models.TimeOfDay `json:"hr_ini"`
	HrFim      models.TimeOfDay `json:"hr_fim"`
}

func (r EventoCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NomeEvento, validation.Required, validation.Length(2, 200)),
		validation.Field(&r.Local, validation.Required, validation.Length(2, 200)),
		validation.Field(&r.DtIni, validation.By(dateRequired)),
		validation.Field(&r.DtFim, validation.By(dateRequired)),
		validation.Field(&r.HrIni, validation.By(timeRequired)),
		validation.Field(&r.HrFim, validation.By(timeRequired)),
	)
}

// ozzo's Required does not see through the Date/TimeOfDay wrappers,
// hence the explicit zero checks.
func dateRequired(value interface{}) error {
	d, ok := value.(models.Date)
	if !ok || d.IsZero() {
		return errors.New("cannot be blank")
	}
	return nil
}

func timeRequired(value interface{}) error {
	t, ok := value.(models.TimeOfDay)
	if !ok || t.IsZero() {
		return errors.New("cannot be blank")
	}
	return nil
}

type EventoUpdateRequest struct {
	NomeEvento *string           `json:"nome_evento"`
	Local      *string           `json:"local"`
	DtIni      *models.Date      `json:"dt_ini"`
	DtFim      *models.Date      `json:"dt_fim"`
	HrIni      *models.TimeOfDay `json:"hr_ini"`
	HrFim      *models.TimeOfDay `json:"hr_fim"`
}

func (r EventoUpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.NomeEvento, validation.NilOrNotEmpty, validation.Length(2, 200)),
		validation.Field(&r.Local, validation.NilOrNotEmpty, validation.Length(2, 200)),
	)
}

type LoteCreateRequest struct {
	IDEvento   int64           `json:"id_evento"`
	Preco      decimal.Decimal `json:"preco"`
	NumLote    int             `json:"num_lote"`
	TotalVagas int             `json:"total_vagas"`
}

func (r LoteCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDEvento, validation.Required),
		validation.Field(&r.Preco, validation.By(precoNonNegative)),
		validation.Field(&r.NumLote, validation.Required, validation.Min(1)),
		validation.Field(&r.TotalVagas, validation.Min(0)),
	)
}

type LoteUpdateRequest struct {
	Preco      *decimal.Decimal `json:"preco"`
	NumLote    *int             `json:"num_lote"`
	TotalVagas *int             `json:"total_vagas"`
}

func (r LoteUpdateRequest) Validate() error {
	if r.Preco != nil && r.Preco.IsNegative() {
		return errors.New("preco: must be no less than 0")
	}
	if r.NumLote != nil && *r.NumLote < 1 {
		return errors.New("num_lote: must be no less than 1")
	}
	if r.TotalVagas != nil && *r.TotalVagas < 0 {
		return errors.New("total_vagas: must be no less than 0")
	}
	return nil
}

type ProdutoCreateRequest struct {
	IDEvento  int64           `json:"id_evento"`
	Preco     decimal.Decimal `json:"preco"`
	Descricao string          `json:"descricao"`
	Img       *string         `json:"img"`
}

func (r ProdutoCreateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDEvento, validation.Required),
		validation.Field(&r.Preco, validation.By(precoNonNegative)),
		validation.Field(&r.Descricao, validation.Required, validation.Length(1, 255)),
	)
}

type ProdutoUpdateRequest struct {
	Preco     *decimal.Decimal `json:"preco"`
	Descricao *string          `json:"descricao"`
	Img       *string          `json:"img"`
}

func (r ProdutoUpdateRequest) Validate() error {
	if r.Preco != nil && r.Preco.IsNegative() {
		return errors.New("preco: must be no less than 0")
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Descricao, validation.NilOrNotEmpty, validation.Length(1, 255)),
	)
}

func precoNonNegative(value interface{}) error {
	preco, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("preco inválido")
	}
	if preco.IsNegative() {
		return errors.New("must be no less than 0")
	}
	return nil
}
