package service

import (
	"database/sql"
	"errors"
	"fmt"

	"eventos-api/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrEventoNotFound  = errors.New("evento não encontrado")
	ErrLoteNotFound    = errors.New("lote não encontrado")
	ErrProdutoNotFound = errors.New("produto não encontrado")
	ErrNumLoteTaken    = errors.New("num_lote já existe para este evento")
	ErrInvalidPeriod   = errors.New("dt_fim não pode ser menor que dt_ini")
)

// EventDBLayer is the persistence surface the service needs. The
// concrete implementation lives in internal/events/db.
type EventDBLayer interface {
	GetEvento(id int64) (*models.Evento, error)
	ListEventos() ([]models.Evento, error)
	CreateEvento(evento *models.Evento) error
	UpdateEvento(evento *models.Evento) error
	DeleteEvento(id int64) error
	GetEventoInfo(id int64) (*models.EventoInfo, error)

	GetLote(id int64) (*models.Lote, error)
	ListLotes(idEvento *int64) ([]models.Lote, error)
	LoteNumberExists(idEvento int64, numLote int) (bool, error)
	CreateLote(lote *models.Lote) error
	UpdateLote(lote *models.Lote) error
	DeleteLote(id int64) error

	GetProduto(id int64) (*models.Produto, error)
	ListProdutos(idEvento *int64) ([]models.Produto, error)
	CreateProduto(produto *models.Produto) error
	UpdateProduto(produto *models.Produto) error
	DeleteProduto(id int64) error
}

type EventService struct {
	DB EventDBLayer
}

func NewEventService(db EventDBLayer) *EventService {
	return &EventService{DB: db}
}

// EventoUpdate carries the fields a PUT may change. Nil means "keep
// the stored value".
type EventoUpdate struct {
	NomeEvento *string
	Local      *string
	DtIni      *models.Date
	DtFim      *models.Date
	HrIni      *models.TimeOfDay
	HrFim      *models.TimeOfDay
}

type LoteUpdate struct {
	Preco      *decimal.Decimal
	NumLote    *int
	TotalVagas *int
}

type ProdutoUpdate struct {
	Preco     *decimal.Decimal
	Descricao *string
	Img       *string
}

// ---------------- EVENTOS ----------------

func (s *EventService) CreateEvento(evento *models.Evento) error {
	if evento.DtFim.Before(evento.DtIni.Time) {
		return ErrInvalidPeriod
	}
	if err := s.DB.CreateEvento(evento); err != nil {
		return fmt.Errorf("failed to create evento: %w", err)
	}
	return nil
}

func (s *EventService) GetEvento(id int64) (*models.Evento, error) {
	evento, err := s.DB.GetEvento(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventoNotFound
		}
		return nil, err
	}
	return evento, nil
}

func (s *EventService) ListEventos() ([]models.Evento, error) {
	return s.DB.ListEventos()
}

func (s *EventService) UpdateEvento(id int64, upd EventoUpdate) (*models.Evento, error) {
	evento, err := s.GetEvento(id)
	if err != nil {
		return nil, err
	}

	if upd.NomeEvento != nil {
		evento.NomeEvento = *upd.NomeEvento
	}
	if upd.Local != nil {
		evento.Local = *upd.Local
	}
	if upd.DtIni != nil {
		evento.DtIni = *upd.DtIni
	}
	if upd.DtFim != nil {
		evento.DtFim = *upd.DtFim
	}
	if upd.HrIni != nil {
		evento.HrIni = *upd.HrIni
	}
	if upd.HrFim != nil {
		evento.HrFim = *upd.HrFim
	}

	// The invariant is checked against the merged record, so a PUT
	// changing only dt_ini cannot slip past it.
	if evento.DtFim.Before(evento.DtIni.Time) {
		return nil, ErrInvalidPeriod
	}

	if err := s.DB.UpdateEvento(evento); err != nil {
		return nil, fmt.Errorf("failed to update evento: %w", err)
	}
	return evento, nil
}

func (s *EventService) DeleteEvento(id int64) error {
	if _, err := s.GetEvento(id); err != nil {
		return err
	}
	if err := s.DB.DeleteEvento(id); err != nil {
		return fmt.Errorf("failed to delete evento: %w", err)
	}
	return nil
}

func (s *EventService) GetEventoInfo(id int64) (*models.EventoInfo, error) {
	info, err := s.DB.GetEventoInfo(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventoNotFound
		}
		return nil, err
	}
	return info, nil
}

// ---------------- LOTES ----------------

func (s *EventService) CreateLote(lote *models.Lote) error {
	if _, err := s.GetEvento(lote.IDEvento); err != nil {
		return err
	}

	taken, err := s.DB.LoteNumberExists(lote.IDEvento, lote.NumLote)
	if err != nil {
		return err
	}
	if taken {
		return ErrNumLoteTaken
	}

	if err := s.DB.CreateLote(lote); err != nil {
		return fmt.Errorf("failed to create lote: %w", err)
	}
	return nil
}

func (s *EventService) GetLote(id int64) (*models.Lote, error) {
	lote, err := s.DB.GetLote(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLoteNotFound
		}
		return nil, err
	}
	return lote, nil
}

func (s *EventService) ListLotes(idEvento *int64) ([]models.Lote, error) {
	return s.DB.ListLotes(idEvento)
}

func (s *EventService) UpdateLote(id int64, upd LoteUpdate) (*models.Lote, error) {
	lote, err := s.GetLote(id)
	if err != nil {
		return nil, err
	}

	if upd.NumLote != nil && *upd.NumLote != lote.NumLote {
		taken, err := s.DB.LoteNumberExists(lote.IDEvento, *upd.NumLote)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrNumLoteTaken
		}
		lote.NumLote = *upd.NumLote
	}
	if upd.Preco != nil {
		lote.Preco = *upd.Preco
	}
	if upd.TotalVagas != nil {
		lote.TotalVagas = *upd.TotalVagas
	}

	if err := s.DB.UpdateLote(lote); err != nil {
		return nil, fmt.Errorf("failed to update lote: %w", err)
	}
	return lote, nil
}

func (s *EventService) DeleteLote(id int64) error {
	if _, err := s.GetLote(id); err != nil {
		return err
	}
	if err := s.DB.DeleteLote(id); err != nil {
		return fmt.Errorf("failed to delete lote: %w", err)
	}
	return nil
}

// ---------------- PRODUTOS ----------------

func (s *EventService) CreateProduto(produto *models.Produto) error {
	if _, err := s.GetEvento(produto.IDEvento); err != nil {
		return err
	}
	if err := s.DB.CreateProduto(produto); err != nil {
		return fmt.Errorf("failed to create produto: %w", err)
	}
	return nil
}

func (s *EventService) GetProduto(id int64) (*models.Produto, error) {
	produto, err := s.DB.GetProduto(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProdutoNotFound
		}
		return nil, err
	}
	return produto, nil
}

func (s *EventService) ListProdutos(idEvento *int64) ([]models.Produto, error) {
	return s.DB.ListProdutos(idEvento)
}

func (s *EventService) UpdateProduto(id int64, upd ProdutoUpdate) (*models.Produto, error) {
	produto, err := s.GetProduto(id)
	if err != nil {
		return nil, err
	}

	if upd.Preco != nil {
		produto.Preco = *upd.Preco
	}
	if upd.Descricao != nil {
		produto.Descricao = *upd.Descricao
	}
	if upd.Img != nil {
		produto.Img = upd.Img
	}

	if err := s.DB.UpdateProduto(produto); err != nil {
		return nil, fmt.Errorf("failed to update produto: %w", err)
	}
	return produto, nil
}

func (s *EventService) DeleteProduto(id int64) error {
	if _, err := s.GetProduto(id); err != nil {
		return err
	}
	if err := s.DB.DeleteProduto(id); err != nil {
		return fmt.Errorf("failed to delete produto: %w", err)
	}
	return nil
}
