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

// ---------------- EVENTOS ----------------

func (d *DB) GetEvento(id int64) (*models.Evento, error) {
	var evento models.Evento
	err := d.Bun.NewSelect().
		Model(&evento).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &evento, nil
}

func (d *DB) ListEventos() ([]models.Evento, error) {
	eventos := make([]models.Evento, 0)
	err := d.Bun.NewSelect().
		Model(&eventos).
		Order("dt_ini DESC", "id DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return eventos, nil
}

func (d *DB) CreateEvento(evento *models.Evento) error {
	_, err := d.Bun.NewInsert().Model(evento).Exec(context.Background())
	return err
}

func (d *DB) UpdateEvento(evento *models.Evento) error {
	evento.UpdatedAt = time.Now()
	_, err := d.Bun.NewUpdate().
		Model(evento).
		Column("nome_evento", "local", "dt_ini", "dt_fim", "hr_ini", "hr_fim", "updated_at").
		Where("id = ?", evento.ID).
		Exec(context.Background())
	return err
}

// DeleteEvento removes an evento together with its lotes and
// produtos, in one transaction. The postgres schema also carries
// ON DELETE CASCADE, the explicit deletes keep dialects without
// enforced FKs consistent.
func (d *DB) DeleteEvento(id int64) error {
	return d.Bun.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*models.Lote)(nil)).
			Where("id_evento = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().
			Model((*models.Produto)(nil)).
			Where("id_evento = ?", id).
			Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewDelete().
			Model((*models.Evento)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}

// GetEventoInfo returns the evento with its lotes (by num_lote) and
// produtos (by id).
func (d *DB) GetEventoInfo(id int64) (*models.EventoInfo, error) {
	ctx := context.Background()

	evento, err := d.GetEvento(id)
	if err != nil {
		return nil, err
	}

	lotes := make([]*models.Lote, 0)
	err = d.Bun.NewSelect().
		Model(&lotes).
		Where("id_evento = ?", id).
		Order("num_lote ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	produtos := make([]*models.Produto, 0)
	err = d.Bun.NewSelect().
		Model(&produtos).
		Where("id_evento = ?", id).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &models.EventoInfo{
		Evento:   evento,
		Lotes:    lotes,
		Produtos: produtos,
	}, nil
}

// ---------------- LOTES ----------------

func (d *DB) GetLote(id int64) (*models.Lote, error) {
	var lote models.Lote
	err := d.Bun.NewSelect().
		Model(&lote).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &lote, nil
}

// ListLotes returns lotes ordered by id descending, optionally
// filtered by evento.
func (d *DB) ListLotes(idEvento *int64) ([]models.Lote, error) {
	lotes := make([]models.Lote, 0)
	q := d.Bun.NewSelect().
		Model(&lotes).
		Order("id DESC")
	if idEvento != nil {
		q = q.Where("id_evento = ?", *idEvento)
	}
	if err := q.Scan(context.Background()); err != nil {
		return nil, err
	}
	return lotes, nil
}

// LoteNumberExists reports whether the (id_evento, num_lote) pair is
// already taken.
func (d *DB) LoteNumberExists(idEvento int64, numLote int) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Lote)(nil)).
		Where("id_evento = ?", idEvento).
		Where("num_lote = ?", numLote).
		Exists(context.Background())
}

func (d *DB) CreateLote(lote *models.Lote) error {
	_, err := d.Bun.NewInsert().Model(lote).Exec(context.Background())
	return err
}

func (d *DB) UpdateLote(lote *models.Lote) error {
	lote.UpdatedAt = time.Now()
	_, err := d.Bun.NewUpdate().
		Model(lote).
		Column("preco", "num_lote", "total_vagas", "updated_at").
		Where("id = ?", lote.ID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteLote(id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Lote)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

// ---------------- PRODUTOS ----------------

func (d *DB) GetProduto(id int64) (*models.Produto, error) {
	var produto models.Produto
	err := d.Bun.NewSelect().
		Model(&produto).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &produto, nil
}

// ListProdutos returns produtos ordered by id ascending, optionally
// filtered by evento.
func (d *DB) ListProdutos(idEvento *int64) ([]models.Produto, error) {
	produtos := make([]models.Produto, 0)
	q := d.Bun.NewSelect().
		Model(&produtos).
		Order("id ASC")
	if idEvento != nil {
		q = q.Where("id_evento = ?", *idEvento)
	}
	if err := q.Scan(context.Background()); err != nil {
		return nil, err
	}
	return produtos, nil
}

func (d *DB) CreateProduto(produto *models.Produto) error {
	_, err := d.Bun.NewInsert().Model(produto).Exec(context.Background())
	return err
}

func (d *DB) UpdateProduto(produto *models.Produto) error {
	produto.UpdatedAt = time.Now()
	_, err := d.Bun.NewUpdate().
		Model(produto).
		Column("preco", "descricao", "img", "updated_at").
		Where("id = ?", produto.ID).
		Exec(context.Background())
	return err
}

func (d *DB) DeleteProduto(id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Produto)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}
