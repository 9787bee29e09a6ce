package event_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"eventos-api/internal/events/service"
	"eventos-api/internal/logger"
	"eventos-api/internal/models"
	"eventos-api/internal/utils"

	"github.com/go-chi/chi/v5"
)

// EventService is the slice of the service the handlers need. The
// tests plug a mock in here.
type EventService interface {
	CreateEvento(evento *models.Evento) error
	GetEvento(id int64) (*models.Evento, error)
	ListEventos() ([]models.Evento, error)
	UpdateEvento(id int64, upd service.EventoUpdate) (*models.Evento, error)
	DeleteEvento(id int64) error
	GetEventoInfo(id int64) (*models.EventoInfo, error)

	CreateLote(lote *models.Lote) error
	GetLote(id int64) (*models.Lote, error)
	ListLotes(idEvento *int64) ([]models.Lote, error)
	UpdateLote(id int64, upd service.LoteUpdate) (*models.Lote, error)
	DeleteLote(id int64) error

	CreateProduto(produto *models.Produto) error
	GetProduto(id int64) (*models.Produto, error)
	ListProdutos(idEvento *int64) ([]models.Produto, error)
	UpdateProduto(id int64, upd service.ProdutoUpdate) (*models.Produto, error)
	DeleteProduto(id int64) error
}

type Handler struct {
	EventService EventService
	Logger       *logger.Logger
}

func NewHandler(svc EventService, log *logger.Logger) *Handler {
	return &Handler{EventService: svc, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/eventos", func(r chi.Router) {
		r.Post("/", h.CreateEvento)
		r.Get("/", h.ListEventos)
		r.Get("/{id}", h.GetEvento)
		r.Put("/{id}", h.UpdateEvento)
		r.Delete("/{id}", h.DeleteEvento)
		r.Get("/{id}/info", h.GetEventoInfo)
	})
	r.Route("/lotes", func(r chi.Router) {
		r.Post("/", h.CreateLote)
		r.Get("/", h.ListLotes)
		r.Put("/{id}", h.UpdateLote)
		r.Delete("/{id}", h.DeleteLote)
	})
	r.Route("/produtos", func(r chi.Router) {
		r.Post("/", h.CreateProduto)
		r.Get("/", h.ListProdutos)
		r.Put("/{id}", h.UpdateProduto)
		r.Delete("/{id}", h.DeleteProduto)
	})
}

// ---------------- EVENTOS ----------------

func (h *Handler) CreateEvento(w http.ResponseWriter, r *http.Request) {
	var req EventoCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "JSON inválido: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	evento := &models.Evento{
		NomeEvento: req.NomeEvento,
		Local:      req.Local,
		DtIni:      req.DtIni,
		DtFim:      req.DtFim,
		HrIni:      req.HrIni,
		HrFim:      req.HrFim,
	}
	if err := h.EventService.CreateEvento(evento); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvento: %v", err))
		h.writeError(w, err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateEvento: created evento %d", evento.ID))
	utils.JSON(w, http.StatusCreated, evento)
}

func (h *Handler) ListEventos(w http.ResponseWriter, r *http.Request) {
	eventos, err := h.EventService.ListEventos()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEventos: %v", err))
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, eventos)
}

func (h *Handler) GetEvento(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	evento, err := h.EventService.GetEvento(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, evento)
}

func (h *Handler) UpdateEvento(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req EventoUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "JSON inválido: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	evento, err := h.EventService.UpdateEvento(id, service.EventoUpdate{
		NomeEvento: req.NomeEvento,
		Local:      req.Local,
		DtIni:      req.DtIni,
		DtFim:      req.DtFim,
		HrIni:      req.HrIni,
		HrFim:      req.HrFim,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, evento)
}

func (h *Handler) DeleteEvento(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.EventService.DeleteEvento(id); err != nil {
		h.writeError(w, err)
		return
	}
	h.Logger.Info("API", fmt.Sprintf("DeleteEvento: deleted evento %d", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetEventoInfo(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	info, err := h.EventService.GetEventoInfo(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, info)
}

// ---------------- LOTES ----------------

func (h *Handler) CreateLote(w http.ResponseWriter, r *http.Request) {
	var req LoteCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "JSON inválido: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	lote := &models.Lote{
		IDEvento:   req.IDEvento,
		Preco:      req.Preco,
		NumLote:    req.NumLote,
		TotalVagas: req.TotalVagas,
	}
	if err := h.EventService.CreateLote(lote); err != nil {
		h.writeError(w, err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateLote: created lote %d for evento %d", lote.ID, lote.IDEvento))
	utils.JSON(w, http.StatusCreated, lote)
}

func (h *Handler) ListLotes(w http.ResponseWriter, r *http.Request) {
	idEvento, ok := h.queryEventoFilter(w, r)
	if !ok {
		return
	}
	lotes, err := h.EventService.ListLotes(idEvento)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, lotes)
}

func (h *Handler) UpdateLote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req LoteUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "JSON inválido: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	lote, err := h.EventService.UpdateLote(id, service.LoteUpdate{
		Preco:      req.Preco,
		NumLote:    req.NumLote,
		TotalVagas: req.TotalVagas,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, lote)
}

func (h *Handler) DeleteLote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.EventService.DeleteLote(id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------- PRODUTOS ----------------

func (h *Handler) CreateProduto(w http.ResponseWriter, r *http.Request) {
	var req ProdutoCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "JSON inválido: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	produto := &models.Produto{
		IDEvento:  req.IDEvento,
		Preco:     req.Preco,
		Descricao: req.Descricao,
		Img:       req.Img,
	}
	if err := h.EventService.CreateProduto(produto); err != nil {
		h.writeError(w, err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("CreateProduto: created produto %d for evento %d", produto.ID, produto.IDEvento))
	utils.JSON(w, http.StatusCreated, produto)
}

func (h *Handler) ListProdutos(w http.ResponseWriter, r *http.Request) {
	idEvento, ok := h.queryEventoFilter(w, r)
	if !ok {
		return
	}
	produtos, err := h.EventService.ListProdutos(idEvento)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, produtos)
}

func (h *Handler) UpdateProduto(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req ProdutoUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "JSON inválido: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	produto, err := h.EventService.UpdateProduto(id, service.ProdutoUpdate{
		Preco:     req.Preco,
		Descricao: req.Descricao,
		Img:       req.Img,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, produto)
}

func (h *Handler) DeleteProduto(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.EventService.DeleteProduto(id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------- helpers ----------------

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "id inválido")
		return 0, false
	}
	return id, true
}

func (h *Handler) queryEventoFilter(w http.ResponseWriter, r *http.Request) (*int64, bool) {
	raw := r.URL.Query().Get("id_evento")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "id_evento inválido")
		return nil, false
	}
	return &id, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEventoNotFound),
		errors.Is(err, service.ErrLoteNotFound),
		errors.Is(err, service.ErrProdutoNotFound):
		utils.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNumLoteTaken):
		utils.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidPeriod):
		utils.Error(w, http.StatusBadRequest, err.Error())
	default:
		h.Logger.Error("API", fmt.Sprintf("unexpected error: %v", err))
		utils.Error(w, http.StatusInternalServerError, "erro interno")
	}
}
