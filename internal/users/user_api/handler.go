package user_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"eventos-api/internal/config"
	"eventos-api/internal/logger"
	"eventos-api/internal/models"
	"eventos-api/internal/users/service"
	"eventos-api/internal/utils"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// UserService is the slice of the auth service the handlers need.
type UserService interface {
	Register(in service.RegisterInput) (*models.Pessoa, *models.Usuario, error)
	Login(identifier, senha string) (accessToken, refreshToken string, err error)
	Me(accessToken string) (*service.Profile, error)
	Refresh(refreshToken string) (string, error)
	Logout(accessToken, refreshToken string)
}

type Handler struct {
	UserService UserService
	Logger      *logger.Logger

	cookies cookieWriter
}

func NewHandler(svc UserService, cfg config.AuthConfig, log *logger.Logger) *Handler {
	return &Handler{
		UserService: svc,
		Logger:      log,
		cookies:     newCookieWriter(cfg),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Get("/me", h.Me)
	r.Post("/refresh", h.Refresh)
	r.Post("/logout", h.Logout)
}

type RegisterRequest struct {
	Pessoa  PessoaPayload  `json:"pessoa"`
	Usuario UsuarioPayload `json:"usuario"`
}

type PessoaPayload struct {
	Nome           string      `json:"nome"`
	CPF            string      `json:"cpf"`
	DataNascimento models.Date `json:"data_nascimento"`
	Adm            bool        `json:"adm"`
}

type UsuarioPayload struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

func (r RegisterRequest) Validate() error {
	if err := validation.ValidateStruct(&r.Pessoa,
		validation.Field(&r.Pessoa.Nome, validation.Required, validation.Length(2, 160)),
		validation.Field(&r.Pessoa.CPF, validation.By(cpfFormat)),
	); err != nil {
		return err
	}
	if r.Pessoa.DataNascimento.IsZero() {
		return errors.New("data_nascimento: cannot be blank")
	}
	return validation.ValidateStruct(&r.Usuario,
		validation.Field(&r.Usuario.Email, validation.Required, is.Email),
		validation.Field(&r.Usuario.Senha, validation.Required, validation.Length(6, 72)),
	)
}

// cpfFormat checks the CPF against its bare digits, so masked input
// like "529.982.247-25" passes and is normalized downstream. An empty
// CPF stays optional.
func cpfFormat(value interface{}) error {
	raw, ok := value.(string)
	if !ok {
		return errors.New("cpf inválido")
	}
	digits := 0
	for _, ch := range raw {
		switch {
		case ch >= '0' && ch <= '9':
			digits++
		case ch == '.' || ch == '-' || ch == ' ':
		default:
			return errors.New("cpf inválido")
		}
	}
	if digits != 0 && digits != 11 {
		return errors.New("the length must be exactly 11")
	}
	return nil
}

type RegisterResponse struct {
	Pessoa  *models.Pessoa  `json:"pessoa"`
	Usuario *models.Usuario `json:"usuario"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "JSON inválido: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	pessoa, usuario, err := h.UserService.Register(service.RegisterInput{
		Nome:           req.Pessoa.Nome,
		CPF:            req.Pessoa.CPF,
		DataNascimento: req.Pessoa.DataNascimento,
		Adm:            req.Pessoa.Adm,
		Email:          req.Usuario.Email,
		Senha:          req.Usuario.Senha,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.Logger.Info("AUTH", fmt.Sprintf("Register: created usuario %d (pessoa %d)", usuario.ID, pessoa.ID))
	utils.JSON(w, http.StatusCreated, RegisterResponse{Pessoa: pessoa, Usuario: usuario})
}

type LoginRequest struct {
	Usuario string `json:"usuario"`
	Senha   string `json:"senha"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Usuario, validation.Required),
		validation.Field(&r.Senha, validation.Required),
	)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "JSON inválido: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, refreshToken, err := h.UserService.Login(req.Usuario, req.Senha)
	if err != nil {
		h.Logger.LogSecurity("LOGIN_FAILED", fmt.Sprintf("identifier=%s", req.Usuario))
		h.writeError(w, err)
		return
	}

	h.cookies.setAuth(w, accessToken, refreshToken)
	utils.Message(w, http.StatusOK, "Login com sucesso")
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	token := cookieValue(r, accessCookie)
	if token == "" {
		utils.Error(w, http.StatusUnauthorized, "Token de autenticação ausente")
		return
	}

	profile, err := h.UserService.Me(token)
	if err != nil {
		h.writeError(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, profile)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := cookieValue(r, refreshCookie)
	if token == "" {
		utils.Error(w, http.StatusBadRequest, "refreshToken não fornecido")
		return
	}

	accessToken, err := h.UserService.Refresh(token)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// Only the access and marker cookies are re-set, the refresh
	// cookie keeps its original expiry.
	h.cookies.setAuth(w, accessToken, "")
	utils.Message(w, http.StatusOK, "Token renovado")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.UserService.Logout(
		cookieValue(r, accessCookie),
		cookieValue(r, refreshCookie),
	)
	h.cookies.clearAuth(w)
	utils.Message(w, http.StatusOK, "Logout realizado com sucesso")
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrCPFTaken):
		utils.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		utils.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		utils.Error(w, http.StatusNotFound, err.Error())
	default:
		h.Logger.Error("AUTH", fmt.Sprintf("unexpected error: %v", err))
		utils.Error(w, http.StatusInternalServerError, "erro interno")
	}
}
