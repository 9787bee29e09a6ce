package service

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"eventos-api/internal/auth"
	"eventos-api/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmailTaken         = errors.New("e-mail já cadastrado")
	ErrCPFTaken           = errors.New("cpf já cadastrado")
	ErrInvalidCredentials = errors.New("usuário ou senha inválidos")
	ErrInvalidToken       = errors.New("token inválido")
	ErrUserNotFound       = errors.New("usuário não encontrado")
)

var emailRe = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// UserDBLayer is the persistence surface of the auth flows. The
// concrete implementation lives in internal/users/db.
type UserDBLayer interface {
	EmailExists(email string) (bool, error)
	CPFExists(cpf string) (bool, error)
	CreatePessoaWithUsuario(pessoa *models.Pessoa, usuario *models.Usuario) error
	GetUsuarioByEmail(email string) (*models.Usuario, error)
	GetUsuarioByCPF(cpf string) (*models.Usuario, error)
	GetUsuarioByID(id int64) (*models.Usuario, error)
	TouchLastLogin(id int64) error

	IsBlacklisted(jti string) (bool, error)
	Blacklist(jti string) error
}

type UserService struct {
	DB    UserDBLayer
	Codec *auth.Codec

	AccessTTL  int
	RefreshTTL int
}

func NewUserService(db UserDBLayer, codec *auth.Codec, accessTTL, refreshTTL int) *UserService {
	return &UserService{
		DB:         db,
		Codec:      codec,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}
}

type RegisterInput struct {
	Nome           string
	CPF            string
	DataNascimento models.Date
	Adm            bool
	Email          string
	Senha          string
}

// Profile is the projection returned by /user/me.
type Profile struct {
	Usuario ProfileUsuario `json:"usuario"`
	Pessoa  ProfilePessoa  `json:"pessoa"`
}

type ProfileUsuario struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type ProfilePessoa struct {
	ID             int64       `json:"id"`
	Nome           string      `json:"nome"`
	CPF            *string     `json:"cpf"`
	DataNascimento models.Date `json:"data_nascimento"`
	Adm            bool        `json:"adm"`
}

// Register creates the Pessoa and its Usuario. The e-mail is
// normalized to lower case and the CPF to bare digits; an empty CPF
// is stored as NULL and never checked for uniqueness.
func (s *UserService) Register(in RegisterInput) (*models.Pessoa, *models.Usuario, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	taken, err := s.DB.EmailExists(email)
	if err != nil {
		return nil, nil, err
	}
	if taken {
		return nil, nil, ErrEmailTaken
	}

	cpf := cpfDigits(in.CPF)
	if cpf != "" {
		taken, err := s.DB.CPFExists(cpf)
		if err != nil {
			return nil, nil, err
		}
		if taken {
			return nil, nil, ErrCPFTaken
		}
	}

	senhaHash, err := auth.HashPassword(in.Senha)
	if err != nil {
		return nil, nil, err
	}

	pessoa := &models.Pessoa{
		Nome:           strings.TrimSpace(in.Nome),
		DataNascimento: in.DataNascimento,
		Adm:            in.Adm,
	}
	if cpf != "" {
		pessoa.CPF = &cpf
	}

	usuario := &models.Usuario{
		Email:     email,
		SenhaHash: senhaHash,
		IsActive:  true,
	}

	// Both inserts share one transaction: a register losing the
	// email race leaves no orphaned pessoa behind.
	if err := s.DB.CreatePessoaWithUsuario(pessoa, usuario); err != nil {
		return nil, nil, fmt.Errorf("failed to create pessoa/usuario: %w", err)
	}

	return pessoa, usuario, nil
}

// Login accepts an e-mail or a CPF as identifier and returns a fresh
// access/refresh token pair. Unknown identifiers and wrong passwords
// are indistinguishable to the caller.
func (s *UserService) Login(identifier, senha string) (accessToken, refreshToken string, err error) {
	ident := strings.TrimSpace(identifier)

	var usuario *models.Usuario
	if isEmail(ident) {
		usuario, err = s.DB.GetUsuarioByEmail(strings.ToLower(ident))
	} else {
		usuario, err = s.DB.GetUsuarioByCPF(cpfDigits(ident))
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", err
	}

	if !auth.VerifyPassword(senha, usuario.SenhaHash) {
		return "", "", ErrInvalidCredentials
	}

	accessToken, err = s.issueToken(usuario, auth.TipoAccess, s.AccessTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = s.issueToken(usuario, auth.TipoRefresh, s.RefreshTTL)
	if err != nil {
		return "", "", err
	}

	// Best effort, a failed timestamp must not fail the login.
	_ = s.DB.TouchLastLogin(usuario.ID)

	return accessToken, refreshToken, nil
}

// Me resolves the access token into the user profile.
func (s *UserService) Me(accessToken string) (*Profile, error) {
	claims, err := s.verifyTyped(accessToken, auth.TipoAccess)
	if err != nil {
		return nil, err
	}

	uid, ok := auth.UserID(claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	usuario, err := s.DB.GetUsuarioByID(uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	profile := &Profile{
		Usuario: ProfileUsuario{ID: usuario.ID, Email: usuario.Email},
	}
	if usuario.Pessoa != nil {
		profile.Pessoa = ProfilePessoa{
			ID:             usuario.Pessoa.ID,
			Nome:           usuario.Pessoa.Nome,
			CPF:            usuario.Pessoa.CPF,
			DataNascimento: usuario.Pessoa.DataNascimento,
			Adm:            usuario.Pessoa.Adm,
		}
	}
	return profile, nil
}

// Refresh issues a new access token. The refresh token itself is not
// rotated.
func (s *UserService) Refresh(refreshToken string) (string, error) {
	claims, err := s.verifyTyped(refreshToken, auth.TipoRefresh)
	if err != nil {
		return "", err
	}

	uid, ok := auth.UserID(claims)
	if !ok {
		return "", ErrInvalidToken
	}

	usuario, err := s.DB.GetUsuarioByID(uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", err
	}

	return s.issueToken(usuario, auth.TipoAccess, s.AccessTTL)
}

// Logout blacklists the jti of whichever tokens are present. Every
// failure is swallowed: logout always succeeds for the caller.
func (s *UserService) Logout(accessToken, refreshToken string) {
	s.revoke(accessToken)
	s.revoke(refreshToken)
}

func (s *UserService) revoke(token string) {
	if token == "" {
		return
	}
	// Expired tokens still carry a revocable jti, so the expiry is
	// deliberately ignored here.
	claims, err := s.Codec.DecodeExpired(token)
	if err != nil {
		return
	}
	jti := auth.JTI(claims)
	if jti == "" {
		return
	}
	listed, err := s.DB.IsBlacklisted(jti)
	if err != nil || listed {
		return
	}
	_ = s.DB.Blacklist(jti)
}

func (s *UserService) issueToken(usuario *models.Usuario, tipo string, ttlMinutes int) (string, error) {
	return s.Codec.Issue(jwt.MapClaims{
		"id":   usuario.ID,
		"sub":  usuario.Email,
		"tipo": tipo,
	}, ttlMinutes)
}

// verifyTyped validates signature, expiry, tipo and the blacklist.
func (s *UserService) verifyTyped(token, tipo string) (jwt.MapClaims, error) {
	claims, err := s.Codec.Verify(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if auth.Tipo(claims) != tipo {
		return nil, ErrInvalidToken
	}

	jti := auth.JTI(claims)
	if jti == "" {
		return nil, ErrInvalidToken
	}
	listed, err := s.DB.IsBlacklisted(jti)
	if err != nil {
		return nil, err
	}
	if listed {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func isEmail(s string) bool {
	return emailRe.MatchString(strings.TrimSpace(s))
}

func cpfDigits(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	return b.String()
}
