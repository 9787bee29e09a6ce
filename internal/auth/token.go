package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token tipo claim values. Access tokens authenticate API calls,
// refresh tokens only mint new access tokens.
const (
	TipoAccess  = "access"
	TipoRefresh = "refresh"
)

// ErrInvalidToken covers every negative verification outcome:
// bad signature, malformed token, expired token.
var ErrInvalidToken = errors.New("invalid token")

// Codec signs and verifies the compact HS256 tokens used for the
// access/refresh cookies.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue signs the given claims with a ttl in minutes. A fresh jti is
// added when the caller did not provide one; iat and exp are always
// set by the codec, as integer seconds.
func (c *Codec) Issue(claims jwt.MapClaims, ttlMinutes int) (string, error) {
	now := time.Now().UTC()

	data := jwt.MapClaims{}
	for k, v := range claims {
		data[k] = v
	}
	if _, ok := data["jti"]; !ok {
		data["jti"] = uuid.NewString()
	}
	data["iat"] = now.Unix()
	data["exp"] = now.Add(time.Duration(ttlMinutes) * time.Minute).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, data)
	return token.SignedString(c.secret)
}

// Verify checks the signature and expiry and returns the claims.
func (c *Codec) Verify(tokenString string) (jwt.MapClaims, error) {
	return c.parse(tokenString)
}

// DecodeExpired checks the signature but ignores the exp claim. Used
// on logout to pull the jti out of an already-expired token.
func (c *Codec) DecodeExpired(tokenString string) (jwt.MapClaims, error) {
	return c.parse(tokenString, jwt.WithoutClaimsValidation())
}

func (c *Codec) parse(tokenString string, opts ...jwt.ParserOption) (jwt.MapClaims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// JTI returns the jti claim, or "" when absent.
func JTI(claims jwt.MapClaims) string {
	if jti, ok := claims["jti"].(string); ok {
		return jti
	}
	return ""
}

// Tipo returns the tipo claim, or "" when absent.
func Tipo(claims jwt.MapClaims) string {
	if tipo, ok := claims["tipo"].(string); ok {
		return tipo
	}
	return ""
}

// UserID extracts the numeric id claim. JSON decoding turns numbers
// into float64, so both paths are handled.
func UserID(claims jwt.MapClaims) (int64, bool) {
	switch v := claims["id"].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}
