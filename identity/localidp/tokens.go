package localidp

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shellmonger/mynotes/identity"
)

const (
	idTokenExpiry      = time.Hour
	accessTokenExpiry  = time.Hour
	refreshTokenExpiry = 30 * 24 * time.Hour
)

// tokenMinter signs the id/access/refresh token triple for a session.
type tokenMinter struct {
	secret  []byte
	issuer  string
	nowTime func() time.Time
}

func (m *tokenMinter) mint(user *userRecord) (map[identity.TokenKind]string, error) {
	idToken, err := m.sign(m.idClaims(user))
	if err != nil {
		return nil, errors.Wrap(err, "sign id token")
	}
	accessToken, err := m.sign(m.accessClaims(user))
	if err != nil {
		return nil, errors.Wrap(err, "sign access token")
	}
	refreshToken, err := m.sign(m.refreshClaims(user))
	if err != nil {
		return nil, errors.Wrap(err, "sign refresh token")
	}

	return map[identity.TokenKind]string{
		identity.IDToken:      idToken,
		identity.AccessToken:  accessToken,
		identity.RefreshToken: refreshToken,
	}, nil
}

func (m *tokenMinter) idClaims(user *userRecord) jwtlib.MapClaims {
	now := m.nowTime()
	claims := jwtlib.MapClaims{
		"iss":       m.issuer,
		"sub":       user.id,
		"username":  user.username,
		"token_use": "id",
		"iat":       now.Unix(),
		"exp":       now.Add(idTokenExpiry).Unix(),
		"jti":       uuid.New().String(),
	}
	if name := user.attributes["name"]; name != "" {
		claims["name"] = name
	}
	if email := user.attributes["email"]; email != "" {
		claims["email"] = email
	}
	return claims
}

func (m *tokenMinter) accessClaims(user *userRecord) jwtlib.MapClaims {
	now := m.nowTime()
	return jwtlib.MapClaims{
		"iss":       m.issuer,
		"sub":       user.id,
		"username":  user.username,
		"token_use": "access",
		"iat":       now.Unix(),
		"exp":       now.Add(accessTokenExpiry).Unix(),
		"jti":       uuid.New().String(),
	}
}

func (m *tokenMinter) refreshClaims(user *userRecord) jwtlib.MapClaims {
	now := m.nowTime()
	return jwtlib.MapClaims{
		"iss":       m.issuer,
		"sub":       user.id,
		"token_use": "refresh",
		"iat":       now.Unix(),
		"exp":       now.Add(refreshTokenExpiry).Unix(),
		"jti":       uuid.New().String(),
	}
}

func (m *tokenMinter) sign(claims jwtlib.MapClaims) (string, error) {
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func newUserID() string {
	return uuid.New().String()
}
