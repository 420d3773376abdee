package auth

import (
	"fmt"

	"github.com/caretech-io/telesession/pkg/domain/session"
	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated subject of a notification stream. Only
// transport authentication happens here; role and project permissions
// are the central server's concern.
type Identity struct {
	Class session.IdentityClass
	UUID  string
}

type identityClaims struct {
	IdentityClass string `json:"identity_class"`
	IdentityUUID  string `json:"identity_uuid"`
	jwt.RegisteredClaims
}

type TokenValidator interface {
	Validate(tokenString string) (*Identity, error)
}

type hmacTokenValidator struct {
	secret []byte
}

func NewHMACTokenValidator(secret string) TokenValidator {
	return &hmacTokenValidator{secret: []byte(secret)}
}

func (v *hmacTokenValidator) Validate(tokenString string) (*Identity, error) {
	claims := &identityClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return v.secret, nil
		},
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	class := session.IdentityClass(claims.IdentityClass)
	switch class {
	case session.ClassUser, session.ClassParticipant, session.ClassDevice:
	default:
		return nil, fmt.Errorf("invalid identity class %q", claims.IdentityClass)
	}
	if claims.IdentityUUID == "" {
		return nil, fmt.Errorf("missing identity uuid")
	}

	return &Identity{Class: class, UUID: claims.IdentityUUID}, nil
}
