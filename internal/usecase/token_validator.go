package usecase

import (
	"harborline/internal/pkg/errs"
	"harborline/internal/pkg/jwt"
	"harborline/internal/usecase/shared"
)

var ErrUnknownRole = errs.New("unknown role in token")

// TokenValidator provides token validation for middleware
type TokenValidator interface {
	ValidateToken(tokenString string) (shared.Actor, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{
		jwtService: jwtService,
	}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (shared.Actor, error) {
	claims, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return shared.Actor{}, err
	}

	switch claims.Role {
	case shared.RoleUser, shared.RoleMerchant, shared.RoleCrew, shared.RoleAdmin:
	default:
		return shared.Actor{}, ErrUnknownRole
	}

	return shared.Actor{UserID: claims.UserID, Role: claims.Role}, nil
}
