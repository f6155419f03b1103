package auth

import "strings"

type Service struct {
	jwt *JWTManager
}

func NewService(jwtManager *JWTManager) *Service {
	return &Service{jwt: jwtManager}
}

func (s *Service) Authenticate(accessToken string) (Identity, error) {
	if s.jwt == nil {
		return Identity{}, ErrUnauthorized
	}
	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		return Identity{}, ErrUnauthorized
	}
	return Identity{Subject: claims.Subject, Role: claims.Role}, nil
}

// Authorize reports ErrForbidden unless the identity holds one of roles.
func Authorize(identity Identity, roles ...string) error {
	for _, role := range roles {
		if strings.EqualFold(identity.Role, role) {
			return nil
		}
	}
	return ErrForbidden
}
