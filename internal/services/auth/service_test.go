package auth_test

import (
	"errors"
	"testing"
	"time"

	authsvc "github.com/ivankudzin/trustengine/internal/services/auth"
)

func TestAuthenticateModeratorToken(t *testing.T) {
	manager := authsvc.NewJWTManager("test-secret", "trustengine", 15*time.Minute)
	svc := authsvc.NewService(manager)

	token, _, err := manager.GenerateAccessToken("mod-42", "moderator")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	identity, err := svc.Authenticate(token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if identity.Subject != "mod-42" || identity.Role != authsvc.RoleModerator {
		t.Fatalf("unexpected identity: %+v", identity)
	}
	if err := authsvc.Authorize(identity, authsvc.RoleModerator, authsvc.RoleAdmin); err != nil {
		t.Fatalf("moderator should be authorized: %v", err)
	}
	if err := authsvc.Authorize(identity, authsvc.RoleAdmin); !errors.Is(err, authsvc.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthenticateRejectsForeignTokens(t *testing.T) {
	svc := authsvc.NewService(authsvc.NewJWTManager("test-secret", "trustengine", time.Minute))

	other := authsvc.NewJWTManager("other-secret", "trustengine", time.Minute)
	token, _, _ := other.GenerateAccessToken("mod-1", "ADMIN")
	if _, err := svc.Authenticate(token); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("token signed with another secret must be rejected, got %v", err)
	}

	wrongIssuer := authsvc.NewJWTManager("test-secret", "someone-else", time.Minute)
	token, _, _ = wrongIssuer.GenerateAccessToken("mod-1", "ADMIN")
	if _, err := svc.Authenticate(token); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("token with wrong issuer must be rejected, got %v", err)
	}

	if _, err := svc.Authenticate(""); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("empty token must be rejected")
	}
}
