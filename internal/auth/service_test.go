package auth

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/vora-labs/gogo-admin/pkg/auth"
	"github.com/vora-labs/gogo-admin/pkg/auth/session"
	"github.com/vora-labs/gogo-admin/pkg/config"
	"github.com/vora-labs/gogo-admin/pkg/db/models"
	"github.com/vora-labs/gogo-admin/pkg/enums"
	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
	"github.com/vora-labs/gogo-admin/pkg/logger"
	"github.com/vora-labs/gogo-admin/pkg/security"
)

var testJWT = config.JWTConfig{
	Secret:            "secret",
	Issuer:            "gogo-admin",
	ExpirationMinutes: 30,
}

var fastArgon = config.PasswordConfig{
	ArgonMemoryKB:    1024,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestServiceLoginMintsTokenAndSession(t *testing.T) {
	admin := newAdmin(t, "ops@vora.dev", "correct-horse", enums.AdminRoleAdmin, fastArgon)
	svc, repo, sessions := buildTestService(t, admin)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "  OPS@vora.dev ", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.AdminID != admin.ID || claims.Role != enums.AdminRoleAdmin {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if sessions.tokens[claims.ID] != resp.RefreshToken {
		t.Fatalf("expected refresh token stored under jti")
	}
	if repo.lastLogin.IsZero() {
		t.Fatalf("expected last login recorded")
	}
	if resp.Admin == nil || resp.Admin.Email != admin.Email {
		t.Fatalf("expected admin in response")
	}
	if repo.rehashed != "" {
		t.Fatalf("did not expect rehash for current parameters")
	}
}

func TestServiceLoginRejectsBadCredentials(t *testing.T) {
	admin := newAdmin(t, "ops@vora.dev", "correct-horse", enums.AdminRoleAdmin, fastArgon)
	svc, _, _ := buildTestService(t, admin)

	cases := map[string]LoginRequest{
		"wrong password": {Email: "ops@vora.dev", Password: "nope"},
		"unknown email":  {Email: "ghost@vora.dev", Password: "correct-horse"},
		"blank email":    {Email: " ", Password: "correct-horse"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), req)
			if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
				t.Fatalf("expected unauthorized, got %v", err)
			}
		})
	}
}

func TestServiceLoginRejectsInactiveAdmin(t *testing.T) {
	admin := newAdmin(t, "ops@vora.dev", "correct-horse", enums.AdminRoleAdmin, fastArgon)
	admin.IsActive = false
	svc, _, _ := buildTestService(t, admin)

	_, err := svc.Login(context.Background(), LoginRequest{Email: admin.Email, Password: "correct-horse"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestServiceLoginUpgradesWeakHash(t *testing.T) {
	weak := fastArgon
	weak.ArgonMemoryKB = 512
	admin := newAdmin(t, "ops@vora.dev", "correct-horse", enums.AdminRoleAdmin, weak)
	svc, repo, _ := buildTestService(t, admin)

	if _, err := svc.Login(context.Background(), LoginRequest{Email: admin.Email, Password: "correct-horse"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if repo.rehashed == "" {
		t.Fatalf("expected password to be rehashed")
	}
	ok, err := security.VerifyPassword("correct-horse", repo.rehashed)
	if err != nil || !ok {
		t.Fatalf("rehashed password does not verify: %v", err)
	}
}

func TestServiceRefreshRotatesSession(t *testing.T) {
	admin := newAdmin(t, "ops@vora.dev", "correct-horse", enums.AdminRoleViewer, fastArgon)
	svc, repo, sessions := buildTestService(t, admin)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: admin.Email, Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Role changes take effect on refresh.
	repo.admin.Role = enums.AdminRoleAdmin

	pair, err := svc.Refresh(ctx, login.AccessToken, login.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := pkgAuth.ParseAccessToken(testJWT, pair.AccessToken)
	if err != nil {
		t.Fatalf("parse refreshed token: %v", err)
	}
	if claims.Role != enums.AdminRoleAdmin {
		t.Fatalf("expected refreshed role admin, got %s", claims.Role)
	}
	if len(sessions.tokens) != 1 || sessions.tokens[claims.ID] != pair.RefreshToken {
		t.Fatalf("expected only the rotated session to remain, got %v", sessions.tokens)
	}

	if _, err := svc.Refresh(ctx, login.AccessToken, login.RefreshToken); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected reused refresh token to be rejected, got %v", err)
	}
}

func TestServiceRefreshRejectsDisabledAdmin(t *testing.T) {
	admin := newAdmin(t, "ops@vora.dev", "correct-horse", enums.AdminRoleAdmin, fastArgon)
	svc, repo, sessions := buildTestService(t, admin)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: admin.Email, Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	repo.admin.IsActive = false

	if _, err := svc.Refresh(ctx, login.AccessToken, login.RefreshToken); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(sessions.tokens) != 0 {
		t.Fatalf("expected rotated session revoked, got %v", sessions.tokens)
	}
}

func TestServiceLogoutRevokesSession(t *testing.T) {
	admin := newAdmin(t, "ops@vora.dev", "correct-horse", enums.AdminRoleAdmin, fastArgon)
	svc, _, sessions := buildTestService(t, admin)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Email: admin.Email, Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(ctx, login.AccessToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.tokens) != 0 {
		t.Fatalf("expected session revoked")
	}
	if err := svc.Logout(ctx, "garbage"); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for bad token, got %v", err)
	}
}

func buildTestService(t *testing.T, admin *models.Admin) (Service, *stubAdminRepo, *stubSessionManager) {
	t.Helper()
	repo := &stubAdminRepo{admin: admin}
	sessions := &stubSessionManager{tokens: map[string]string{}, owners: map[string]uuid.UUID{}}
	svc, err := NewService(ServiceParams{
		AdminRepo:      repo,
		SessionManager: sessions,
		JWTConfig:      testJWT,
		PasswordConfig: fastArgon,
		Logger:         logger.New(logger.Options{ServiceName: "auth-test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, repo, sessions
}

func newAdmin(t *testing.T, email, password string, role enums.AdminRole, cfg config.PasswordConfig) *models.Admin {
	t.Helper()
	hash, err := security.HashPassword(password, cfg)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.Admin{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Ops",
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
}

type stubAdminRepo struct {
	admin     *models.Admin
	lastLogin time.Time
	rehashed  string
}

func (s *stubAdminRepo) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	if s.admin == nil || s.admin.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *s.admin
	return &copy, nil
}

func (s *stubAdminRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Admin, error) {
	if s.admin == nil || s.admin.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copy := *s.admin
	return &copy, nil
}

func (s *stubAdminRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID, at time.Time) error {
	s.lastLogin = at
	return nil
}

func (s *stubAdminRepo) UpdatePasswordHash(_ context.Context, _ uuid.UUID, hash string) error {
	s.rehashed = hash
	s.admin.PasswordHash = hash
	return nil
}

type stubSessionManager struct {
	tokens map[string]string
	owners map[string]uuid.UUID
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string, adminID uuid.UUID) (string, error) {
	token := accessID + "-refresh"
	s.tokens[accessID] = token
	s.owners[accessID] = adminID
	return token, nil
}

func (s *stubSessionManager) Rotate(_ context.Context, oldAccessID, provided string) (string, string, uuid.UUID, error) {
	stored, ok := s.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", uuid.Nil, session.ErrInvalidRefreshToken
	}
	owner := s.owners[oldAccessID]
	delete(s.tokens, oldAccessID)
	delete(s.owners, oldAccessID)
	newID := session.NewAccessID()
	token, _ := s.Generate(context.Background(), newID, owner)
	return newID, token, owner, nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	if accessID == "" {
		return errors.New("access id is required")
	}
	delete(s.tokens, accessID)
	delete(s.owners, accessID)
	return nil
}
