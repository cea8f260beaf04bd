package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/prepman/internal/model"
	"github.com/hitoshi/prepman/internal/repository"
)

// mockIdentityVerifier はIdentityVerifierのモック実装。
type mockIdentityVerifier struct {
	verifyFn func(ctx context.Context, idToken string) (*model.IdentityClaims, error)
}

var _ IdentityVerifier = (*mockIdentityVerifier)(nil)

func (m *mockIdentityVerifier) Verify(ctx context.Context, idToken string) (*model.IdentityClaims, error) {
	return m.verifyFn(ctx, idToken)
}

// mockUserRepo はrepository.UserRepositoryのモック実装。
type mockUserRepo struct {
	findByIDFn       func(ctx context.Context, id string) (*model.User, error)
	createIfAbsentFn func(ctx context.Context, user *model.User) (bool, error)
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.findByIDFn(ctx, id)
}

func (m *mockUserRepo) CreateIfAbsent(ctx context.Context, user *model.User) (bool, error) {
	return m.createIfAbsentFn(ctx, user)
}

// mockSessionMetrics はSessionMetricsのモック実装。
type mockSessionMetrics struct {
	signinOutcomes []bool
	signupOutcomes []bool
	resolutions    []string
}

var _ SessionMetrics = (*mockSessionMetrics)(nil)

func (m *mockSessionMetrics) RecordSigninOutcome(success bool) {
	m.signinOutcomes = append(m.signinOutcomes, success)
}

func (m *mockSessionMetrics) RecordSignupOutcome(created bool) {
	m.signupOutcomes = append(m.signupOutcomes, created)
}

func (m *mockSessionMetrics) RecordSessionResolution(outcome string) {
	m.resolutions = append(m.resolutions, outcome)
}

func newServiceForTest(t *testing.T, verifier IdentityVerifier, repo repository.UserRepository, metrics SessionMetrics) *Service {
	t.Helper()
	tokens, err := NewTokenIssuer(TokenConfig{
		Secret: []byte("test-session-secret-32bytes-long!"),
		TTL:    time.Hour,
	})
	if err != nil {
		t.Fatalf("failed to create token issuer: %v", err)
	}
	return NewService(verifier, tokens, repo, metrics)
}

// --- SignUp ---

func TestService_SignUp_NewUser_ReturnsCreated(t *testing.T) {
	var gotUser *model.User
	repo := &mockUserRepo{
		createIfAbsentFn: func(ctx context.Context, user *model.User) (bool, error) {
			gotUser = user
			return true, nil
		},
	}
	metrics := &mockSessionMetrics{}

	svc := newServiceForTest(t, nil, repo, metrics)

	result, err := svc.SignUp(context.Background(), "user-1", "Taro", "taro@example.com")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if result != SignUpCreated {
		t.Errorf("result = %v, want SignUpCreated", result)
	}
	if gotUser.ID != "user-1" || gotUser.Name != "Taro" || gotUser.Email != "taro@example.com" {
		t.Errorf("unexpected user passed to repo: %+v", gotUser)
	}
	if gotUser.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
	if len(metrics.signupOutcomes) != 1 || !metrics.signupOutcomes[0] {
		t.Errorf("signup outcomes = %v, want [true]", metrics.signupOutcomes)
	}
}

func TestService_SignUp_ExistingUser_ReturnsAlreadyExistsWithoutError(t *testing.T) {
	repo := &mockUserRepo{
		createIfAbsentFn: func(ctx context.Context, user *model.User) (bool, error) {
			return false, nil
		},
	}

	svc := newServiceForTest(t, nil, repo, nil)

	result, err := svc.SignUp(context.Background(), "user-1", "Taro", "taro@example.com")
	if err != nil {
		t.Fatalf("SignUp should not fail for existing user: %v", err)
	}
	if result != SignUpAlreadyExists {
		t.Errorf("result = %v, want SignUpAlreadyExists", result)
	}
}

func TestService_SignUp_EmptyUID_ReturnsInvalidRequest(t *testing.T) {
	svc := newServiceForTest(t, nil, &mockUserRepo{}, nil)

	_, err := svc.SignUp(context.Background(), "", "Taro", "taro@example.com")
	if err == nil {
		t.Fatal("expected error for empty uid")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidRequest {
		t.Errorf("expected INVALID_REQUEST APIError, got %v", err)
	}
}

func TestService_SignUp_RepoFailure_PropagatesError(t *testing.T) {
	repo := &mockUserRepo{
		createIfAbsentFn: func(ctx context.Context, user *model.User) (bool, error) {
			return false, errors.New("connection refused")
		},
	}

	svc := newServiceForTest(t, nil, repo, nil)

	if _, err := svc.SignUp(context.Background(), "user-1", "Taro", "taro@example.com"); err == nil {
		t.Fatal("expected error when repository fails")
	}
}

// --- SignIn ---

func TestService_SignIn_ValidToken_ReturnsCredentialAndUser(t *testing.T) {
	verifier := &mockIdentityVerifier{
		verifyFn: func(ctx context.Context, idToken string) (*model.IdentityClaims, error) {
			return &model.IdentityClaims{Subject: "user-1", Email: "taro@example.com", Name: "Taro"}, nil
		},
	}
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "taro@example.com", Name: "Taro"}, nil
		},
	}
	metrics := &mockSessionMetrics{}

	svc := newServiceForTest(t, verifier, repo, metrics)

	credential, user, err := svc.SignIn(context.Background(), "valid-id-token")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if credential == "" {
		t.Error("expected non-empty credential")
	}
	if user.ID != "user-1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "user-1")
	}
	if len(metrics.signinOutcomes) != 1 || !metrics.signinOutcomes[0] {
		t.Errorf("signin outcomes = %v, want [true]", metrics.signinOutcomes)
	}

	// 発行された資格情報はCurrentUserで解決できる
	resolved := svc.CurrentUser(context.Background(), credential)
	if resolved == nil || resolved.ID != "user-1" {
		t.Errorf("resolved user = %+v, want user-1", resolved)
	}
}

func TestService_SignIn_InvalidToken_ReturnsIdentityTokenInvalid(t *testing.T) {
	verifier := &mockIdentityVerifier{
		verifyFn: func(ctx context.Context, idToken string) (*model.IdentityClaims, error) {
			return nil, errors.New("token expired")
		},
	}
	metrics := &mockSessionMetrics{}

	svc := newServiceForTest(t, verifier, &mockUserRepo{}, metrics)

	_, _, err := svc.SignIn(context.Background(), "expired-token")
	if err == nil {
		t.Fatal("expected error for invalid token")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeIdentityTokenInvalid {
		t.Errorf("expected IDENTITY_TOKEN_INVALID APIError, got %v", err)
	}
	if len(metrics.signinOutcomes) != 1 || metrics.signinOutcomes[0] {
		t.Errorf("signin outcomes = %v, want [false]", metrics.signinOutcomes)
	}
}

func TestService_SignIn_UnregisteredSubject_ReturnsUserNotFound(t *testing.T) {
	verifier := &mockIdentityVerifier{
		verifyFn: func(ctx context.Context, idToken string) (*model.IdentityClaims, error) {
			return &model.IdentityClaims{Subject: "unknown-user"}, nil
		},
	}
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}

	svc := newServiceForTest(t, verifier, repo, nil)

	_, _, err := svc.SignIn(context.Background(), "valid-token")
	if err == nil {
		t.Fatal("expected error for unregistered subject")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("expected USER_NOT_FOUND APIError, got %v", err)
	}
}

func TestService_SignIn_DirectoryLookupFailure_PropagatesError(t *testing.T) {
	verifier := &mockIdentityVerifier{
		verifyFn: func(ctx context.Context, idToken string) (*model.IdentityClaims, error) {
			return &model.IdentityClaims{Subject: "user-1"}, nil
		},
	}
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, errors.New("connection refused")
		},
	}

	svc := newServiceForTest(t, verifier, repo, nil)

	if _, _, err := svc.SignIn(context.Background(), "valid-token"); err == nil {
		t.Fatal("expected error when directory lookup fails")
	}
}

// --- CurrentUser ---

func TestService_CurrentUser_EmptyCredential_ReturnsNil(t *testing.T) {
	metrics := &mockSessionMetrics{}
	svc := newServiceForTest(t, nil, &mockUserRepo{}, metrics)

	if user := svc.CurrentUser(context.Background(), ""); user != nil {
		t.Errorf("expected nil for empty credential, got %+v", user)
	}
	if len(metrics.resolutions) != 1 || metrics.resolutions[0] != "absent" {
		t.Errorf("resolutions = %v, want [absent]", metrics.resolutions)
	}
}

func TestService_CurrentUser_InvalidCredential_ReturnsNil(t *testing.T) {
	metrics := &mockSessionMetrics{}
	svc := newServiceForTest(t, nil, &mockUserRepo{}, metrics)

	if user := svc.CurrentUser(context.Background(), "garbage-credential"); user != nil {
		t.Errorf("expected nil for invalid credential, got %+v", user)
	}
	if len(metrics.resolutions) != 1 || metrics.resolutions[0] != "invalid" {
		t.Errorf("resolutions = %v, want [invalid]", metrics.resolutions)
	}
}

func TestService_CurrentUser_ExpiredCredential_ReturnsNil(t *testing.T) {
	shortTokens, err := NewTokenIssuer(TokenConfig{
		Secret: []byte("test-session-secret-32bytes-long!"),
		TTL:    1 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("failed to create token issuer: %v", err)
	}
	svc := NewService(nil, shortTokens, &mockUserRepo{}, nil)

	credential, err := shortTokens.Mint("user-1")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if user := svc.CurrentUser(context.Background(), credential); user != nil {
		t.Errorf("expected nil for expired credential, got %+v", user)
	}
}

func TestService_CurrentUser_LookupFailure_CollapsesToNil(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	metrics := &mockSessionMetrics{}
	svc := newServiceForTest(t, nil, repo, metrics)

	credential := mintForTest(t, svc, "user-1")

	if user := svc.CurrentUser(context.Background(), credential); user != nil {
		t.Errorf("expected nil when lookup fails, got %+v", user)
	}
	if len(metrics.resolutions) != 1 || metrics.resolutions[0] != "lookup_failed" {
		t.Errorf("resolutions = %v, want [lookup_failed]", metrics.resolutions)
	}
}

func TestService_CurrentUser_MissingUserRecord_CollapsesToNil(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}
	metrics := &mockSessionMetrics{}
	svc := newServiceForTest(t, nil, repo, metrics)

	credential := mintForTest(t, svc, "deleted-user")

	if user := svc.CurrentUser(context.Background(), credential); user != nil {
		t.Errorf("expected nil for missing user record, got %+v", user)
	}
	if len(metrics.resolutions) != 1 || metrics.resolutions[0] != "user_missing" {
		t.Errorf("resolutions = %v, want [user_missing]", metrics.resolutions)
	}
}

func TestService_CurrentUser_ValidSession_ReturnsUser(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Email: "taro@example.com"}, nil
		},
	}
	metrics := &mockSessionMetrics{}
	svc := newServiceForTest(t, nil, repo, metrics)

	credential := mintForTest(t, svc, "user-1")

	user := svc.CurrentUser(context.Background(), credential)
	if user == nil || user.ID != "user-1" {
		t.Errorf("user = %+v, want user-1", user)
	}
	if len(metrics.resolutions) != 1 || metrics.resolutions[0] != "resolved" {
		t.Errorf("resolutions = %v, want [resolved]", metrics.resolutions)
	}
}

// mintForTest はサービス内部のTokenIssuerで資格情報を発行する。
func mintForTest(t *testing.T, svc *Service, subject string) string {
	t.Helper()
	credential, err := svc.tokens.Mint(subject)
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	return credential
}
