package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/prepman/internal/model"
	"github.com/hitoshi/prepman/internal/repository"
)

// SignUpResult はサインアップの結果を表す。
type SignUpResult int

const (
	// SignUpCreated はユーザーが新規作成されたことを示す。
	SignUpCreated SignUpResult = iota
	// SignUpAlreadyExists は同一IDのユーザーが既に存在したことを示す。
	// 異常系ではなく、リトライ時の冪等な結果として扱う。
	SignUpAlreadyExists
)

// SessionMetrics はセッション解決の結果を記録するインターフェース。
// metrics.Collectorの部分集合として定義する。
type SessionMetrics interface {
	RecordSigninOutcome(success bool)
	RecordSignupOutcome(created bool)
	RecordSessionResolution(outcome string)
}

// Service は認証に関するビジネスロジックを提供する。
// IDトークンの検証、セッション資格情報の発行、セッション解決を担当する。
type Service struct {
	verifier IdentityVerifier
	tokens   *TokenIssuer
	userRepo repository.UserRepository
	metrics  SessionMetrics
}

// NewService はServiceを生成する。
// metricsはnil許容（記録を省略する）。
func NewService(
	verifier IdentityVerifier,
	tokens *TokenIssuer,
	userRepo repository.UserRepository,
	metrics SessionMetrics,
) *Service {
	return &Service{
		verifier: verifier,
		tokens:   tokens,
		userRepo: userRepo,
		metrics:  metrics,
	}
}

// SignUp はユーザーディレクトリにレコードを冪等に作成する。
// 既に存在する場合は変更なしでSignUpAlreadyExistsを返す。
func (s *Service) SignUp(ctx context.Context, uid, name, email string) (SignUpResult, error) {
	if uid == "" {
		return 0, model.NewInvalidRequestError("uidが空です")
	}
	if name == "" || email == "" {
		return 0, model.NewInvalidRequestError("nameとemailは必須です")
	}

	created, err := s.userRepo.CreateIfAbsent(ctx, &model.User{
		ID:        uid,
		Name:      name,
		Email:     email,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create user: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordSignupOutcome(created)
	}

	if !created {
		slog.Info("signup for existing user", slog.String("user_id", uid))
		return SignUpAlreadyExists, nil
	}

	slog.Info("new user created",
		slog.String("user_id", uid),
		slog.String("email", email),
	)
	return SignUpCreated, nil
}

// SignIn はIDトークンを検証し、セッション資格情報を発行する。
// ディレクトリにレコードが無いsubjectにはサインインを許可しない。
// 検証失敗はIdentityTokenInvalidとして呼び出し元に返し、自動リトライはしない。
func (s *Service) SignIn(ctx context.Context, idToken string) (string, *model.User, error) {
	claims, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		slog.Warn("identity token verification failed", slog.String("error", err.Error()))
		if s.metrics != nil {
			s.metrics.RecordSigninOutcome(false)
		}
		return "", nil, model.NewIdentityTokenInvalidError()
	}

	user, err := s.userRepo.FindByID(ctx, claims.Subject)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSigninOutcome(false)
		}
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		if s.metrics != nil {
			s.metrics.RecordSigninOutcome(false)
		}
		return "", nil, model.NewUserNotFoundError()
	}

	credential, err := s.tokens.Mint(user.ID)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSigninOutcome(false)
		}
		return "", nil, fmt.Errorf("failed to mint session credential: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordSigninOutcome(true)
	}
	slog.Info("user signed in", slog.String("user_id", user.ID))

	return credential, user, nil
}

// CurrentUser はセッション資格情報から現在のユーザーを解決する。
// 資格情報が空・無効・期限切れ、またはディレクトリにレコードが無い場合は
// すべて匿名（nil）として返す。呼び出し元はこれらを区別できない。
// ディレクトリ参照の失敗もログに残した上で匿名扱いとし、エラーは伝播しない。
func (s *Service) CurrentUser(ctx context.Context, credential string) *model.User {
	if credential == "" {
		s.recordResolution("absent")
		return nil
	}

	uid, err := s.tokens.Verify(credential)
	if err != nil {
		s.recordResolution("invalid")
		return nil
	}

	user, err := s.userRepo.FindByID(ctx, uid)
	if err != nil {
		slog.Error("failed to look up user for session",
			slog.String("user_id", uid),
			slog.String("error", err.Error()),
		)
		s.recordResolution("lookup_failed")
		return nil
	}
	if user == nil {
		// 資格情報は有効だがディレクトリにレコードが無い（削除済みアカウント等）。
		// 監査要件が出るまでは匿名に畳み込む。
		slog.Warn("session credential for missing user", slog.String("user_id", uid))
		s.recordResolution("user_missing")
		return nil
	}

	s.recordResolution("resolved")
	return user
}

func (s *Service) recordResolution(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSessionResolution(outcome)
	}
}
