// Package interview は面接クエリのドメインロジックを提供する。
// 自分の面接一覧（owned）と他ユーザーの公開面接フィード（discoverable）の
// 2つの読み取り操作と、1画面分の並行取得を提供する。
package interview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/prepman/internal/model"
	"github.com/hitoshi/prepman/internal/repository"
	"github.com/hitoshi/prepman/internal/security"
)

// DefaultDiscoverLimit は公開面接フィードの取得上限のデフォルト値。
const DefaultDiscoverLimit = 20

// QueryMetrics はクエリの失敗とレイテンシを記録するインターフェース。
// metrics.Collectorの部分集合として定義する。
type QueryMetrics interface {
	RecordQueryFailure(operation string)
	RecordQueryLatency(operation string, d time.Duration)
}

// Service は面接クエリのサービス層。
// いずれの操作も読み取り専用で、リクエストごとに毎回ストアから取得する
// （このコアにキャッシュ層は存在しない）。
type Service struct {
	repo          repository.InterviewRepository
	sanitizer     security.TextSanitizerService
	metrics       QueryMetrics
	discoverLimit int
}

// NewService はServiceを生成する。
// discoverLimitが0以下の場合はDefaultDiscoverLimitを使用する。
// metricsはnil許容（記録を省略する）。
func NewService(
	repo repository.InterviewRepository,
	sanitizer security.TextSanitizerService,
	metrics QueryMetrics,
	discoverLimit int,
) *Service {
	if discoverLimit <= 0 {
		discoverLimit = DefaultDiscoverLimit
	}
	return &Service{
		repo:          repo,
		sanitizer:     sanitizer,
		metrics:       metrics,
		discoverLimit: discoverLimit,
	}
}

// Owned は指定ユーザーが所有する面接をcreated_at降順で全件返す。
// 該当なしは空スライス（正常系）。クエリ実行の失敗はエラーとして返し、
// 呼び出し元が「結果なし」として畳み込む。
func (s *Service) Owned(ctx context.Context, userID string) ([]model.Interview, error) {
	start := time.Now()
	interviews, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		s.recordFailure("owned", userID, err)
		return nil, err
	}
	s.recordLatency("owned", time.Since(start))

	return s.sanitizeAll(interviews), nil
}

// Discoverable はfinalized済みかつ指定ユーザー以外が所有する面接を
// created_at降順で返す。limitが0以下の場合は設定値を使用する。
func (s *Service) Discoverable(ctx context.Context, userID string, limit int) ([]model.Interview, error) {
	if limit <= 0 {
		limit = s.discoverLimit
	}

	start := time.Now()
	interviews, err := s.repo.ListDiscoverable(ctx, userID, limit)
	if err != nil {
		s.recordFailure("discoverable", userID, err)
		return nil, err
	}
	s.recordLatency("discoverable", time.Since(start))

	return s.sanitizeAll(interviews), nil
}

// DashboardResult は1画面分の面接一覧の取得結果を表す。
// OwnedOK / DiscoverableOK がfalseの場合、そのクエリは実行に失敗しており、
// 対応するスライスはnilとなる。「0件」（空スライス・OK=true）とは区別される。
type DashboardResult struct {
	Owned          []model.Interview
	OwnedOK        bool
	Discoverable   []model.Interview
	DiscoverableOK bool
}

// Dashboard はownedとdiscoverableを並行に取得し、両方の完了を待って返す。
// 2つのクエリにデータ依存はなく、一方の失敗は他方に影響しない。
// 失敗したクエリは結果なしとして返り、画面側は空状態として描画する。
func (s *Service) Dashboard(ctx context.Context, userID string) DashboardResult {
	var result DashboardResult
	var wg sync.WaitGroup

	wg.Add(2)

	go func() {
		defer wg.Done()
		owned, err := s.Owned(ctx, userID)
		if err != nil {
			return
		}
		result.Owned = owned
		result.OwnedOK = true
	}()

	go func() {
		defer wg.Done()
		discoverable, err := s.Discoverable(ctx, userID, 0)
		if err != nil {
			return
		}
		result.Discoverable = discoverable
		result.DiscoverableOK = true
	}()

	wg.Wait()
	return result
}

// sanitizeAll は面接レコードの表示テキストをサニタイズして返す。
// レコードは外部で生成されるため、応答前に必ず通す。
func (s *Service) sanitizeAll(interviews []model.Interview) []model.Interview {
	if s.sanitizer == nil {
		return interviews
	}
	for i := range interviews {
		interviews[i].Role = s.sanitizer.Sanitize(interviews[i].Role)
		interviews[i].Level = s.sanitizer.Sanitize(interviews[i].Level)
		for j := range interviews[i].Techstack {
			interviews[i].Techstack[j] = s.sanitizer.Sanitize(interviews[i].Techstack[j])
		}
		for j := range interviews[i].Questions {
			interviews[i].Questions[j] = s.sanitizer.Sanitize(interviews[i].Questions[j])
		}
	}
	return interviews
}

func (s *Service) recordFailure(operation, userID string, err error) {
	slog.Error("interview query failed",
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.String("error", err.Error()),
	)
	if s.metrics != nil {
		s.metrics.RecordQueryFailure(operation)
	}
}

func (s *Service) recordLatency(operation string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordQueryLatency(operation, d)
	}
}
