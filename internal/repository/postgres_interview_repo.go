package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/prepman/internal/model"
)

// interviewsTable は面接コレクションのテーブル名。
const interviewsTable = "interviews"

// PostgresInterviewRepo はPostgreSQLを使用した面接リポジトリ。
// 面接レコードはここからは読み取り専用。
type PostgresInterviewRepo struct {
	db *sql.DB
}

// NewPostgresInterviewRepo はPostgresInterviewRepoを生成する。
func NewPostgresInterviewRepo(db *sql.DB) *PostgresInterviewRepo {
	return &PostgresInterviewRepo{db: db}
}

// ListByOwner は指定ユーザーが所有する面接をcreated_at降順で全件返す。
func (r *PostgresInterviewRepo) ListByOwner(ctx context.Context, userID string) ([]model.Interview, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, role, type, level, techstack, questions, finalized, created_at
		 FROM `+interviewsTable+`
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("所有面接の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanInterviews(rows)
}

// ListDiscoverable はfinalized済みかつ指定ユーザー以外が所有する面接を
// created_at降順で最大limit件返す。
func (r *PostgresInterviewRepo) ListDiscoverable(ctx context.Context, excludeUserID string, limit int) ([]model.Interview, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, role, type, level, techstack, questions, finalized, created_at
		 FROM `+interviewsTable+`
		 WHERE finalized = TRUE AND user_id <> $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		excludeUserID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("公開面接の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return scanInterviews(rows)
}

// scanInterviews は取得結果を面接レコードのスライスに変換する。
// 1件も無い場合は空スライスを返す。
func scanInterviews(rows *sql.Rows) ([]model.Interview, error) {
	interviews := []model.Interview{}
	for rows.Next() {
		var iv model.Interview
		if err := rows.Scan(
			&iv.ID, &iv.UserID, &iv.Role, &iv.Type, &iv.Level,
			pq.Array(&iv.Techstack), pq.Array(&iv.Questions),
			&iv.Finalized, &iv.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("面接レコードの読み取りに失敗しました: %w", err)
		}
		interviews = append(interviews, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("面接レコードの走査に失敗しました: %w", err)
	}

	return interviews, nil
}

// compile-time interface check
var _ InterviewRepository = (*PostgresInterviewRepo)(nil)
