package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/prepman/internal/model"
)

// usersTable はユーザーディレクトリのテーブル名。
// 存在確認と書き込みの両方で必ずこの定数を使用する。
// （移植元では存在確認が "user"、書き込みが "users" と食い違っており、
// 重複検出が機能していなかった。ここでは単一の名前に統一している。
// 挙動が変わるため要オーナー確認。）
const usersTable = "users"

// uniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const uniqueViolation = "23505"

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, name, created_at FROM `+usersTable+` WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}

	return user, nil
}

// CreateIfAbsent は同一IDのレコードが存在しない場合のみユーザーを作成する。
// 作成した場合はtrue、既に存在した場合はfalseを返す。
// 存在確認と挿入の間のレースは主キー制約で検出し、既存扱いに読み替える。
func (r *PostgresUserRepo) CreateIfAbsent(ctx context.Context, user *model.User) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+usersTable+` WHERE id = $1)`,
		user.ID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ユーザーの存在確認に失敗しました: %w", err)
	}
	if exists {
		return false, nil
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO `+usersTable+` (id, email, name, created_at)
		 VALUES ($1, $2, $3, $4)`,
		user.ID, user.Email, user.Name, user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			// 同時サインアップとのレース。既存扱いとする。
			return false, nil
		}
		return false, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	return true, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
