// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/prepman/internal/model"
)

// UserRepository はユーザーディレクトリの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateIfAbsent は同一IDのレコードが存在しない場合のみユーザーを作成する。
	// 作成した場合はtrue、既に存在した場合はfalseを返す（冪等）。
	// 存在確認と書き込みは必ず同じテーブルに対して行う。
	CreateIfAbsent(ctx context.Context, user *model.User) (bool, error)
}

// InterviewRepository は面接コレクションの読み取りインターフェース。
// レコードの作成は面接生成側が行うため、書き込み操作は持たない。
type InterviewRepository interface {
	// ListByOwner は指定ユーザーが所有する面接をcreated_at降順で全件返す。
	// 該当なしの場合は空スライスを返す（エラーではない）。
	ListByOwner(ctx context.Context, userID string) ([]model.Interview, error)

	// ListDiscoverable はfinalized済みかつ指定ユーザー以外が所有する面接を
	// created_at降順で最大limit件返す。
	ListDiscoverable(ctx context.Context, excludeUserID string, limit int) ([]model.Interview, error)
}
