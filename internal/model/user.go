// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// IDは外部IdPが払い出したsubject識別子をそのまま使用する。
// サインアップ時に1回だけ作成され、本サブシステム内では不変として扱う。
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

// IdentityClaims は外部IdPのIDトークンを検証して得られるクレームを表す。
// セッション資格情報の発行にはSubjectのみを埋め込む。
type IdentityClaims struct {
	Subject string
	Email   string
	Name    string
}
