package model

import "time"

// Interview は模擬面接レコードを表す。
// レコードの作成は面接生成側（本サブシステムの外部）が行い、
// ここからは読み取り専用として扱う。
type Interview struct {
	ID        string
	UserID    string
	Role      string
	Type      string
	Level     string
	Techstack []string
	Questions []string
	Finalized bool
	CreatedAt time.Time
}
