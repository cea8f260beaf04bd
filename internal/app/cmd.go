package app

// Command はサブコマンドで指定される起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーとして起動することを示す。
	CommandServe Command = "serve"
	// CommandMigrate はスキーママイグレーションを適用して終了することを示す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のサーバーに対するヘルスチェックを示す。
	// distroless環境のDocker HEALTHCHECK用。
	CommandHealthcheck Command = "healthcheck"
)

// ParseCommand は先頭のコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeにフォールバックする。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "migrate":
		return CommandMigrate
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}
