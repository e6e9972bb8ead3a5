package mailer

import "context"

// 通知メールの送信口。呼び出し側はベストエフォートで扱う
// （送信失敗でチェックアウトや決済確定を失敗させない）。
type Mailer interface {
	Send(ctx context.Context, to string, subject string, htmlBody string) error
}
