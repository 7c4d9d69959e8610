package orchestrator

import (
	"errors"

	"github.com/shirase/yoyaku/internal/genai"
)

// Fixed user-facing failure messages. Every failure path ends in exactly one
// of these; Unknown shares the generic API-error message.
const (
	msgKeyMissing   = "APIキーが設定されていません。拡張機能の設定でAPIキーを入力してください。"
	msgEmptySummary = "要約を生成できませんでした。もう一度お試しください。"
	msgKeyInvalid   = "APIキーが無効です。設定を確認してください。"
	msgQuota        = "APIの利用上限に達しました。しばらくしてからお試しください。"
	msgNetwork      = "ネットワークエラーが発生しました。接続を確認してください。"
	msgAPIError     = "要約の生成中にエラーが発生しました。"
)

// messageFor maps a summarization-client failure to its fixed user-facing
// message.
func messageFor(err error) string {
	var apiErr *genai.APIError
	if !errors.As(err, &apiErr) {
		return msgAPIError
	}
	switch apiErr.Kind {
	case genai.KindKeyInvalid:
		return msgKeyInvalid
	case genai.KindQuotaExceeded:
		return msgQuota
	case genai.KindNetwork:
		return msgNetwork
	default:
		return msgAPIError
	}
}
