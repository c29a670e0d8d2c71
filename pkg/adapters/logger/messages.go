package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Host loop (info)
		"Playing %d streams (%s pacing, %.1f ticks/s)": "%d 本のストリームを再生します (%s ペーシング, %.1f ティック/秒)",
		"Restarting %s (%d/%d)":                        "%s を最初から再生します (%d/%d)",
		"Playback stopped (%s) after %d frames":        "%[2]d フレームで再生を停止しました (%[1]s)",
		"Failed to save snapshot: %s":                  "スナップショットの保存に失敗しました: %s",
		"Decode workers did not stop in time: %s":      "デコードワーカーが時間内に停止しませんでした: %s",

		// Asset loading
		"Loaded %s: %d access units, %d bytes": "%s を読み込みました: %d アクセスユニット, %d バイト",
		"Failed to load %s: %v":                "%s の読み込みに失敗しました: %v",
		"Stream %s: %v":                        "ストリーム %s: %v",

		// Playback scheduler
		"Instance %d created for %s (%s, capacity %d)":      "インスタンス %d を %s 用に作成しました (%s, 容量 %d)",
		"Video %s is ready: %d access units":                "動画 %s の準備ができました: %d アクセスユニット",
		"Video %s has no access units":                      "動画 %s にアクセスユニットがありません",
		"Video %s could not be loaded (%s)":                 "動画 %s を読み込めませんでした (%s)",
		"Render target is missing (instance %d, target %d)": "描画先が見つかりません (インスタンス %d, ターゲット %d)",
		"Instance %d reached the end of %s":                 "インスタンス %d が %s の末尾に到達しました",
		"Instance %d restarted, %d queued frames dropped":   "インスタンス %d を再開しました。キュー内の %d フレームを破棄しました",
		"Decode worker rejected a unit for instance %d: %v": "デコードワーカーがインスタンス %d のユニットを拒否しました: %v",

		// Decode worker
		"Dropped access unit (%d bytes): %v": "アクセスユニットを破棄しました (%d バイト): %v",
	})
}
