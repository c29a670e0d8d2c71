// Package main provides localization for the h264play CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Flag categories
		"Configuration": "設定ファイル",
		"Playback":      "再生",
		"Snapshots":     "スナップショット",
		"Output":        "出力",
		"Logging":       "ログ",

		// Root command
		"Decode and play H.264 elementary streams": "H.264エレメンタリストリームをデコードして再生",
		"h264play decodes H.264 Annex B streams on background workers and paces the decoded frames at a fixed or real-time rate.": "h264playはH.264 Annex Bストリームをバックグラウンドワーカーでデコードし、固定レートまたは実時間でフレームを表示します。",
		"Error: %s": "エラー: %s",

		// Commands
		"Play one or more H.264 streams":              "1つ以上のH.264ストリームを再生",
		"Describe the access units of H.264 streams": "H.264ストリームのアクセスユニットを表示",
		"Show version information":                    "バージョン情報を表示",
		"h264play version %s":                         "h264play バージョン %s",
		"OpenH264 decoder: available":                 "OpenH264デコーダー: 利用可能",
		"OpenH264 decoder: unavailable":               "OpenH264デコーダー: 利用不可",

		// Flags
		"YAML configuration file":                                 "YAML設定ファイル",
		"Pacing mode (fixed, realtime)":                           "ペーシングモード（fixed, realtime）",
		"Frames per second (default: 30)":                         "毎秒フレーム数（デフォルト: 30）",
		"Frame duration in real-time mode (0 = 1000/fps)":         "実時間モードのフレーム時間（0 = 1000/fps）",
		"Host ticks per second in real-time mode (default: 120)":  "実時間モードの毎秒ティック数（デフォルト: 120）",
		"Loop videos forever":                                     "動画を繰り返し再生",
		"Play finished videos again this many times":              "再生が終わった動画をこの回数だけ再度再生",
		"Decoded frame queue capacity (0 = mode default)":         "デコード済みフレームキューの容量（0 = モードの既定値）",
		"Stop after this many displayed frames (0 = no limit)":    "この数のフレームを表示したら停止（0 = 無制限）",
		"Stop after this many milliseconds (0 = no limit)":        "このミリ秒数が経過したら停止（0 = 無制限）",
		"Clamp out-of-range colors instead of wrapping":           "範囲外の色を折り返さずに飽和させる",
		"Directory for displayed frame images":                    "表示フレーム画像の保存先ディレクトリ",
		"Save every Nth displayed frame (default: 1)":             "N フレームごとに保存（デフォルト: 1）",
		"Scale snapshots to this width (0 = decoded size)":        "スナップショットの幅（0 = デコードサイズ）",
		"Snapshot image format (png, jpeg)":                       "スナップショットの画像形式（png, jpeg）",
		"Draw the stream name and frame number on snapshots":      "スナップショットにストリーム名とフレーム番号を描画",
		"Write a Markdown run summary to this path":               "Markdown形式の実行サマリーの出力先",
		"Log level (debug, info, warn, error)":                    "ログレベル（debug, info, warn, error）",
		"Suppress all log output":                                 "すべてのログ出力を抑制",

		// Play command messages
		"Interrupted, shutting down...":    "中断されました。シャットダウン中...",
		"Displayed %d frames in %d ticks":  "%d フレームを %d ティックで表示しました",
		"Snapshots saved to %s":            "スナップショットを %s に保存しました",
		"Summary saved to %s":              "サマリーを %s に保存しました",
		"Failed to write summary: %s":      "サマリーの書き込みに失敗しました: %s",

		// Info command
		"  Access units:   %d (%d bytes)":   "  アクセスユニット: %d (%d バイト)",
		"  Pictures:       %d":              "  ピクチャ:         %d",
		"  Parameter sets: %d":              "  パラメータセット: %d",
		"  Resolution:     %dx%d":           "  解像度:           %dx%d",
		"  Profile/Level:  %d/%d":           "  プロファイル/レベル: %d/%d",
		"  No sequence parameter set found": "  SPSが見つかりません",
		"  NAL types:      %s":              "  NALタイプ:        %s",

		// Summary content
		"Playback Summary": "再生サマリー",
		"Generated":        "生成日時",
		"Results":          "実行結果",
		"Settings":         "設定",
		"Streams":          "ストリーム",
		"Item":             "項目",
		"Value":            "値",
		"Generated by":     "生成:",

		// Results section
		"Stop Reason":      "停止理由",
		"Ticks":            "ティック数",
		"Elapsed":          "経過時間",
		"Frames Displayed": "表示フレーム数",
		"Frames Missed":    "欠落フレーム数",
		"Units Failed":     "デコード失敗ユニット数",
		"Interrupted":      "中断",
		"finished":         "再生完了",
		"removed":          "全インスタンス削除",
		"frame limit":      "フレーム数上限",
		"duration":         "時間上限",
		"interrupted":      "中断",

		// Settings section
		"Pacing":             "ペーシング",
		"fixed":              "固定ステップ",
		"realtime":           "実時間",
		"FPS":                "FPS",
		"Tick Rate":          "ティックレート",
		"Repeat":             "繰り返し",
		"Restarts":           "再再生回数",
		"Buffer":             "バッファ",
		"Default":            "既定値",
		"Color Conversion":   "色変換",
		"wrap":               "折り返し",
		"clamp":              "飽和",
		"Snapshot Directory": "スナップショット保存先",
		"Frame Limit":        "フレーム数上限",
		"Duration Limit":     "時間上限",
		"Yes":                "はい",
		"No":                 "いいえ",
		"None":               "なし",

		// Streams section
		"Video":      "動画",
		"Size":       "サイズ",
		"Resolution": "解像度",
		"Units":      "ユニット",
		"Displayed":  "表示",
		"Missed":     "欠落",
		"Discarded":  "破棄",
		"Decoded":    "デコード",
		"Failed":     "失敗",
		"Outcome":    "結果",
		"shutdown":   "終了時に停止",
	})
}
