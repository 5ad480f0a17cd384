package backend

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// AppLogger はログ出力とフロントエンド通知を担当するインターフェース
type AppLogger interface {
	NotifyAnalysisProgress(progress AnalysisProgress)                    // 解析の進捗通知
	Console(format string, args ...interface{})                          // コンソール出力
	Debug(format string, args ...interface{})                            // デバッグ出力
	Info(format string, args ...interface{})                             // 情報メッセージ出力
	Error(err error, format string, args ...interface{}) error           // エラーメッセージ出力
	ErrorWithNotify(err error, format string, args ...interface{}) error // エラーメッセージ出力とフロントエンド通知
	Fatal(err error, format string, args ...interface{})                 // 致命的エラーを出力して終了
	IsTestMode() bool
}

// exitProcess はFatal時の終了処理
var exitProcess = os.Exit

// appLoggerImpl はAppLoggerの実装
type appLoggerImpl struct {
	ctx        context.Context
	isTestMode bool
	log        zerolog.Logger
	logFile    *os.File
	logDir     string
}

// NewAppLogger は新しいAppLoggerインスタンスを作成
func NewAppLogger(ctx context.Context, isTestMode bool, appDataDir string, level string) AppLogger {
	if isTestMode {
		return &appLoggerImpl{
			ctx:        ctx,
			isTestMode: true,
			log:        zerolog.Nop(),
		}
	}

	console := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05.000",
	}

	logDir := filepath.Join(appDataDir, "logs")
	os.MkdirAll(logDir, 0755)

	logPath := filepath.Join(logDir, fmt.Sprintf("app_%s.log", time.Now().Format("2006-01-02_15-04-05")))
	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)

	var out io.Writer = console
	if err != nil {
		fmt.Printf("Error opening log file: %v\n", err)
		logFile = nil
	} else {
		out = zerolog.MultiLevelWriter(console, logFile)
	}

	return &appLoggerImpl{
		ctx:        ctx,
		isTestMode: false,
		log:        zerolog.New(out).Level(parseLogLevel(level)).With().Timestamp().Logger(),
		logFile:    logFile,
		logDir:     logDir,
	}
}

// parseLogLevel は設定値をzerologのレベルに変換する
func parseLogLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ----------------------------------------------------------------
// 解析状態の通知
// ----------------------------------------------------------------

// 解析の進捗をフロントエンドに通知
func (l *appLoggerImpl) NotifyAnalysisProgress(progress AnalysisProgress) {
	l.log.Debug().
		Str("batch", progress.BatchID).
		Int("index", progress.CurrentIndex).
		Int("total", progress.Total).
		Int("progress", progress.Progress).
		Str("status", string(progress.Item.Status)).
		Msg("analysis progress")
	if !l.isTestMode {
		wailsRuntime.EventsEmit(l.ctx, "analysis:progress", progress)
	}
}

// ----------------------------------------------------------------
// ログメッセージの通知
// ----------------------------------------------------------------

// ログメッセージをコンソールのみに出力
func (l *appLoggerImpl) Console(format string, args ...interface{}) {
	l.log.Info().Msgf(format, args...)
}

func (l *appLoggerImpl) Debug(format string, args ...interface{}) {
	l.log.Debug().Msgf(format, args...)
}

// 情報メッセージをコンソールとフロントエンドに出力
func (l *appLoggerImpl) Info(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	l.log.Info().Msg(message)
	l.sendLogMessage(message)
}

// エラーメッセージをコンソールとフロントエンドに出力し、エラーを返す
func (l *appLoggerImpl) Error(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	message := fmt.Sprintf(format, args...)
	l.log.Error().Err(err).Msg(message)
	l.sendLogMessage(fmt.Sprintf("%s: %s", message, err.Error()))
	return err
}

// ErrorWithNotify はエラーを出力し、さらにフロントエンドにエラー通知を送信
func (l *appLoggerImpl) ErrorWithNotify(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}

	l.Error(err, format, args...)
	if !l.isTestMode {
		wailsRuntime.EventsEmit(l.ctx, "analysis:error", err.Error())
	}
	return err
}

// Fatal は致命的エラーを出力してプロセスを終了する
func (l *appLoggerImpl) Fatal(err error, format string, args ...interface{}) {
	l.log.WithLevel(zerolog.FatalLevel).Err(err).Msgf(format, args...)
	if l.logFile != nil {
		l.logFile.Sync()
		l.logFile.Close()
	}
	exitProcess(1)
}

// ログメッセージをフロントエンドのステータスバーに通知
func (l *appLoggerImpl) sendLogMessage(message string) {
	if !l.isTestMode {
		wailsRuntime.EventsEmit(l.ctx, "logMessage", message)
	}
}

func (l *appLoggerImpl) IsTestMode() bool {
	return l.isTestMode
}

// Close はログファイルを閉じる
func (l *appLoggerImpl) Close() error {
	if l.logFile == nil {
		return nil
	}
	err := l.logFile.Close()
	l.logFile = nil
	return err
}
