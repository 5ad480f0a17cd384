package backend

import (
	"encoding/json"
	"os"
	"path/filepath"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

const settingsFileName = "settings.json"

// SettingsService は設定関連の操作を提供するインターフェースです
type SettingsService interface {
	LoadSettings() (*Settings, error)
	SaveSettings(settings *Settings) error
	SaveWindowState(ctx *Context) error
}

// settingsService はSettingsServiceの実装です
type settingsService struct {
	appDataDir string
}

// NewSettingsService は新しいsettingsServiceインスタンスを作成します
func NewSettingsService(appDataDir string) *settingsService {
	return &settingsService{
		appDataDir: appDataDir,
	}
}

// defaultSettings は設定ファイルが無い場合の既定値
func defaultSettings() *Settings {
	return &Settings{
		HideMergeCommits: true,
		LogLevel:         "info",
		WindowWidth:      1200,
		WindowHeight:     800,
		WindowX:          0,
		WindowY:          0,
		IsMaximized:      false,
		IsDebug:          false,
	}
}

// LoadSettings はsettings.jsonから設定を読み込みます
// ファイルが存在しない場合はデフォルト設定を返します
func (s *settingsService) LoadSettings() (*Settings, error) {
	settingsPath := filepath.Join(s.appDataDir, settingsFileName)

	if _, err := os.Stat(settingsPath); os.IsNotExist(err) {
		return defaultSettings(), nil
	}

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, err
	}

	var settings Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, err
	}

	// 古いsettings.jsonで未定義のキーには既定値を適用する
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err == nil {
		if _, exists := raw["hideMergeCommits"]; !exists {
			settings.HideMergeCommits = true
		}
	}
	if settings.LogLevel == "" {
		settings.LogLevel = "info"
	}

	return &settings, nil
}

// SaveSettings は設定をsettings.jsonに保存します
func (s *settingsService) SaveSettings(settings *Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.appDataDir, 0755); err != nil {
		return err
	}
	settingsPath := filepath.Join(s.appDataDir, settingsFileName)
	return os.WriteFile(settingsPath, data, 0644)
}

// SaveWindowState はウィンドウの状態を保存します
func (s *settingsService) SaveWindowState(ctx *Context) error {
	settings, err := s.LoadSettings()
	if err != nil {
		return err
	}

	width, height := wailsRuntime.WindowGetSize(ctx.ctx)
	settings.WindowWidth = width
	settings.WindowHeight = height

	x, y := wailsRuntime.WindowGetPosition(ctx.ctx)
	settings.WindowX = x
	settings.WindowY = y

	settings.IsMaximized = wailsRuntime.WindowIsMaximised(ctx.ctx)

	return s.SaveSettings(settings)
}
