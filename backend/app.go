package backend

import (
	"context"
	"io"
	"os"
	"path/filepath"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

const appDirName = "repo-analyzer"

// NewContext は新しいContextインスタンスを作成します
func NewContext(ctx context.Context) *Context {
	return &Context{
		ctx: ctx,
	}
}

// NewApp は新しいAppインスタンスを作成します
// windows には wails.Run の前に宣言したウィンドウを登録しておく
func NewApp(windows *WindowRegistry) *App {
	app := &App{
		ctx:        NewContext(context.Background()),
		windows:    windows,
		chrome:     newPlatformChromeCustomizer(),
		showWindow: wailsRuntime.WindowShow,
		newFetcher: func(ctx context.Context, token string) RepositoryFetcher {
			return NewGitHubClient(ctx, token)
		},
	}
	app.fatal = func(err error) {
		app.logger.Fatal(err, "startup failed")
	}
	return app
}

// ------------------------------------------------------------
// アプリケーション関連の操作
// ------------------------------------------------------------

// Startup はWailsのOnStartupから一度だけ呼び出される
// ウィンドウは StartHidden で作成されており、起動時フックが成功してから表示する
func (a *App) Startup(ctx context.Context) {
	if err := a.startup(ctx); err != nil {
		a.fatal(err)
		return
	}
	a.showWindow(ctx)
}

func (a *App) startup(ctx context.Context) error {
	a.ctx.ctx = ctx

	// アプリケーションデータディレクトリの設定
	if a.appDataDir == "" {
		a.appDataDir = resolveAppDataDir()
	}
	os.MkdirAll(a.appDataDir, 0755)

	a.settingsService = NewSettingsService(a.appDataDir)
	settings, settingsErr := a.settingsService.LoadSettings()
	if settingsErr != nil {
		settings = defaultSettings()
	}

	if a.logger == nil {
		level := settings.LogLevel
		if settings.IsDebug {
			level = "debug"
		}
		a.logger = NewAppLogger(ctx, false, a.appDataDir, level)
	}
	if settingsErr != nil {
		a.logger.Error(settingsErr, "failed to load settings, using defaults")
	}
	a.logger.Console("appDataDir %s", a.appDataDir)

	a.tokenStore = newTokenStore(a.appDataDir)
	a.exportService = NewExportService(a.ctx)

	return NewStartupHook(a.windows, a.chrome, a.logger).Run()
}

// resolveAppDataDir はユーザー設定ディレクトリ配下のアプリ用ディレクトリを返す
func resolveAppDataDir() string {
	appData, err := os.UserConfigDir()
	if err != nil {
		appData, err = os.UserHomeDir()
		if err != nil {
			appData = "."
		}
	}
	return filepath.Join(appData, appDirName)
}

func (a *App) DomReady(ctx context.Context) {
	a.logger.Debug("DomReady called")

	// フロントエンドに初期化完了を通知
	if !a.logger.IsTestMode() {
		wailsRuntime.EventsEmit(ctx, "backend:ready")
	}
}

// アプリケーション終了前に呼び出される処理。終了は妨げない
func (a *App) BeforeClose(ctx context.Context) (prevent bool) {
	a.CancelAnalysis()

	if err := a.settingsService.SaveWindowState(a.ctx); err != nil {
		a.logger.Error(err, "failed to save window state")
	}
	return false
}

// Shutdown はログファイルなどの後始末を行う
func (a *App) Shutdown(ctx context.Context) {
	if closer, ok := a.logger.(io.Closer); ok {
		closer.Close()
	}
}

// BringToFront brings the application window to front
func (a *App) BringToFront() {
	wailsRuntime.WindowUnminimise(a.ctx.ctx)
	wailsRuntime.Show(a.ctx.ctx)
}

// ------------------------------------------------------------
// 解析関連の操作
// ------------------------------------------------------------

// AnalyzeRepository は1つのリポジトリを解析する
func (a *App) AnalyzeRepository(repoURL string, hideMergeCommits bool) (*RepoResult, error) {
	fetcher, err := a.fetcher()
	if err != nil {
		return nil, err
	}

	ctx, done := a.beginAnalysis()
	defer done()

	data, err := fetcher.FetchRepositoryData(ctx, repoURL, FetchOptions{HideMergeCommits: hideMergeCommits})
	if err != nil {
		return nil, a.logger.ErrorWithNotify(err, "failed to analyze %s", repoURL)
	}

	result := Summarize(repoURL, data)
	a.logger.Info("analyzed %s: %d commits, %d issues, %d PRs", result.RepoName, result.Commits, result.Issues, result.PullRequests)
	return &result, nil
}

// AnalyzeRepositories は改行区切りのリポジトリを順番に解析し、進捗を analysis:progress で通知する
func (a *App) AnalyzeRepositories(input string, hideMergeCommits bool) (*BatchResult, error) {
	fetcher, err := a.fetcher()
	if err != nil {
		return nil, err
	}

	ctx, done := a.beginAnalysis()
	defer done()

	analyzer := NewAnalyzer(fetcher, a.logger.NotifyAnalysisProgress)
	batch, err := analyzer.AnalyzeBatch(ctx, input, FetchOptions{HideMergeCommits: hideMergeCommits})
	if err != nil {
		return batch, a.logger.ErrorWithNotify(err, "batch analysis failed")
	}

	a.logger.Info("batch %s: %d of %d repositories analyzed", batch.ID, len(batch.Results), len(batch.Items))
	return batch, nil
}

// CancelAnalysis は実行中の解析を中断する
func (a *App) CancelAnalysis() {
	a.analysisMu.Lock()
	defer a.analysisMu.Unlock()
	if a.cancelAnalysis != nil {
		a.cancelAnalysis()
		a.cancelAnalysis = nil
	}
}

// beginAnalysis は前の解析を中断し、新しい解析用のコンテキストを返す
func (a *App) beginAnalysis() (context.Context, func()) {
	a.analysisMu.Lock()
	defer a.analysisMu.Unlock()

	if a.cancelAnalysis != nil {
		a.cancelAnalysis()
	}
	ctx, cancel := context.WithCancel(a.ctx.ctx)
	a.cancelAnalysis = cancel
	a.analysisSeq++
	seq := a.analysisSeq

	return ctx, func() {
		cancel()
		a.analysisMu.Lock()
		defer a.analysisMu.Unlock()
		// 後続の解析がすでに始まっていれば触らない
		if a.analysisSeq == seq {
			a.cancelAnalysis = nil
		}
	}
}

func (a *App) fetcher() (RepositoryFetcher, error) {
	token := a.tokenStore.Resolve()
	if token == "" {
		return nil, ErrMissingToken
	}
	return a.newFetcher(a.ctx.ctx, token), nil
}

// ParseRepoURL はURLを検証してオーナーとリポジトリ名を返す
func (a *App) ParseRepoURL(repoURL string) (RepoInfo, error) {
	return ParseRepoURL(repoURL)
}

// ------------------------------------------------------------
// トークン関連の操作
// ------------------------------------------------------------

func (a *App) GetTokenStatus() TokenStatus {
	return a.tokenStore.Status()
}

func (a *App) SaveToken(token string) error {
	if err := a.tokenStore.Save(token); err != nil {
		return err
	}
	a.logger.Info("GitHub token saved")
	return nil
}

func (a *App) DeleteToken() error {
	if err := a.tokenStore.Delete(); err != nil {
		return a.logger.Error(err, "failed to delete GitHub token")
	}
	a.logger.Info("GitHub token removed")
	return nil
}

// ------------------------------------------------------------
// 設定・エクスポート関連の操作
// ------------------------------------------------------------

// 設定を読み込む
func (a *App) LoadSettings() (*Settings, error) {
	return a.settingsService.LoadSettings()
}

// 設定を保存する
func (a *App) SaveSettings(settings *Settings) error {
	return a.settingsService.SaveSettings(settings)
}

// 保存ダイアログを表示し、選択された保存先のパスを返す
func (a *App) SelectExportPath(name string) (string, error) {
	return a.exportService.SelectExportPath(name)
}

// 解析結果をJSONで保存する
func (a *App) ExportResults(filePath string, results []RepoResult) error {
	if err := a.exportService.ExportResults(filePath, results); err != nil {
		return a.logger.Error(err, "failed to export results")
	}
	a.logger.Info("exported %d results to %s", len(results), filePath)
	return nil
}

// リポジトリをブラウザで開く
func (a *App) OpenRepository(repoURL string) error {
	return a.exportService.OpenRepository(repoURL)
}
