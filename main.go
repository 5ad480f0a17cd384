package main

import (
	"embed"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"

	"repo-analyzer/backend"
)

//go:embed all:frontend/dist
var assets embed.FS

const appTitle = "Repo Analyzer"

func main() {
	// ウィンドウを論理名 "main" で宣言する。起動時フックはこの名前でウィンドウを探す
	windows := backend.NewWindowRegistry()
	windows.Register(backend.MainWindowName, appTitle)

	app := backend.NewApp(windows)

	err := wails.Run(&options.App{
		Title:     appTitle,
		Width:     1200,
		Height:    800,
		MinWidth:  900,
		MinHeight: 600,
		// 起動時フックでクロームを整えてから表示する
		StartHidden: true,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 255, G: 255, B: 255, A: 1},
		OnStartup:        app.Startup,
		OnDomReady:       app.DomReady,
		OnBeforeClose:    app.BeforeClose,
		OnShutdown:       app.Shutdown,
		LogLevel:         logger.INFO,
		Bind: []interface{}{
			app,
		},
		Mac: &mac.Options{
			// タイトルバーの変更は起動時フックが担当する
			TitleBar: mac.TitleBarDefault(),
		},
		SingleInstanceLock: &options.SingleInstanceLock{
			UniqueId: "repo-analyzer-instance-lock",
			OnSecondInstanceLaunch: func(secondInstanceData options.SecondInstanceData) {
				app.BringToFront()
			},
		},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}
