package main

import (
	"embed"
	"os"
	"path/filepath"
	"runtime"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
)

//go:embed all:frontend/dist
var assets embed.FS

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg := DefaultConfig()
	if path, err := ConfigPath(); err == nil {
		loaded, err := LoadConfig(path)
		if err != nil {
			println("Config error:", err.Error())
		} else {
			cfg = loaded
		}
	}

	appDataPath := ""
	if dir, err := os.UserConfigDir(); err == nil {
		appDataPath = filepath.Join(dir, appName)
	}
	if err := InitLogger(cfg.LogConfig(appDataPath)); err != nil {
		println("Logger error:", err.Error())
	}
	defer CloseLogger()

	// Create an instance of the app structure
	app := NewApp(version, cfg)

	var applicationMenu *menu.Menu
	if runtime.GOOS == "darwin" {
		applicationMenu = menu.NewMenu()
		applicationMenu.Append(menu.AppMenu())
		applicationMenu.Append(menu.EditMenu())
		applicationMenu.Append(menu.WindowMenu())
	}

	err := wails.Run(&options.App{
		Title:     "A.S.C.E.N.D.",
		Width:     1280,
		Height:    800,
		MinWidth:  1024,
		MinHeight: 700,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Menu:             applicationMenu,
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        app.startup,
		OnShutdown:       app.Shutdown,
		WindowStartState: options.Normal,
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: true,
				HideTitle:                  false,
				HideTitleBar:               false,
				FullSizeContent:            true,
				UseToolbar:                 false,
				HideToolbarSeparator:       true,
			},
			Appearance:           mac.NSAppearanceNameDarkAqua,
			WebviewIsTransparent: true,
			WindowIsTranslucent:  true,
			About: &mac.AboutInfo{
				Title:   "A.S.C.E.N.D.",
				Message: "Android device manager and debloater",
			},
		},
		Bind: []interface{}{
			app,
		},
	})

	if err != nil {
		LogError("app").Err(err).Msg("Wails exited with error")
	}
}
