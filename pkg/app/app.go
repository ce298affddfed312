// Package app 提供游戏应用的核心包装器
//
// 该包将引导逻辑从 main 包提取出来：装配事件总线、角色配置与
// 工厂、设置管理器和场景管理器，并实现 ebiten.Game 接口驱动
// 模拟循环。
package app

import (
	"fmt"
	"io"
	"log"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/gonewx/lawnwars/pkg/character"
	"github.com/gonewx/lawnwars/pkg/config"
	"github.com/gonewx/lawnwars/pkg/events"
	"github.com/gonewx/lawnwars/pkg/game"
	"github.com/gonewx/lawnwars/pkg/level"
)

// 逻辑屏幕尺寸，实际窗口缩放由 Ebitengine 处理
const (
	GameWindowWidth  = 800
	GameWindowHeight = 600
)

// 每个 tick 的模拟步长（毫秒），Ebitengine 默认 60 TPS
const tickDeltaMs = 1000.0 / 60.0

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Level 要加载的关卡 ID，为空则使用默认关卡
	Level string
	// AssetsDir 配置资源目录（角色配置与关卡配置）
	AssetsDir string
}

// App 是游戏应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	bus          *events.Bus
	sceneManager *game.SceneManager
	settings     *game.SettingsManager
	input        *InputTranslator
	verbose      bool
}

// NewApp 创建并初始化游戏应用
func NewApp(cfg Config) (*App, error) {
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	if cfg.AssetsDir == "" {
		cfg.AssetsDir = "assets"
	}
	if cfg.Level == "" {
		cfg.Level = "first_day"
	}

	// 跨平台设置存储，打开失败时降级为仅内存
	gdataManager, err := gdata.Open(gdata.Config{AppName: "lawnwars"})
	if err != nil {
		log.Printf("[App] Warning: gdata unavailable: %v (settings won't persist)", err)
		gdataManager = nil
	}
	settings := game.NewSettingsManager(gdataManager)

	bus := events.NewBus()

	configs, err := loadCharacterConfigs(cfg.AssetsDir)
	if err != nil {
		return nil, fmt.Errorf("角色配置加载失败: %w", err)
	}

	registry := character.NewRegistry()
	deps := &character.BuiltinDeps{
		Configs: configs,
		Rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := character.RegisterBuiltins(registry, deps); err != nil {
		return nil, fmt.Errorf("角色注册失败: %w", err)
	}

	sceneManager := game.NewSceneManager()
	sceneManager.SetSceneFactory(func(levelID string) (game.Scene, error) {
		path := filepath.Join(cfg.AssetsDir, "levels", levelID, "level.yaml")
		return level.LoadLevelScene(path, level.SceneDeps{
			Bus:      bus,
			Registry: registry,
			Rng:      deps.Rng,
		})
	})

	// 关卡胜利后切换到下一关
	bus.Subscribe(events.KindNextLevel, func(e events.Event) {
		ev := e.(*events.NextLevelEvent)
		log.Printf("[App] 关卡完成: %s", ev.LevelID)
	}, 0, false)

	sceneManager.LoadLevel(cfg.Level)
	if sceneManager.CurrentScene() == nil {
		return nil, fmt.Errorf("无法加载关卡 %q", cfg.Level)
	}

	return &App{
		bus:          bus,
		sceneManager: sceneManager,
		settings:     settings,
		input:        NewInputTranslator(bus),
		verbose:      cfg.Verbose,
	}, nil
}

// loadCharacterConfigs 加载资源目录下的全部角色配置
func loadCharacterConfigs(assetsDir string) (*config.Manager, error) {
	m := config.NewManager()
	kinds := []struct {
		kind config.Kind
		glob string
	}{
		{config.KindZombie, filepath.Join(assetsDir, "zombies", "*.yaml")},
		{config.KindPlant, filepath.Join(assetsDir, "plants", "*.yaml")},
	}
	for _, k := range kinds {
		paths, err := filepath.Glob(k.glob)
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			if err := m.Load(k.kind, path); err != nil {
				return nil, err
			}
			log.Printf("[App] 加载角色配置: %s", path)
		}
	}
	return m, nil
}

// Update 更新游戏逻辑，每个 tick 调用一次
func (a *App) Update() error {
	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		full := !ebiten.IsFullscreen()
		ebiten.SetFullscreen(full)
		a.settings.SetFullscreen(full)
		if err := a.settings.Save(); err != nil {
			log.Printf("[App] 设置保存失败: %v", err)
		}
	}

	a.input.Poll()
	a.sceneManager.Update(tickDeltaMs)
	return nil
}

// Draw 绘制游戏画面，每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
	if a.settings.GetSettings().ShowFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.0f TPS: %.0f",
			ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

// Layout 返回游戏的逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return GameWindowWidth, GameWindowHeight
}

// Bus 返回事件总线，供外层（如调试工具）发布事件
func (a *App) Bus() *events.Bus { return a.bus }

// SceneManager 返回场景管理器
func (a *App) SceneManager() *game.SceneManager { return a.sceneManager }

// Settings 返回设置管理器
func (a *App) Settings() *game.SettingsManager { return a.settings }
