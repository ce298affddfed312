package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/lawnwars/pkg/app"
)

var (
	levelFlag   = flag.String("level", "", "要加载的关卡 ID（默认 first_day）")
	assetsFlag  = flag.String("assets", "assets", "配置资源目录")
	verboseFlag = flag.Bool("verbose", false, "启用详细日志")
)

func main() {
	flag.Parse()

	a, err := app.NewApp(app.Config{
		Verbose:   *verboseFlag,
		Level:     *levelFlag,
		AssetsDir: *assetsFlag,
	})
	if err != nil {
		log.Fatalf("启动失败: %v", err)
	}

	ebiten.SetWindowSize(app.GameWindowWidth, app.GameWindowHeight)
	ebiten.SetWindowTitle("草坪保卫战")
	if a.Settings().GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	if err := ebiten.RunGame(a); err != nil {
		log.Fatal(err)
	}
}
