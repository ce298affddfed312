package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents a game scene (e.g., main menu, gameplay, pause menu).
// Each scene has its own update and rendering logic.
type Scene interface {
	// Update updates the scene logic based on the elapsed time.
	// deltaTime is the time elapsed since the last update in milliseconds.
	Update(deltaTime float64)

	// Draw renders the scene to the provided screen.
	Draw(screen *ebiten.Image)

	// SetupScene 场景入栈时调用，用于订阅事件、启动流程
	SetupScene(manager *SceneManager)

	// DetachScene 场景出栈时调用，用于退订事件、释放资源
	DetachScene()
}
