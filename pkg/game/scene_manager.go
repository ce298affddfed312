package game

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

// SceneFactory 场景工厂函数类型
// 用于创建指定ID的关卡场景，避免循环依赖
type SceneFactory func(levelID string) (Scene, error)

// SceneManager 管理场景栈，只有栈顶场景接收 Update 和 Draw。
// 入栈触发 SetupScene，出栈触发 DetachScene。
type SceneManager struct {
	scenes       []Scene
	sceneFactory SceneFactory
}

// NewSceneManager creates and returns a new SceneManager instance.
// The manager starts with an empty stack; use PushScene to set the initial scene.
func NewSceneManager() *SceneManager {
	return &SceneManager{}
}

// SetSceneFactory 设置场景工厂函数
func (sm *SceneManager) SetSceneFactory(factory SceneFactory) {
	sm.sceneFactory = factory
}

// PushScene 将场景压入栈顶并激活
func (sm *SceneManager) PushScene(scene Scene) {
	sm.scenes = append(sm.scenes, scene)
	scene.SetupScene(sm)
}

// PopScene 弹出栈顶场景并触发其 DetachScene
//
// 栈为空时是无害的空操作。
func (sm *SceneManager) PopScene() {
	if len(sm.scenes) == 0 {
		return
	}
	top := sm.scenes[len(sm.scenes)-1]
	sm.scenes = sm.scenes[:len(sm.scenes)-1]
	top.DetachScene()
}

// ReplaceScene 用新场景替换栈顶场景
func (sm *SceneManager) ReplaceScene(scene Scene) {
	sm.PopScene()
	sm.PushScene(scene)
}

// CurrentScene 返回栈顶场景，栈为空时返回 nil
func (sm *SceneManager) CurrentScene() Scene {
	if len(sm.scenes) == 0 {
		return nil
	}
	return sm.scenes[len(sm.scenes)-1]
}

// LoadLevel 通过工厂创建关卡场景并替换当前场景
// levelID: 关卡ID，如 "first_day"
func (sm *SceneManager) LoadLevel(levelID string) {
	log.Printf("[SceneManager] 加载关卡: %s", levelID)

	if sm.sceneFactory == nil {
		log.Printf("[SceneManager] 错误: SceneFactory 未设置")
		return
	}

	newScene, err := sm.sceneFactory(levelID)
	if err != nil {
		log.Printf("[SceneManager] 错误: 无法创建关卡场景 %s: %v", levelID, err)
		return
	}
	sm.ReplaceScene(newScene)
	log.Printf("[SceneManager] 成功切换到关卡: %s", levelID)
}

// Update updates the currently active scene.
// deltaTime is the time elapsed since the last update in milliseconds.
func (sm *SceneManager) Update(deltaTime float64) {
	if scene := sm.CurrentScene(); scene != nil {
		scene.Update(deltaTime)
	}
}

// Draw renders the currently active scene to the provided screen.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if scene := sm.CurrentScene(); scene != nil {
		scene.Draw(screen)
	}
}
