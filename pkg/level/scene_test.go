package level

import (
	"math/rand"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/lawnwars/pkg/character"
	"github.com/gonewx/lawnwars/pkg/config"
	"github.com/gonewx/lawnwars/pkg/events"
	"github.com/gonewx/lawnwars/pkg/game"
	"github.com/gonewx/lawnwars/pkg/geom"
	"github.com/gonewx/lawnwars/pkg/grid"
)

// testLevelConfig 2 行 3 列的测试关卡，行中心 x 为 100/300/500
func testLevelConfig() *config.LevelConfig {
	var cells []config.CellConfig
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			cells = append(cells, config.CellConfig{
				Row: r, Column: c,
				X: 100 + float64(c)*200, Y: 100 + float64(r)*120,
				Width: 80, Height: 100, Type: "ground",
			})
		}
	}
	return &config.LevelConfig{
		ID: "test_level", Name: "Test", Timeline: "timeline.json",
		Rows: 2, Columns: 3, Cells: cells, SpawnMargin: 100,
	}
}

func testRegistry(t testing.TB) *character.Registry {
	reg := character.NewRegistry()
	reg.RegisterZombie("zombie_basic", func() (*character.Zombie, error) {
		return newTestZombie(t, "zombie_basic"), nil
	})
	return reg
}

// newTestScene 构建关卡场景与其事件总线
func newTestScene(t *testing.T, timelineJSON string) (*LevelScene, *events.Bus) {
	t.Helper()
	tl, err := ParseTimeline([]byte(timelineJSON))
	if err != nil {
		t.Fatal(err)
	}
	bus := events.NewBus()
	s, err := NewLevelScene(testLevelConfig(), tl, SceneDeps{
		Bus:      bus,
		Registry: testRegistry(t),
		Rng:      rand.New(rand.NewSource(1)),
	})
	if err != nil {
		t.Fatalf("NewLevelScene failed: %v", err)
	}
	return s, bus
}

const idleTimelineJSON = `{
  "waves": [{"time": 0, "spawn_interval": 1000, "zombies": [{"type": "zombie_basic", "frequency": 1}]}],
  "duration": 10000
}`

// TestNewLevelScene_InvalidGrid 测试行中心不严格递增时构造失败
func TestNewLevelScene_InvalidGrid(t *testing.T) {
	cfg := testLevelConfig()
	cfg.Cells[1].X = cfg.Cells[0].X // 同一行两个相同的中心 x
	tl, err := ParseTimeline([]byte(idleTimelineJSON))
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewLevelScene(cfg, tl, SceneDeps{
		Bus: events.NewBus(), Registry: testRegistry(t), Rng: rand.New(rand.NewSource(1)),
	})
	if err == nil {
		t.Fatal("grid with non-increasing x-centers must fail construction")
	}
}

// TestLevelScene_AddZombieFromStart 测试入场摆放规则
func TestLevelScene_AddZombieFromStart(t *testing.T) {
	s, _ := newTestScene(t, idleTimelineJSON)

	cfg := &config.ZombieConfig{
		ID: "zombie_basic", MinHealth: 100, MaxHealth: 100, Speed: 23,
		AnchorOffsetY: 20, InitState: character.ZombieWalk,
		Animations: map[string][]config.AnimationClip{
			character.ZombieWalk:   {{Name: "walk", Type: "loop"}},
			character.ZombieAttack: {{Name: "attack", Type: "loop"}},
			character.ZombieDying:  {{Name: "dying", Type: "once"}},
		},
	}
	z, err := character.NewZombie(cfg, &character.NopAnimator{}, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}

	s.AddZombieFromStart(z, 1)
	// 第 1 行行尾单元格中心 (500, 220)，入场边距 100，锚点偏移 20
	want := geom.Vec{X: 600, Y: 200}
	if z.Pos() != want {
		t.Errorf("spawn position = %+v, want %+v", z.Pos(), want)
	}
	if z.Row != 1 {
		t.Errorf("zombie row = %d, want 1", z.Row)
	}
	if len(s.Zombies()) != 1 {
		t.Errorf("scene should track the zombie")
	}
}

// TestLevelScene_IntroFlowAndStartFight 测试开场镜头脚本与战斗开始
func TestLevelScene_IntroFlowAndStartFight(t *testing.T) {
	s, bus := newTestScene(t, idleTimelineJSON)
	sm := game.NewSceneManager()
	sm.PushScene(s)

	if s.StateName() != StateSelectPlant {
		t.Fatalf("level should begin in select_plant, got %q", s.StateName())
	}
	if !s.Camera().IsAnimating() {
		t.Error("intro should start the camera pan")
	}

	// 走完镜头展示与回位，流程在战斗门处挂起
	s.Update(cameraPanDuration + introHoldDuration)
	s.Update(cameraPanDuration)
	if !s.Flow().IsPaused() {
		t.Fatal("flow should be paused waiting for the fight to start")
	}

	bus.Publish(&events.StartFightEvent{})
	if s.StateName() != StateProgress {
		t.Fatalf("StartFightEvent should move the level to progress, got %q", s.StateName())
	}
	s.Update(16)
	if s.Flow().IsRunning() {
		t.Error("flow should finish once the fight begins")
	}
}

// TestLevelScene_SchedulerGating 测试调度仅在 progress 状态运转
func TestLevelScene_SchedulerGating(t *testing.T) {
	s, bus := newTestScene(t, idleTimelineJSON)
	sm := game.NewSceneManager()
	sm.PushScene(s)

	for i := 0; i < 5; i++ {
		s.Update(1000)
	}
	if len(s.Zombies()) != 0 {
		t.Fatalf("no spawns before the fight starts, got %d", len(s.Zombies()))
	}

	bus.Publish(&events.StartFightEvent{})
	for i := 0; i < 3; i++ {
		s.Update(1000)
	}
	if len(s.Zombies()) == 0 {
		t.Error("scheduler should spawn zombies during progress")
	}
}

// TestLevelScene_PlantingFlow 测试种植交互链路：事件、悬停、落子
func TestLevelScene_PlantingFlow(t *testing.T) {
	s, bus := newTestScene(t, idleTimelineJSON)
	sm := game.NewSceneManager()
	sm.PushScene(s)

	p := newTestPlant(t)
	bus.Publish(&events.StartPlantEvent{Plant: p})
	if !s.Interaction().IsPlanting() || !s.Grid().IsSelecting() {
		t.Fatal("StartPlantEvent should enter planting and start grid selecting")
	}

	// 指针移到 (1,1) 单元格中心
	motion := &events.MouseMotionEvent{}
	motion.Pos = geom.Vec{X: 300, Y: 220}
	bus.Publish(motion)
	hovered := s.Grid().HoveredCell()
	if hovered == nil || hovered.Row != 1 || hovered.Col != 1 {
		t.Fatalf("expected hover on cell (1,1), got %+v", hovered)
	}

	click := &events.ClickEvent{}
	click.Pos = geom.Vec{X: 300, Y: 220}
	bus.Publish(click)

	if len(s.Plants()) != 1 {
		t.Fatalf("click should place the plant, got %d", len(s.Plants()))
	}
	if p.Row != 1 || p.Col != 1 || p.Pos() != (geom.Vec{X: 300, Y: 220}) {
		t.Errorf("plant not placed at the hovered cell: row=%d col=%d pos=%+v", p.Row, p.Col, p.Pos())
	}
	if s.Interaction().Mode() != ModeNormal {
		t.Errorf("placement should exit planting, got %q", s.Interaction().Mode())
	}
	if s.Grid().IsSelecting() {
		t.Error("placement should stop grid selecting")
	}
	if cell := s.Grid().Cell(1, 1); cell.IsEmpty() {
		t.Error("plant should occupy the cell")
	}
}

// TestLevelScene_ShovelFlow 测试铲除交互链路
func TestLevelScene_ShovelFlow(t *testing.T) {
	s, bus := newTestScene(t, idleTimelineJSON)
	sm := game.NewSceneManager()
	sm.PushScene(s)

	p := newTestPlant(t)
	s.AddPlant(p, s.Grid().Cell(0, 0))

	bus.Publish(&events.StartShovelingEvent{})
	if !s.Interaction().IsShoveling() {
		t.Fatal("StartShovelingEvent should enter shoveling")
	}

	motion := &events.MouseMotionEvent{}
	motion.Pos = geom.Vec{X: 100, Y: 100}
	bus.Publish(motion)
	click := &events.ClickEvent{}
	click.Pos = geom.Vec{X: 100, Y: 100}
	bus.Publish(click)

	if len(s.Plants()) != 0 {
		t.Errorf("shovel should remove the plant, got %d", len(s.Plants()))
	}
	if !s.Grid().Cell(0, 0).IsEmpty() {
		t.Error("cell should be empty after shoveling")
	}
	if s.Interaction().Mode() != ModeNormal {
		t.Errorf("shoveling should end after the click, got %q", s.Interaction().Mode())
	}
}

// TestLevelScene_BulletHitsZombie 测试豌豆子弹命中同行僵尸
func TestLevelScene_BulletHitsZombie(t *testing.T) {
	s, _ := newTestScene(t, idleTimelineJSON)

	shooter := &character.IntervalShooter{Interval: 1000, Damage: 20, BulletSpeed: 300, ShotRange: 800}
	cfg := &config.PlantConfig{
		ID: "peashooter", Health: 300, Damage: 20, AttackInterval: 1000, Range: 800,
		Animations: map[string][]config.AnimationClip{
			character.PlantInInterval: {{Name: "idle", Type: "loop"}},
			character.PlantAttack:     {{Name: "attack", Type: "once"}},
			character.PlantHurt:       {{Name: "hurt", Type: "once"}},
		},
	}
	p, err := character.NewPlant(cfg, &character.NopAnimator{FinishAfter: 100}, character.WithShooter(shooter))
	if err != nil {
		t.Fatal(err)
	}
	shooter.Origin = p.Pos
	s.AddPlant(p, s.Grid().Cell(0, 0))

	z := newTestZombie(t, "zombie_basic")
	s.AddZombieFromStart(z, 0)
	startHealth := z.Health

	for i := 0; i < 40 && z.Health == startHealth; i++ {
		s.Update(100)
	}
	if z.Health >= startHealth {
		t.Errorf("zombie should have been hit, health %f", z.Health)
	}
}

// TestLevelScene_CherryBombDetonation 测试樱桃炸弹引信到时引爆半径内僵尸
func TestLevelScene_CherryBombDetonation(t *testing.T) {
	s, _ := newTestScene(t, idleTimelineJSON)

	cfg := &config.PlantConfig{
		ID: "cherry_bomb", Health: 300, Damage: 1800, Range: 120, Consumable: true,
		Animations: map[string][]config.AnimationClip{
			character.PlantReady: {{Name: "idle", Type: "loop"}},
			character.PlantUsed:  {{Name: "boom", Type: "once"}},
		},
	}
	bomb, err := character.NewPlant(cfg, &character.NopAnimator{},
		character.WithStateMachine(character.BuildConsumableMachine),
		character.WithTimedAction(&character.FuseAction{Delay: 1000}))
	if err != nil {
		t.Fatal(err)
	}
	s.AddPlant(bomb, s.Grid().Cell(0, 0))

	near := newTestZombie(t, "zombie_basic")
	s.AddZombieFromStart(near, 0)
	near.SetPos(geom.Vec{X: 150, Y: 100})
	far := newTestZombie(t, "zombie_basic")
	s.AddZombieFromStart(far, 0)

	// 引信未到时：炸弹待命，僵尸无伤
	for i := 0; i < 6; i++ {
		s.Update(100)
	}
	if bomb.State() != character.PlantReady {
		t.Fatalf("bomb should stay ready before the fuse, got %q", bomb.State())
	}
	if !near.Alive() {
		t.Fatal("zombie must be unharmed before detonation")
	}

	for i := 0; i < 6; i++ {
		s.Update(100)
	}
	if near.Alive() || near.State() != character.ZombieDying {
		t.Errorf("zombie in blast radius should be boom-dying, health=%f state=%q", near.Health, near.State())
	}
	if !far.Alive() {
		t.Error("zombie outside the blast radius must survive")
	}
	if !bomb.Used() {
		t.Error("detonation should consume the bomb")
	}
	if len(s.Plants()) != 0 {
		t.Errorf("bomb should leave the field after exploding, got %d plants", len(s.Plants()))
	}
	if !s.Grid().Cell(0, 0).IsEmpty() {
		t.Error("cell should be free after the bomb explodes")
	}
}

// TestLevelScene_EnterKeyStartsFight 测试回车键作为开战的键盘入口
func TestLevelScene_EnterKeyStartsFight(t *testing.T) {
	s, bus := newTestScene(t, idleTimelineJSON)
	sm := game.NewSceneManager()
	sm.PushScene(s)

	bus.Publish(&events.KeyDownEvent{Key: int(ebiten.KeyEnter)})
	if s.StateName() != StateProgress {
		t.Fatalf("Enter should start the fight from select_plant, got %q", s.StateName())
	}

	// 战斗中再按回车不再产生状态切换
	bus.Publish(&events.KeyDownEvent{Key: int(ebiten.KeyEnter)})
	if s.StateName() != StateProgress {
		t.Errorf("repeated Enter must be a no-op, got %q", s.StateName())
	}
}

// TestLevelScene_HoverEventOnCellChange 测试悬停单元格变化时发布 HoverEvent
func TestLevelScene_HoverEventOnCellChange(t *testing.T) {
	s, bus := newTestScene(t, idleTimelineJSON)
	sm := game.NewSceneManager()
	sm.PushScene(s)

	var hovers []*events.HoverEvent
	bus.Subscribe(events.KindHover, func(e events.Event) {
		hovers = append(hovers, e.(*events.HoverEvent))
	}, 0, false)

	bus.Publish(&events.StartPlantEvent{Plant: newTestPlant(t)})
	motion := &events.MouseMotionEvent{}
	motion.Pos = geom.Vec{X: 300, Y: 220}
	bus.Publish(motion)

	if len(hovers) != 1 {
		t.Fatalf("expected one hover event, got %d", len(hovers))
	}
	cell, ok := hovers[0].Target.(*grid.Cell)
	if !ok || cell.Row != 1 || cell.Col != 1 {
		t.Errorf("hover target should be cell (1,1), got %+v", hovers[0].Target)
	}

	// 同一单元格内移动不重复发布
	motion = &events.MouseMotionEvent{}
	motion.Pos = geom.Vec{X: 310, Y: 225}
	bus.Publish(motion)
	if len(hovers) != 1 {
		t.Errorf("hover should fire only on cell change, got %d events", len(hovers))
	}
}

// TestLevelScene_WinTransition 测试时间线走完且无存活僵尸时关卡结束
func TestLevelScene_WinTransition(t *testing.T) {
	// 权重为零的僵尸池不会产生任何生成
	s, bus := newTestScene(t, `{
		"waves": [{"time": 0, "zombies": [{"type": "zombie_basic", "frequency": 0}]}],
		"duration": 2000
	}`)
	sm := game.NewSceneManager()
	sm.PushScene(s)

	var nextLevel string
	bus.Subscribe(events.KindNextLevel, func(e events.Event) {
		nextLevel = e.(*events.NextLevelEvent).LevelID
	}, 0, false)

	bus.Publish(&events.StartFightEvent{})
	s.Update(2000)
	s.Update(16)

	if s.StateName() != StateEnd {
		t.Fatalf("level should end after the timeline with no zombies, got %q", s.StateName())
	}
	if nextLevel != "test_level" {
		t.Errorf("win should publish NextLevelEvent for %q, got %q", "test_level", nextLevel)
	}
}

// TestLevelScene_Detach 测试出栈后不再响应事件
func TestLevelScene_Detach(t *testing.T) {
	s, bus := newTestScene(t, idleTimelineJSON)
	sm := game.NewSceneManager()
	sm.PushScene(s)
	sm.PopScene()

	bus.Publish(&events.StartFightEvent{})
	if s.StateName() != StateSelectPlant {
		t.Errorf("detached scene must not react to events, got %q", s.StateName())
	}
	if s.Flow().IsRunning() {
		t.Error("detached scene flow should be cleared")
	}
}
