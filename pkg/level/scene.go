package level

import (
	"fmt"
	"log"
	"math/rand"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/gonewx/lawnwars/pkg/character"
	"github.com/gonewx/lawnwars/pkg/config"
	"github.com/gonewx/lawnwars/pkg/events"
	"github.com/gonewx/lawnwars/pkg/flow"
	"github.com/gonewx/lawnwars/pkg/fsm"
	"github.com/gonewx/lawnwars/pkg/game"
	"github.com/gonewx/lawnwars/pkg/geom"
	"github.com/gonewx/lawnwars/pkg/grid"
)

// 关卡状态名
const (
	StateBeforeStart = "before_start"
	StateSelectPlant = "select_plant"
	StateProgress    = "progress"
	StateEnd         = "end"
)

const (
	initialSun = 50

	cameraPanDuration = 1000.0 // 开场镜头平移时长（毫秒）
	introHoldDuration = 4000.0 // 展示僵尸入场线的停留时长（毫秒）

	zombieMeleeReach = 30.0 // 僵尸啃食判定距离（像素）
	zombieMeleeDPS   = 66.0 // 啃食伤害（每秒）
	bulletHitRadius  = 10.0 // 子弹命中判定半径（像素）
)

// SceneDeps 关卡场景的外部依赖
type SceneDeps struct {
	Bus      *events.Bus
	Registry *character.Registry
	Rng      *rand.Rand
}

// boundSub 已订阅的事件句柄，用于 DetachScene 时退订
type boundSub struct {
	kind events.Kind
	sub  *events.Subscription
}

// LevelScene 关卡场景
//
// 持有网格、波次调度器、关卡流程和全部出场实体，每帧由场景管理器
// 调用 Update 推进。事件订阅在 SetupScene 建立、DetachScene 解除。
type LevelScene struct {
	cfg  *config.LevelConfig
	deps SceneDeps

	grid        *grid.Grid
	camera      *game.Camera
	scheduler   *WaveScheduler
	flow        *flow.Controller
	state       *fsm.StateMachine
	interaction *Interaction

	zombies []*character.Zombie
	plants  []*character.Plant
	bullets []*character.Bullet

	// Sun 阳光计数，UI 部件通过监听获知变化
	Sun *game.ListenableValue[int]

	manager *game.SceneManager
	subs    []boundSub

	spawnLine geom.Vec // 僵尸入场线（仅 x 有效）
}

// LoadLevelScene 从关卡配置文件构建场景
//
// 时间线路径相对配置文件所在目录解析。
func LoadLevelScene(path string, deps SceneDeps) (*LevelScene, error) {
	cfg, err := config.LoadLevelConfig(path)
	if err != nil {
		return nil, err
	}
	tl, err := LoadTimeline(filepath.Join(filepath.Dir(path), cfg.Timeline))
	if err != nil {
		return nil, err
	}
	return NewLevelScene(cfg, tl, deps)
}

// NewLevelScene 按配置与时间线构建关卡场景
//
// 配置错误（网格行中心不严格递增等）在此处失败，不做部分恢复。
func NewLevelScene(cfg *config.LevelConfig, tl *Timeline, deps SceneDeps) (*LevelScene, error) {
	s := &LevelScene{
		cfg:         cfg,
		deps:        deps,
		camera:      game.NewCamera(),
		interaction: NewInteraction(),
		Sun:         game.NewListenableValue(initialSun),
	}

	g, err := buildGrid(cfg)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", cfg.ID, err)
	}
	s.grid = g
	s.spawnLine = s.computeSpawnLine()

	s.scheduler = NewWaveScheduler(tl, deps.Registry.CreateZombie, deps.Rng)
	s.scheduler.SetAliveZombieCountGetter(s.aliveZombieCount)

	s.state = s.buildLevelState()
	if err := s.state.SetInitialState(StateSelectPlant); err != nil {
		return nil, fmt.Errorf("level %s: %w", cfg.ID, err)
	}

	s.flow = flow.NewController()
	s.buildIntroFlow()
	return s, nil
}

// buildGrid 将关卡配置中的单元格布局装配成网格
func buildGrid(cfg *config.LevelConfig) (*grid.Grid, error) {
	matrix := make([][]*grid.Cell, cfg.Rows)
	for r := range matrix {
		matrix[r] = make([]*grid.Cell, cfg.Columns)
	}
	for _, c := range cfg.Cells {
		matrix[c.Row][c.Column] = &grid.Cell{
			Row:             c.Row,
			Col:             c.Column,
			Center:          geom.Vec{X: c.X, Y: c.Y},
			Size:            geom.Vec{X: c.Width, Y: c.Height},
			Type:            c.Type,
			HighlightOffset: geom.Vec{X: c.HighlightOffsetX, Y: c.HighlightOffsetY},
		}
	}
	return grid.NewGrid(matrix)
}

// computeSpawnLine 计算僵尸入场线：最右侧单元格中心加上入场边距
func (s *LevelScene) computeSpawnLine() geom.Vec {
	var right float64
	for r := 0; r < s.grid.Rows(); r++ {
		for _, cell := range s.grid.Row(r) {
			if cell != nil && cell.Center.X > right {
				right = cell.Center.X
			}
		}
	}
	return geom.Vec{X: right + s.cfg.SpawnMargin}
}

// buildLevelState 构造关卡状态机
//
// 出边表：
//
//	select_plant -> progress
//	before_start -> progress, end
//	progress     -> end
//	end          -> （终态）
func (s *LevelScene) buildLevelState() *fsm.StateMachine {
	m := fsm.NewStateMachine()

	selectPlant := fsm.NewState(StateSelectPlant)
	selectPlant.OnEnter = func(*fsm.State) {
		log.Printf("[LevelScene] %s: 进入出战植物选择", s.cfg.ID)
	}
	selectPlant.OnExit = func(*fsm.State) {
		log.Printf("[LevelScene] %s: 出战植物选择完成", s.cfg.ID)
	}

	progress := fsm.NewState(StateProgress)
	progress.OnEnter = func(*fsm.State) {
		log.Printf("[LevelScene] %s: 战斗开始", s.cfg.ID)
	}

	end := fsm.NewState(StateEnd)
	end.OnEnter = func(*fsm.State) {
		log.Printf("[LevelScene] %s: 关卡结束", s.cfg.ID)
	}

	m.AddState(selectPlant, StateProgress)
	m.AddState(fsm.NewState(StateBeforeStart), StateProgress, StateEnd)
	m.AddState(progress, StateEnd)
	m.AddState(end)
	return m
}

// buildIntroFlow 构造开场镜头脚本
//
// 镜头平移到僵尸入场线展示一段时间，再回到起点，之后暂停等待玩家
// 完成出战植物选择（StartFightEvent 恢复）。
func (s *LevelScene) buildIntroFlow() {
	s.flow.AddPart(flow.Do(func() {
		s.camera.AnimateTo(s.spawnLine, cameraPanDuration)
	}))
	s.flow.AddPart(flow.Wait(cameraPanDuration + introHoldDuration))
	s.flow.AddPart(flow.Do(func() {
		s.camera.AnimateTo(geom.Vec{}, cameraPanDuration)
	}))
	s.flow.AddPart(flow.Func(func(dt float64) bool {
		// 镜头归位后挂起，等待战斗开始
		if s.state.State() != StateProgress {
			s.flow.Pause()
			return false
		}
		return true
	}))
}

// SetupScene 订阅事件并启动开场流程
func (s *LevelScene) SetupScene(manager *game.SceneManager) {
	s.manager = manager
	s.subscribe(events.KindStartPlant, s.onStartPlant)
	s.subscribe(events.KindStopPlant, s.onStopPlant)
	s.subscribe(events.KindStartShoveling, s.onStartShoveling)
	s.subscribe(events.KindEndShoveling, s.onEndShoveling)
	s.subscribe(events.KindMouseMotion, s.onMouseMotion)
	s.subscribe(events.KindClick, s.onClick)
	s.subscribe(events.KindWillSpawnZombie, s.onWillSpawnZombie)
	s.subscribe(events.KindButtonClick, s.onButtonClick)
	s.subscribe(events.KindStartFight, s.onStartFight)
	s.subscribe(events.KindSunCollect, s.onSunCollect)
	s.subscribe(events.KindKeyDown, s.onKeyDown)
	s.flow.Start()
}

// DetachScene 退订事件并清空流程
func (s *LevelScene) DetachScene() {
	for _, b := range s.subs {
		s.deps.Bus.Unsubscribe(b.kind, b.sub)
	}
	s.subs = nil
	s.flow.ResetAndClear()
}

func (s *LevelScene) subscribe(kind events.Kind, handler events.Handler) {
	sub := s.deps.Bus.Subscribe(kind, handler, 0, false)
	s.subs = append(s.subs, boundSub{kind: kind, sub: sub})
}

// Update 推进关卡一帧，dt 为毫秒
func (s *LevelScene) Update(dt float64) {
	s.flow.Update(dt)
	s.camera.Update(dt)

	s.updatePlants(dt)
	s.updateZombies(dt)
	s.updateBullets(dt)

	if s.state.State() == StateProgress {
		s.updateScheduler(dt)
		s.checkWin()
	}
}

// Draw 绘制关卡
//
// 实体绘制由渲染协作者基于各实体的位置与动画状态完成，场景本身
// 不产生绘制调用。
func (s *LevelScene) Draw(screen *ebiten.Image) {}

func (s *LevelScene) updateScheduler(dt float64) {
	z, err := s.scheduler.UpdateAndGen(dt)
	if err != nil {
		log.Printf("[LevelScene] %s: 生成僵尸失败: %v", s.cfg.ID, err)
		return
	}
	if z != nil {
		s.AddZombieFromStart(z, s.deps.Rng.Intn(s.grid.Rows()))
	}
}

func (s *LevelScene) updatePlants(dt float64) {
	alive := s.plants[:0]
	for _, p := range s.plants {
		shots := p.Update(dt)
		s.bullets = append(s.bullets, shots...)
		if p.Alive() {
			alive = append(alive, p)
			continue
		}
		if cell := s.grid.Cell(p.Row, p.Col); cell != nil {
			cell.Remove(p)
		}
	}
	s.plants = alive
}

func (s *LevelScene) updateZombies(dt float64) {
	remain := s.zombies[:0]
	for _, z := range s.zombies {
		s.resolveMelee(dt, z)
		if err := z.Update(dt, s.grid.Lane(z.Row)); err != nil {
			// 无法定位僵尸在行内的位置，该实体不能继续模拟
			log.Printf("[LevelScene] %s: %v", s.cfg.ID, err)
			continue
		}
		if !z.Expired() {
			remain = append(remain, z)
		}
	}
	s.zombies = remain
}

// resolveMelee 处理僵尸与同行植物的近身啃食
func (s *LevelScene) resolveMelee(dt float64, z *character.Zombie) {
	if !z.Alive() {
		return
	}
	target := s.frontPlantNear(z)
	if target != nil {
		switch z.State() {
		case character.ZombieAttack, character.ZombieAttackWithBucket:
		case character.ZombieWalkWithBucket:
			z.Machine().TransitionTo(character.ZombieAttackWithBucket)
		default:
			z.Attack()
		}
		target.TakeDamage(zombieMeleeDPS * dt / 1000)
		return
	}
	switch z.State() {
	case character.ZombieAttack:
		z.Walk()
	case character.ZombieAttackWithBucket:
		z.Machine().TransitionTo(character.ZombieWalkWithBucket)
	}
}

// frontPlantNear 返回僵尸啃食范围内同行最近的植物
func (s *LevelScene) frontPlantNear(z *character.Zombie) *character.Plant {
	var best *character.Plant
	for _, p := range s.plants {
		if p.Row != z.Row || !p.Alive() {
			continue
		}
		dx := z.Pos().X - p.Pos().X
		if dx >= 0 && dx <= zombieMeleeReach {
			if best == nil || p.Pos().X > best.Pos().X {
				best = p
			}
		}
	}
	return best
}

func (s *LevelScene) updateBullets(dt float64) {
	remain := s.bullets[:0]
	for _, b := range s.bullets {
		b.Update(dt)
		if s.resolveHit(b) {
			continue
		}
		// 飞出场外的子弹直接丢弃
		if b.Pos.X > s.spawnLine.X+s.cfg.SpawnMargin {
			continue
		}
		remain = append(remain, b)
	}
	s.bullets = remain
}

// resolveHit 判定子弹命中，命中即消耗子弹
func (s *LevelScene) resolveHit(b *character.Bullet) bool {
	var target *character.Zombie
	for _, z := range s.zombies {
		if z.Row != b.Row || !z.Alive() {
			continue
		}
		if b.Pos.X >= z.Pos().X-bulletHitRadius {
			if target == nil || z.Pos().X < target.Pos().X {
				target = z
			}
		}
	}
	if target == nil {
		return false
	}
	target.TakeDamage(b.Damage)
	return true
}

// checkWin 时间线走完且场上无存活僵尸时结束关卡
func (s *LevelScene) checkWin() {
	if s.scheduler.Progress() == 1 && s.aliveZombieCount() == 0 {
		if s.state.TransitionTo(StateEnd) {
			s.deps.Bus.Publish(&events.NextLevelEvent{LevelID: s.cfg.ID})
		}
	}
}

func (s *LevelScene) aliveZombieCount() int {
	n := 0
	for _, z := range s.zombies {
		if z.Alive() {
			n++
		}
	}
	return n
}

// AddZombieFromStart 在入场线上加入僵尸
//
// 纵坐标与该行行尾单元格的中心线对齐（扣除僵尸自身的锚点偏移），
// 横坐标置于最右侧单元格右边的入场边距处。
func (s *LevelScene) AddZombieFromStart(z *character.Zombie, row int) {
	cells := s.grid.Row(row)
	var last *grid.Cell
	for i := len(cells) - 1; i >= 0; i-- {
		if cells[i] != nil {
			last = cells[i]
			break
		}
	}
	if last == nil {
		log.Printf("[LevelScene] %s: 第 %d 行没有单元格，丢弃僵尸", s.cfg.ID, row)
		return
	}
	z.Row = row
	z.SetPos(geom.Vec{
		X: last.Center.X + s.cfg.SpawnMargin,
		Y: last.Center.Y - z.Config().AnchorOffsetY,
	})
	s.zombies = append(s.zombies, z)
}

// AddPlant 将植物放入指定单元格
func (s *LevelScene) AddPlant(p *character.Plant, cell *grid.Cell) {
	p.Row, p.Col = cell.Row, cell.Col
	p.SetPos(cell.Center)
	cell.Place(p)
	s.wireShooter(p)
	s.wireBomb(p)
	s.plants = append(s.plants, p)
}

// wireShooter 为射击类植物接上同行目标探测
func (s *LevelScene) wireShooter(p *character.Plant) {
	sh, ok := p.Shooter().(*character.IntervalShooter)
	if !ok {
		return
	}
	sh.HasTarget = func() bool {
		for _, z := range s.zombies {
			if z.Row != p.Row || !z.Alive() {
				continue
			}
			dx := z.Pos().X - p.Pos().X
			if dx >= 0 && dx <= sh.Range() {
				return true
			}
		}
		return false
	}
}

// wireBomb 为带引信的一次性植物接上引爆效果
func (s *LevelScene) wireBomb(p *character.Plant) {
	fuse, ok := p.TimedAction().(*character.FuseAction)
	if !ok {
		return
	}
	fuse.OnDetonate = func() { s.detonate(p) }
}

// detonate 消耗炸弹并波及爆炸半径内的僵尸
//
// 可被引爆的目标直接引爆，其余目标按炸弹伤害结算。炸弹自身爆炸后
// 从场上消失。
func (s *LevelScene) detonate(p *character.Plant) {
	if !p.Use() {
		return
	}
	radius := p.Config().Range
	for _, z := range s.zombies {
		if !z.Alive() || z.Pos().Sub(p.Pos()).Len() > radius {
			continue
		}
		if ex, ok := any(z).(character.Explodable); ok {
			ex.BoomDying()
		} else {
			z.TakeDamage(p.Config().Damage)
		}
	}
	log.Printf("[LevelScene] %s: %s 在 (%d,%d) 引爆", s.cfg.ID, p.Config().ID, p.Row, p.Col)
	p.TakeDamage(p.Health)
}

func (s *LevelScene) onStartPlant(e events.Event) {
	ev := e.(*events.StartPlantEvent)
	plant, ok := ev.Plant.(*character.Plant)
	if !ok {
		log.Printf("[LevelScene] %s: 种植事件未携带植物", s.cfg.ID)
		return
	}
	if err := s.interaction.StartPlanting(plant, s.interaction.PreviewPos()); err != nil {
		log.Printf("[LevelScene] %s: 无法进入种植状态: %v", s.cfg.ID, err)
		return
	}
	s.grid.StartSelecting()
}

func (s *LevelScene) onStopPlant(e events.Event) {
	if s.interaction.IsPlanting() {
		s.interaction.StopPlanting()
	}
	s.grid.StopSelecting()
}

func (s *LevelScene) onStartShoveling(e events.Event) {
	if err := s.interaction.StartShoveling(); err != nil {
		log.Printf("[LevelScene] %s: 无法进入铲除状态: %v", s.cfg.ID, err)
		return
	}
	s.grid.StartSelecting()
}

func (s *LevelScene) onEndShoveling(e events.Event) {
	if s.interaction.IsShoveling() {
		s.interaction.StopShoveling()
	}
	s.grid.StopSelecting()
}

func (s *LevelScene) onMouseMotion(e events.Event) {
	ev := e.(*events.MouseMotionEvent)
	world := ev.WorldPos(s.camera.Pos())
	s.interaction.MovePreview(world)
	before := s.grid.HoveredCell()
	if after := s.grid.OnPointerMove(world); after != nil && after != before {
		hover := &events.HoverEvent{Target: after}
		hover.Pos = ev.Pos
		s.deps.Bus.Publish(hover)
	}
}

func (s *LevelScene) onClick(e events.Event) {
	cell := s.grid.HoveredCell()
	if cell == nil {
		return
	}
	switch {
	case s.interaction.IsPlanting():
		p := s.interaction.TakePendingPlant()
		if p == nil {
			return
		}
		s.AddPlant(p, cell)
		s.deps.Bus.Publish(&events.StopPlantEvent{Plant: p, Row: cell.Row, Col: cell.Col})
	case s.interaction.IsShoveling():
		if removed := cell.RemoveTopmost(); removed != nil {
			if p, ok := removed.(*character.Plant); ok {
				s.removePlant(p)
			}
		}
		s.deps.Bus.Publish(&events.EndShovelingEvent{})
	}
}

func (s *LevelScene) removePlant(p *character.Plant) {
	for i, q := range s.plants {
		if q == p {
			s.plants = append(s.plants[:i], s.plants[i+1:]...)
			return
		}
	}
}

func (s *LevelScene) onWillSpawnZombie(e events.Event) {
	ev := e.(*events.WillSpawnZombieEvent)
	z, ok := ev.Zombie.(*character.Zombie)
	if !ok {
		return
	}
	s.AddZombieFromStart(z, ev.Row)
}

func (s *LevelScene) onButtonClick(e events.Event) {
	ev := e.(*events.ButtonClickEvent)
	switch ev.ObjectID {
	case "#check_zombie_button":
		s.camera.AnimateTo(s.spawnLine, cameraPanDuration)
	case "#pop_level_button":
		if s.manager != nil {
			s.manager.PopScene()
		}
	}
}

func (s *LevelScene) onStartFight(e events.Event) {
	if s.state.TransitionTo(StateProgress) {
		s.flow.Resume()
	}
}

func (s *LevelScene) onKeyDown(e events.Event) {
	ev := e.(*events.KeyDownEvent)
	// 回车开战：植物选择工具条未接入时的键盘入口
	if ev.Key == int(ebiten.KeyEnter) && s.state.State() == StateSelectPlant {
		s.deps.Bus.Publish(&events.StartFightEvent{})
	}
}

func (s *LevelScene) onSunCollect(e events.Event) {
	ev := e.(*events.SunCollectEvent)
	s.Sun.Set(s.Sun.Get() + ev.Amount)
}

// Grid 返回关卡网格
func (s *LevelScene) Grid() *grid.Grid { return s.grid }

// Camera 返回关卡相机
func (s *LevelScene) Camera() *game.Camera { return s.camera }

// Scheduler 返回波次调度器
func (s *LevelScene) Scheduler() *WaveScheduler { return s.scheduler }

// Flow 返回关卡流程控制器
func (s *LevelScene) Flow() *flow.Controller { return s.flow }

// Interaction 返回交互状态
func (s *LevelScene) Interaction() *Interaction { return s.interaction }

// StateName 返回关卡当前状态名
func (s *LevelScene) StateName() string { return s.state.State() }

// Zombies 返回场上僵尸的副本切片
func (s *LevelScene) Zombies() []*character.Zombie {
	return append([]*character.Zombie(nil), s.zombies...)
}

// Plants 返回场上植物的副本切片
func (s *LevelScene) Plants() []*character.Plant {
	return append([]*character.Plant(nil), s.plants...)
}

// Bullets 返回场上子弹的副本切片
func (s *LevelScene) Bullets() []*character.Bullet {
	return append([]*character.Bullet(nil), s.bullets...)
}
