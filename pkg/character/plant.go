package character

import (
	"fmt"

	"github.com/gonewx/lawnwars/pkg/config"
	"github.com/gonewx/lawnwars/pkg/fsm"
	"github.com/gonewx/lawnwars/pkg/geom"
)

// 植物状态名
const (
	// 攻击型植物
	PlantInInterval = "in_interval"
	PlantAttack     = "attack"
	PlantHurt       = "hurt"

	// 坚果墙
	PlantHealthy  = "healthy"
	PlantCracked1 = "cracked1"
	PlantCracked2 = "cracked2"

	// 一次性植物
	PlantReady = "ready"
	PlantUsed  = "used"
)

// Shooter 发射子弹的能力组件
type Shooter interface {
	ShouldShoot() bool
	Shoot() *Bullet
	Range() float64
}

// TimedAction 每隔一段时间执行一次操作的能力组件
type TimedAction interface {
	// NextActionInterval 下一次操作的时间间隔（毫秒）
	NextActionInterval() float64
	DoAction()
}

// Ticker 需要逐帧推进内部计时的能力组件可选接口
type Ticker interface {
	Tick(dt float64)
}

// Bullet 子弹实体
type Bullet struct {
	Pos       geom.Vec
	Direction geom.Vec
	Speed     float64 // 像素/秒
	Damage    float64
	Row       int
}

// Update 推进子弹位置
func (b *Bullet) Update(dt float64) {
	b.Pos = b.Pos.Add(b.Direction.Scale(dt / 1000 * b.Speed))
}

// Plant 植物实体
//
// 能力组件（射击、定时动作）在构造期按配置装配，未装配的能力为
// nil；状态图同样按植物种类选择。
type Plant struct {
	cfg *config.PlantConfig

	Health   float64
	Row, Col int

	machine *fsm.StateMachine
	anim    Animator

	shooter Shooter
	timed   TimedAction

	pos         geom.Vec
	initState   string
	actionTimer float64
	used        bool
}

// PlantOption 构造期能力装配选项
type PlantOption func(*Plant)

// WithShooter 装配射击能力
func WithShooter(s Shooter) PlantOption {
	return func(p *Plant) { p.shooter = s }
}

// WithTimedAction 装配定时动作能力
func WithTimedAction(a TimedAction) PlantOption {
	return func(p *Plant) { p.timed = a }
}

// WithStateMachine 替换默认状态图
func WithStateMachine(build func(p *Plant) (*fsm.StateMachine, string)) PlantOption {
	return func(p *Plant) {
		m, initial := build(p)
		p.machine = m
		p.initState = initial
	}
}

// NewPlant 按配置构造植物
func NewPlant(cfg *config.PlantConfig, anim Animator, opts ...PlantOption) (*Plant, error) {
	p := &Plant{
		cfg:    cfg,
		Health: cfg.Health,
		anim:   anim,
	}
	p.machine, p.initState = p.buildAttackerMachine()
	for _, opt := range opts {
		opt(p)
	}
	if err := p.machine.SetInitialState(p.initState); err != nil {
		return nil, fmt.Errorf("plant %s: %w", cfg.ID, err)
	}
	return p, nil
}

// buildAttackerMachine 构造攻击型植物的默认状态图
//
// 出边表：
//
//	in_interval -> attack, hurt
//	attack      -> in_interval, hurt
//	hurt        -> in_interval, attack
func (p *Plant) buildAttackerMachine() (*fsm.StateMachine, string) {
	m := fsm.NewStateMachine()
	m.AddState(p.animState(PlantInInterval), PlantAttack, PlantHurt)
	m.AddState(p.animState(PlantAttack), PlantInInterval, PlantHurt)
	m.AddState(p.animState(PlantHurt), PlantInInterval, PlantAttack)
	return m, PlantInInterval
}

// BuildWallnutMachine 构造坚果墙状态图
//
// 出边表：
//
//	healthy  -> cracked1, cracked2
//	cracked1 -> cracked2
//	cracked2 -> （终态）
func BuildWallnutMachine(p *Plant) (*fsm.StateMachine, string) {
	m := fsm.NewStateMachine()
	m.AddState(p.animState(PlantHealthy), PlantCracked1, PlantCracked2)
	m.AddState(p.animState(PlantCracked1), PlantCracked2)
	m.AddState(p.animState(PlantCracked2))
	return m, PlantHealthy
}

// BuildConsumableMachine 构造一次性植物状态图
//
// 出边表：
//
//	ready -> used
//	used  -> （终态）
func BuildConsumableMachine(p *Plant) (*fsm.StateMachine, string) {
	m := fsm.NewStateMachine()
	m.AddState(p.animState(PlantReady), PlantUsed)
	m.AddState(p.animState(PlantUsed))
	return m, PlantReady
}

// animState 构造进入时切换动画的状态
func (p *Plant) animState(name string) *fsm.State {
	s := fsm.NewState(name)
	s.OnEnter = func(st *fsm.State) {
		p.anim.SetState(st.Name)
	}
	return s
}

// Config 返回植物配置
func (p *Plant) Config() *config.PlantConfig { return p.cfg }

// State 返回当前状态名
func (p *Plant) State() string { return p.machine.State() }

// Machine 返回植物状态机
func (p *Plant) Machine() *fsm.StateMachine { return p.machine }

// ZLayer 返回同格绘制层级（实现 grid.Occupant）
func (p *Plant) ZLayer() int { return p.cfg.ZLayer }

// Pos 返回植物位置
func (p *Plant) Pos() geom.Vec { return p.pos }

// SetPos 设置植物位置
func (p *Plant) SetPos(pos geom.Vec) { p.pos = pos }

// Shooter 返回射击能力组件，未装配时为 nil
func (p *Plant) Shooter() Shooter { return p.shooter }

// TimedAction 返回定时动作能力组件，未装配时为 nil
func (p *Plant) TimedAction() TimedAction { return p.timed }

// Alive 返回植物是否存活
func (p *Plant) Alive() bool { return p.Health > 0 }

// TakeDamage 扣除生命值并推进坚果墙的破损状态
func (p *Plant) TakeDamage(damage float64) {
	p.Health -= damage
	p.syncWallnutState()
}

// syncWallnutState 按生命值比例推进破损状态
//
// 生命值低于 2/3 进入 cracked1，低于 1/3 进入 cracked2；仅当状态图
// 包含这些状态时生效。
func (p *Plant) syncWallnutState() {
	if p.machine.State() == "" {
		return
	}
	ratio := p.Health / p.cfg.Health
	switch {
	case ratio <= 1.0/3:
		if p.machine.State() != PlantCracked2 && p.machine.CanTransitionTo(PlantCracked2) {
			p.machine.TransitionTo(PlantCracked2)
		}
	case ratio <= 2.0/3:
		if p.machine.State() == PlantHealthy && p.machine.CanTransitionTo(PlantCracked1) {
			p.machine.TransitionTo(PlantCracked1)
		}
	}
}

// Used 返回一次性植物是否已被消耗
func (p *Plant) Used() bool { return p.used }

// Use 消耗一次性植物
//
// 只有处于 ready 状态的一次性植物能被消耗，消耗后若装配了爆炸或
// 定时能力由调用方触发效果。重复消耗返回 false。
func (p *Plant) Use() bool {
	if !p.cfg.Consumable || p.used {
		return false
	}
	if !p.machine.TransitionTo(PlantUsed) {
		return false
	}
	p.used = true
	return true
}

// Update 推进植物一帧
func (p *Plant) Update(dt float64) []*Bullet {
	p.anim.Update(dt)

	var shots []*Bullet
	if p.shooter != nil {
		if tk, ok := p.shooter.(Ticker); ok {
			tk.Tick(dt)
		}
		if p.shooter.ShouldShoot() && p.machine.State() == PlantInInterval &&
			p.machine.TransitionTo(PlantAttack) {
			if b := p.shooter.Shoot(); b != nil {
				b.Row = p.Row
				shots = append(shots, b)
			}
		}
		// 攻击动画播完回到冷却状态
		if p.machine.State() == PlantAttack && p.anim.Finished() {
			p.machine.TransitionTo(PlantInInterval)
		}
	}

	if p.timed != nil {
		p.actionTimer += dt
		if p.actionTimer >= p.timed.NextActionInterval() {
			p.actionTimer = 0
			p.timed.DoAction()
		}
	}
	return shots
}
