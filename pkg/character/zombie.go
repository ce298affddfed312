package character

import (
	"fmt"
	"math/rand"

	"github.com/gonewx/lawnwars/pkg/config"
	"github.com/gonewx/lawnwars/pkg/fsm"
	"github.com/gonewx/lawnwars/pkg/geom"
	"github.com/gonewx/lawnwars/pkg/lane"
)

// 僵尸状态名
const (
	ZombieIdle   = "idle"
	ZombieWalk   = "walk"
	ZombieAttack = "attack"
	ZombieDying  = "dying"

	// 铁桶僵尸扩展状态
	ZombieWalkWithBucket       = "walk_with_bucket"
	ZombieWalkWithBrokenBucket = "walk_with_broken_bucket"
	ZombieAttackWithBucket     = "attack_with_bucket"
)

// dyingFadeDuration 死亡动画播完后的渐隐时长（毫秒）
const dyingFadeDuration = 2000.0

// Explodable 可被引爆的僵尸能力
//
// 替代原型中对 boom_dying 方法的反射探测：爆炸类植物通过类型断言
// 查询该接口。
type Explodable interface {
	BoomDying()
}

// Zombie 僵尸实体
type Zombie struct {
	cfg *config.ZombieConfig

	Health      float64
	MaxHealth   float64
	Speed       float64  // 像素/秒
	SpeedFactor float64  // 冰冻等减速效果的速度系数
	IcedRemain  float64  // 剩余冰冻时间（毫秒）
	Direction   geom.Vec // 锁定的行进方向，水平分量恒非零
	Row         int

	machine *fsm.StateMachine
	anim    Animator

	pos       geom.Vec // 碰撞中心世界坐标
	fadeTimer float64
	expired   bool
}

// NewZombie 按配置构造通用僵尸
//
// 生命值在 [minHealth, maxHealth] 内随机；初始状态取配置的
// InitState。rng 由调用方注入以保证可复现。
func NewZombie(cfg *config.ZombieConfig, anim Animator, rng *rand.Rand) (*Zombie, error) {
	z := newZombieCore(cfg, anim, rng)
	if err := z.machine.SetInitialState(cfg.InitState); err != nil {
		return nil, fmt.Errorf("zombie %s: %w", cfg.ID, err)
	}
	return z, nil
}

// NewBucketheadZombie 构造带护甲状态图的铁桶僵尸
func NewBucketheadZombie(cfg *config.ZombieConfig, anim Animator, rng *rand.Rand) (*Zombie, error) {
	z := newZombieCore(cfg, anim, rng)
	z.widenForBucket()
	if err := z.machine.SetInitialState(cfg.InitState); err != nil {
		return nil, fmt.Errorf("zombie %s: %w", cfg.ID, err)
	}
	return z, nil
}

// newZombieCore 构造尚未设置初始状态的僵尸
func newZombieCore(cfg *config.ZombieConfig, anim Animator, rng *rand.Rand) *Zombie {
	health := cfg.MinHealth
	if cfg.MaxHealth > cfg.MinHealth {
		health += float64(rng.Intn(int(cfg.MaxHealth-cfg.MinHealth) + 1))
	}
	z := &Zombie{
		cfg:         cfg,
		Health:      health,
		MaxHealth:   cfg.MaxHealth,
		Speed:       cfg.Speed,
		SpeedFactor: 1,
		Direction:   geom.Vec{X: -1},
	}
	z.anim = anim
	z.machine = z.buildStateMachine()
	return z
}

// buildStateMachine 构造通用僵尸状态图
//
// 出边表（数据，不是代码分支）：
//
//	idle   -> walk
//	walk   -> attack, dying
//	attack -> dying, walk
//	dying  -> （终态）
func (z *Zombie) buildStateMachine() *fsm.StateMachine {
	m := fsm.NewStateMachine()
	m.AddState(z.animState(ZombieIdle), ZombieWalk)
	m.AddState(z.animState(ZombieWalk), ZombieAttack, ZombieDying)
	m.AddState(z.animState(ZombieAttack), ZombieDying, ZombieWalk)
	m.AddState(z.animState(ZombieDying))
	return m
}

// animState 构造进入时切换动画的状态
func (z *Zombie) animState(name string) *fsm.State {
	s := fsm.NewState(name)
	s.OnEnter = func(st *fsm.State) {
		z.anim.SetState(st.Name)
	}
	return s
}

// widenForBucket 为铁桶僵尸追加护甲状态
//
// 护甲的行走/攻击状态与通用状态图组合；attack 的出边通过追加
// 扩展，允许打掉护甲后的往返切换。
func (z *Zombie) widenForBucket() {
	m := z.machine
	m.AddState(z.animState(ZombieWalkWithBucket),
		ZombieWalk, ZombieWalkWithBrokenBucket, ZombieAttack, ZombieAttackWithBucket, ZombieDying)
	m.AddState(z.animState(ZombieWalkWithBrokenBucket),
		ZombieWalk, ZombieAttack, ZombieDying)
	m.AddState(z.animState(ZombieAttackWithBucket),
		ZombieAttack, ZombieDying, ZombieWalk, ZombieWalkWithBucket)
	m.AddTransitionsOf(ZombieAttack,
		ZombieWalkWithBucket, ZombieWalkWithBrokenBucket, ZombieAttackWithBucket)
}

// Config 返回僵尸配置
func (z *Zombie) Config() *config.ZombieConfig { return z.cfg }

// State 返回当前状态名
func (z *Zombie) State() string { return z.machine.State() }

// Machine 返回僵尸状态机
func (z *Zombie) Machine() *fsm.StateMachine { return z.machine }

// Pos 返回碰撞中心位置
func (z *Zombie) Pos() geom.Vec { return z.pos }

// SetPos 设置碰撞中心位置，x 不允许越过场景左缘
func (z *Zombie) SetPos(p geom.Vec) {
	if p.X < 0 {
		p.X = 0
	}
	z.pos = p
}

// OffsetCenter 返回行对齐用的偏移中心
//
// 不同僵尸的精灵包围盒基线不一致，比较行对齐时统一加上每类僵尸的
// 垂直锚点偏移。
func (z *Zombie) OffsetCenter() geom.Vec {
	return z.pos.Add(geom.Vec{Y: z.cfg.AnchorOffsetY})
}

// Alive 返回僵尸是否还有生命值
func (z *Zombie) Alive() bool { return z.Health > 0 }

// Expired 返回僵尸是否已渐隐完毕、可从场景移除
func (z *Zombie) Expired() bool { return z.expired }

// TakeDamage 扣除生命值
func (z *Zombie) TakeDamage(damage float64) {
	z.Health -= damage
}

var _ Explodable = (*Zombie)(nil)

// BoomDying 被爆炸波及，直接清空生命值进入死亡（实现 Explodable）
func (z *Zombie) BoomDying() {
	if z.Health > 0 {
		z.Health = 0
	}
	z.machine.TransitionTo(ZombieDying)
}

// Freeze 施加冰冻减速
func (z *Zombie) Freeze(durationMs, speedFactor float64) {
	z.IcedRemain = durationMs
	z.SpeedFactor = speedFactor
}

// Walk 切换到行走状态
func (z *Zombie) Walk() bool { return z.machine.TransitionTo(ZombieWalk) }

// Attack 切换到攻击状态
func (z *Zombie) Attack() bool { return z.machine.TransitionTo(ZombieAttack) }

// Dying 切换到死亡状态
func (z *Zombie) Dying() bool { return z.machine.TransitionTo(ZombieDying) }

// Update 推进僵尸一帧
//
// pathLane 为僵尸所在行的寻路行；处于行走状态时每帧向寻路器取
// 单位方向并位移。寻路失败（网格不变量被破坏）时返回错误，调用方
// 视为该僵尸的致命错误。
func (z *Zombie) Update(dt float64, pathLane *lane.Lane) error {
	z.anim.Update(dt)

	// 冰冻衰减
	if z.IcedRemain > 0 {
		z.IcedRemain -= dt
		if z.IcedRemain <= 0 {
			z.IcedRemain = 0
			z.SpeedFactor = 1
		}
	}

	state := z.machine.State()
	if state == ZombieDying {
		// 死亡动画播完后渐隐，生命值与位置不再参与玩法结算
		if z.anim.Finished() {
			z.fadeTimer += dt
			if z.fadeTimer >= dyingFadeDuration {
				z.expired = true
			}
		}
		return nil
	}

	if z.Health <= 0 {
		z.machine.TransitionTo(ZombieDying)
		return nil
	}

	if isWalkingState(state) && pathLane != nil {
		dir, err := pathLane.FindDirection(z.OffsetCenter(), z.Direction)
		if err != nil {
			return fmt.Errorf("zombie %s row %d: %w", z.cfg.ID, z.Row, err)
		}
		step := dt / 1000 * z.Speed * z.SpeedFactor
		z.SetPos(z.pos.Add(dir.Scale(step)))
	}
	return nil
}

// FadeProgress 返回渐隐进度 [0,1]，用于绘制端设置透明度
func (z *Zombie) FadeProgress() float64 {
	p := z.fadeTimer / dyingFadeDuration
	if p > 1 {
		return 1
	}
	return p
}

// isWalkingState 判断状态是否属于行走类
func isWalkingState(state string) bool {
	switch state {
	case ZombieWalk, ZombieWalkWithBucket, ZombieWalkWithBrokenBucket:
		return true
	}
	return false
}
