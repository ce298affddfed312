package character

import (
	"fmt"
	"math/rand"

	"github.com/gonewx/lawnwars/pkg/config"
	"github.com/gonewx/lawnwars/pkg/geom"
)

// ZombieFactory 僵尸工厂函数
type ZombieFactory func() (*Zombie, error)

// PlantFactory 植物工厂函数
type PlantFactory func() (*Plant, error)

// Registry 角色工厂注册表
//
// 在启动引导期通过 RegisterBuiltins 显式填充，不依赖装饰器或
// 包导入顺序的副作用。
type Registry struct {
	zombies map[string]ZombieFactory
	plants  map[string]PlantFactory
}

// NewRegistry 创建空注册表
func NewRegistry() *Registry {
	return &Registry{
		zombies: make(map[string]ZombieFactory),
		plants:  make(map[string]PlantFactory),
	}
}

// RegisterZombie 注册僵尸工厂，重名覆盖
func (r *Registry) RegisterZombie(name string, factory ZombieFactory) {
	r.zombies[name] = factory
}

// RegisterPlant 注册植物工厂，重名覆盖
func (r *Registry) RegisterPlant(name string, factory PlantFactory) {
	r.plants[name] = factory
}

// CreateZombie 按名称创建僵尸，未注册时报错
func (r *Registry) CreateZombie(name string) (*Zombie, error) {
	factory, ok := r.zombies[name]
	if !ok {
		return nil, fmt.Errorf("character: no such zombie %q", name)
	}
	return factory()
}

// CreatePlant 按名称创建植物，未注册时报错
func (r *Registry) CreatePlant(name string) (*Plant, error) {
	factory, ok := r.plants[name]
	if !ok {
		return nil, fmt.Errorf("character: no such plant %q", name)
	}
	return factory()
}

// HasZombie 返回指定僵尸是否已注册
func (r *Registry) HasZombie(name string) bool {
	_, ok := r.zombies[name]
	return ok
}

// HasPlant 返回指定植物是否已注册
func (r *Registry) HasPlant(name string) bool {
	_, ok := r.plants[name]
	return ok
}

// IntervalShooter 按固定间隔射击的能力组件
//
// 目标探测由注入的 HasTarget 回调提供（通常由关卡扫描同行僵尸），
// 组件自身只管理冷却计时。
type IntervalShooter struct {
	Interval    float64 // 射击间隔（毫秒）
	Damage      float64
	BulletSpeed float64
	ShotRange   float64
	Origin      func() geom.Vec
	HasTarget   func() bool

	cooldown float64
}

// Tick 推进冷却计时，每帧调用
func (s *IntervalShooter) Tick(dt float64) {
	if s.cooldown > 0 {
		s.cooldown -= dt
	}
}

// ShouldShoot 冷却结束且射程内有目标时返回 true
func (s *IntervalShooter) ShouldShoot() bool {
	if s.cooldown > 0 {
		return false
	}
	return s.HasTarget == nil || s.HasTarget()
}

// Shoot 发射一颗子弹并重置冷却
func (s *IntervalShooter) Shoot() *Bullet {
	s.cooldown = s.Interval
	b := &Bullet{
		Direction: geom.Vec{X: 1},
		Speed:     s.BulletSpeed,
		Damage:    s.Damage,
	}
	if s.Origin != nil {
		b.Pos = s.Origin()
	}
	return b
}

// Range 返回射程
func (s *IntervalShooter) Range() float64 { return s.ShotRange }

// FuseAction 一次性引信能力组件
//
// 种下后经过 Delay 毫秒触发一次 OnDetonate，之后不再触发。引爆
// 效果（范围伤害、移除植物）由装配回调的一方决定。
type FuseAction struct {
	Delay      float64 // 引信时长（毫秒）
	OnDetonate func()

	fired bool
}

// NextActionInterval 返回引信时长
func (f *FuseAction) NextActionInterval() float64 { return f.Delay }

// DoAction 触发引爆回调，仅第一次调用生效
func (f *FuseAction) DoAction() {
	if f.fired {
		return
	}
	f.fired = true
	if f.OnDetonate != nil {
		f.OnDetonate()
	}
}

// Fired 返回引信是否已触发
func (f *FuseAction) Fired() bool { return f.fired }

// bombFuseDelay 樱桃炸弹种下后到引爆的时长（毫秒）
const bombFuseDelay = 1000.0

// BuiltinDeps 内建角色工厂的依赖
type BuiltinDeps struct {
	Configs *config.Manager
	Rng     *rand.Rand
	// NewAnimator 为每个实体构造动画组件；为 nil 时按配置的片段
	// 类型构造 ClipAnimator
	NewAnimator func(cfg config.CharacterConfig) Animator
}

func (d *BuiltinDeps) animatorFor(cfg config.CharacterConfig) Animator {
	if d.NewAnimator != nil {
		return d.NewAnimator(cfg)
	}
	switch c := cfg.(type) {
	case *config.ZombieConfig:
		return NewClipAnimator(c.Animations)
	case *config.PlantConfig:
		return NewClipAnimator(c.Animations)
	}
	return &NopAnimator{}
}

// RegisterBuiltins 注册内建角色工厂
//
// 启动引导期显式调用一次；依赖的配置必须已经加载完成，缺失的配置
// 在此处立即暴露为错误而不是等到生成时。
func RegisterBuiltins(r *Registry, deps *BuiltinDeps) error {
	type zombieEntry struct {
		name     string
		configID string
		create   func(*config.ZombieConfig, Animator, *rand.Rand) (*Zombie, error)
	}
	zombieTable := []zombieEntry{
		{"zombie_basic", "zombie_basic", NewZombie},
		{"zombie_buckethead", "zombie_buckethead", NewBucketheadZombie},
	}
	for _, entry := range zombieTable {
		cfg, err := deps.Configs.GetZombie(entry.configID)
		if err != nil {
			return fmt.Errorf("register zombie %s: %w", entry.name, err)
		}
		create := entry.create
		r.RegisterZombie(entry.name, func() (*Zombie, error) {
			return create(cfg, deps.animatorFor(cfg), deps.Rng)
		})
	}

	// 豌豆射手：攻击型状态图 + 射击能力
	peaCfg, err := deps.Configs.GetPlant("peashooter")
	if err != nil {
		return fmt.Errorf("register plant peashooter: %w", err)
	}
	r.RegisterPlant("peashooter", func() (*Plant, error) {
		shooter := &IntervalShooter{
			Interval:    peaCfg.AttackInterval,
			Damage:      peaCfg.Damage,
			BulletSpeed: 300,
			ShotRange:   peaCfg.Range,
		}
		p, err := NewPlant(peaCfg, deps.animatorFor(peaCfg), WithShooter(shooter))
		if err != nil {
			return nil, err
		}
		shooter.Origin = p.Pos
		return p, nil
	})

	// 坚果墙：破损状态图，无攻击能力
	nutCfg, err := deps.Configs.GetPlant("wallnut")
	if err != nil {
		return fmt.Errorf("register plant wallnut: %w", err)
	}
	r.RegisterPlant("wallnut", func() (*Plant, error) {
		return NewPlant(nutCfg, deps.animatorFor(nutCfg), WithStateMachine(BuildWallnutMachine))
	})

	// 樱桃炸弹：一次性状态图 + 引信；引爆效果由关卡装配
	bombCfg, err := deps.Configs.GetPlant("cherry_bomb")
	if err != nil {
		return fmt.Errorf("register plant cherry_bomb: %w", err)
	}
	r.RegisterPlant("cherry_bomb", func() (*Plant, error) {
		return NewPlant(bombCfg, deps.animatorFor(bombCfg),
			WithStateMachine(BuildConsumableMachine),
			WithTimedAction(&FuseAction{Delay: bombFuseDelay}))
	})

	return nil
}
