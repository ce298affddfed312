package level

import (
	"fmt"
	"math/rand"

	"github.com/gonewx/lawnwars/pkg/character"
)

// SpawnFunc 按注册名创建僵尸
type SpawnFunc func(typeName string) (*character.Zombie, error)

// WaveScheduler 僵尸波次调度器
//
// 调度器中的时间单位均为毫秒。场上僵尸数通过注入的回调查询，
// 调度器不持有僵尸列表。
type WaveScheduler struct {
	timeline *Timeline
	spawn    SpawnFunc
	rng      *rand.Rand

	timer         float64
	waveIndex     int
	lastSpawnTime float64

	aliveCount func() int
}

// NewWaveScheduler 创建调度器
func NewWaveScheduler(tl *Timeline, spawn SpawnFunc, rng *rand.Rand) *WaveScheduler {
	return &WaveScheduler{
		timeline:   tl,
		spawn:      spawn,
		rng:        rng,
		aliveCount: func() int { return 0 },
	}
}

// SetAliveZombieCountGetter 注入场上存活僵尸数的查询回调
func (s *WaveScheduler) SetAliveZombieCountGetter(fn func() int) {
	if fn != nil {
		s.aliveCount = fn
	}
}

// UpdateAndGen 推进调度器，在满足条件时返回新生成的僵尸
//
// 返回 (nil, nil) 表示本帧无需生成。进度到达 1.0 后调度永久停止，
// 时间继续累加也不再生成。
func (s *WaveScheduler) UpdateAndGen(dt float64) (*character.Zombie, error) {
	if s.Progress() == 1 {
		return nil, nil
	}
	s.timer += dt

	// 波次索引只向前推进
	for s.waveIndex+1 < len(s.timeline.Waves) &&
		s.timeline.Waves[s.waveIndex+1].Time <= s.timer {
		s.waveIndex++
	}

	wave := &s.timeline.Waves[s.waveIndex]
	if s.timer-s.lastSpawnTime < s.timeline.interval(wave) {
		return nil, nil
	}
	if s.aliveCount() >= s.timeline.MaxConcurrentZombies {
		return nil, nil
	}

	s.lastSpawnTime = s.timer
	name := s.pickType(wave.Zombies)
	if name == "" {
		return nil, nil
	}
	z, err := s.spawn(name)
	if err != nil {
		return nil, fmt.Errorf("spawn %q: %w", name, err)
	}
	return z, nil
}

// pickType 从波次僵尸池加权随机抽取类型
//
// 每个类型按其权重在展开池中出现相应次数，然后均匀抽取。
func (s *WaveScheduler) pickType(entries []SpawnEntry) string {
	var pool []string
	for _, e := range entries {
		for i := 0; i < e.Frequency; i++ {
			pool = append(pool, e.Type)
		}
	}
	if len(pool) == 0 {
		return ""
	}
	return pool[s.rng.Intn(len(pool))]
}

// Progress 返回调度进度 [0,1]
func (s *WaveScheduler) Progress() float64 {
	p := s.timer / s.timeline.Duration
	if p > 1 {
		return 1
	}
	return p
}

// IsFinished 返回时间线是否已走完
func (s *WaveScheduler) IsFinished() bool {
	return s.timer >= s.timeline.Duration
}

// CurrentWarning 返回当前波次的提示文本，无提示时为空串
func (s *WaveScheduler) CurrentWarning() string {
	return s.timeline.Waves[s.waveIndex].Warning
}
