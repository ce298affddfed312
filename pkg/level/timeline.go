package level

import (
	"encoding/json"
	"fmt"
	"os"
)

// 时间线缺省值
const (
	defaultDuration      = 180000.0 // 关卡总时长（毫秒）
	defaultMaxConcurrent = 10       // 场上僵尸数上限
	defaultSpawnInterval = 3000.0   // 缺省刷怪间隔（毫秒）
)

// SpawnEntry 波次僵尸池条目
type SpawnEntry struct {
	Type      string `json:"type"`      // 注册表中的僵尸名
	Frequency int    `json:"frequency"` // 权重，按出现次数展开进抽取池
}

// Wave 单个波次
//
// SpawnInterval 为零时使用时间线级的缺省间隔。
type Wave struct {
	Time          float64      `json:"time"` // 触发时间（毫秒）
	SpawnInterval float64      `json:"spawn_interval,omitempty"`
	Warning       string       `json:"warning,omitempty"` // 波次提示文本
	Zombies       []SpawnEntry `json:"zombies"`
}

// Timeline 关卡刷怪时间线
//
// 这是稳定的存档格式，加载后只读。
type Timeline struct {
	Waves                []Wave  `json:"waves"`
	Duration             float64 `json:"duration,omitempty"`
	MaxConcurrentZombies int     `json:"max_concurrent_zombies,omitempty"`
	DefaultSpawnInterval float64 `json:"default_spawn_interval,omitempty"`
}

// LoadTimeline 从文件加载时间线
func LoadTimeline(path string) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load timeline: %w", err)
	}
	return ParseTimeline(data)
}

// ParseTimeline 解析时间线 JSON，应用缺省值并校验
func ParseTimeline(data []byte) (*Timeline, error) {
	var tl Timeline
	if err := json.Unmarshal(data, &tl); err != nil {
		return nil, fmt.Errorf("parse timeline: %w", err)
	}
	tl.applyDefaults()
	if err := tl.validate(); err != nil {
		return nil, fmt.Errorf("parse timeline: %w", err)
	}
	return &tl, nil
}

func (tl *Timeline) applyDefaults() {
	if tl.Duration == 0 {
		tl.Duration = defaultDuration
	}
	if tl.MaxConcurrentZombies == 0 {
		tl.MaxConcurrentZombies = defaultMaxConcurrent
	}
	if tl.DefaultSpawnInterval == 0 {
		tl.DefaultSpawnInterval = defaultSpawnInterval
	}
}

func (tl *Timeline) validate() error {
	if len(tl.Waves) == 0 {
		return fmt.Errorf("timeline has no waves")
	}
	if tl.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", tl.Duration)
	}
	for i, w := range tl.Waves {
		if i > 0 && w.Time < tl.Waves[i-1].Time {
			return fmt.Errorf("wave %d time %f regresses before wave %d", i, w.Time, i-1)
		}
		if w.SpawnInterval < 0 {
			return fmt.Errorf("wave %d has negative spawn interval", i)
		}
		for j, z := range w.Zombies {
			if z.Type == "" {
				return fmt.Errorf("wave %d zombie %d has no type", i, j)
			}
			if z.Frequency < 0 {
				return fmt.Errorf("wave %d zombie %q has negative frequency", i, z.Type)
			}
		}
	}
	return nil
}

// interval 返回波次的有效刷怪间隔
func (tl *Timeline) interval(w *Wave) float64 {
	if w.SpawnInterval > 0 {
		return w.SpawnInterval
	}
	return tl.DefaultSpawnInterval
}
