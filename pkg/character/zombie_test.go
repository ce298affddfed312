package character

import (
	"math"
	"math/rand"
	"testing"

	"github.com/gonewx/lawnwars/pkg/config"
	"github.com/gonewx/lawnwars/pkg/geom"
	"github.com/gonewx/lawnwars/pkg/lane"
)

// testZombieConfig 构造测试用僵尸配置
func testZombieConfig() *config.ZombieConfig {
	return &config.ZombieConfig{
		ID:            "zombie_basic",
		MinHealth:     100,
		MaxHealth:     100,
		Speed:         23,
		AnchorOffsetY: 0,
		InitState:     ZombieWalk,
		Animations: map[string][]config.AnimationClip{
			ZombieWalk:   {{Name: "walk", Type: "loop"}},
			ZombieAttack: {{Name: "attack", Type: "loop"}},
			ZombieDying:  {{Name: "dying", Type: "once"}},
			ZombieIdle:   {{Name: "idle", Type: "loop"}},
		},
	}
}

func testRng() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

// testLane 构造 y=100 的三格测试行
func testLane(t *testing.T) *lane.Lane {
	t.Helper()
	l, err := lane.NewLane([]geom.Vec{{X: 100, Y: 100}, {X: 300, Y: 100}, {X: 500, Y: 100}})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

// TestNewZombie_InitialState 测试初始状态与动画联动
func TestNewZombie_InitialState(t *testing.T) {
	anim := &NopAnimator{}
	z, err := NewZombie(testZombieConfig(), anim, testRng())
	if err != nil {
		t.Fatalf("NewZombie failed: %v", err)
	}
	if z.State() != ZombieWalk {
		t.Errorf("expected initial state walk, got %q", z.State())
	}
	if anim.State() != ZombieWalk {
		t.Errorf("animator should follow the state machine, got %q", anim.State())
	}
}

// TestNewZombie_HealthRange 测试生命值落在配置区间内
func TestNewZombie_HealthRange(t *testing.T) {
	cfg := testZombieConfig()
	cfg.MinHealth = 270
	cfg.MaxHealth = 335
	rng := testRng()
	for i := 0; i < 20; i++ {
		z, err := NewZombie(cfg, &NopAnimator{}, rng)
		if err != nil {
			t.Fatal(err)
		}
		if z.Health < 270 || z.Health > 335 {
			t.Fatalf("health %f outside [270, 335]", z.Health)
		}
	}
}

// TestZombie_StateGraph 测试通用僵尸状态图的合法与非法跳转
func TestZombie_StateGraph(t *testing.T) {
	z, err := NewZombie(testZombieConfig(), &NopAnimator{}, testRng())
	if err != nil {
		t.Fatal(err)
	}

	if !z.Attack() {
		t.Error("walk -> attack should be legal")
	}
	if !z.Walk() {
		t.Error("attack -> walk should be legal")
	}
	if !z.Dying() {
		t.Error("walk -> dying should be legal")
	}
	if z.Walk() {
		t.Error("dying is terminal, dying -> walk must fail")
	}
	if z.State() != ZombieDying {
		t.Errorf("state should remain dying, got %q", z.State())
	}
}

// TestBucketheadZombie_StateGraph 测试铁桶僵尸的护甲状态图
func TestBucketheadZombie_StateGraph(t *testing.T) {
	cfg := testZombieConfig()
	cfg.ID = "zombie_buckethead"
	cfg.InitState = ZombieWalkWithBucket
	cfg.Animations[ZombieWalkWithBucket] = []config.AnimationClip{{Name: "wb", Type: "loop"}}
	cfg.Animations[ZombieWalkWithBrokenBucket] = []config.AnimationClip{{Name: "wbb", Type: "loop"}}
	cfg.Animations[ZombieAttackWithBucket] = []config.AnimationClip{{Name: "ab", Type: "loop"}}

	z, err := NewBucketheadZombie(cfg, &NopAnimator{}, testRng())
	if err != nil {
		t.Fatalf("NewBucketheadZombie failed: %v", err)
	}
	if z.State() != ZombieWalkWithBucket {
		t.Fatalf("expected initial walk_with_bucket, got %q", z.State())
	}

	if !z.Machine().TransitionTo(ZombieAttackWithBucket) {
		t.Error("walk_with_bucket -> attack_with_bucket should be legal")
	}
	if !z.Machine().TransitionTo(ZombieAttack) {
		t.Error("attack_with_bucket -> attack should be legal")
	}
	// 依赖 AddTransitionsOf 追加的出边
	if !z.Machine().TransitionTo(ZombieWalkWithBrokenBucket) {
		t.Error("attack -> walk_with_broken_bucket should be legal after widening")
	}
}

// TestZombie_Update_MovesAlongLane 测试行走状态每帧沿行移动
func TestZombie_Update_MovesAlongLane(t *testing.T) {
	z, err := NewZombie(testZombieConfig(), &NopAnimator{}, testRng())
	if err != nil {
		t.Fatal(err)
	}
	z.SetPos(geom.Vec{X: 400, Y: 100})

	if err := z.Update(1000, testLane(t)); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	// 1 秒 × 23 像素/秒，向左
	if math.Abs(z.Pos().X-377) > 1e-6 {
		t.Errorf("expected x=377 after 1s at speed 23, got %f", z.Pos().X)
	}
}

// TestZombie_Update_FreezeSlows 测试冰冻减速与到期恢复
func TestZombie_Update_FreezeSlows(t *testing.T) {
	z, err := NewZombie(testZombieConfig(), &NopAnimator{}, testRng())
	if err != nil {
		t.Fatal(err)
	}
	z.SetPos(geom.Vec{X: 400, Y: 100})
	z.Freeze(2000, 0.5)

	if err := z.Update(1000, testLane(t)); err != nil {
		t.Fatal(err)
	}
	if math.Abs(z.Pos().X-388.5) > 1e-6 {
		t.Errorf("frozen zombie should move at half speed, x=%f", z.Pos().X)
	}
	if err := z.Update(1000, nil); err != nil {
		t.Fatal(err)
	}
	if z.SpeedFactor != 1 {
		t.Errorf("speed factor should recover after freeze expires, got %f", z.SpeedFactor)
	}
}

// TestZombie_Update_DiesAtZeroHealth 测试生命值归零进入死亡态并渐隐移除
func TestZombie_Update_DiesAtZeroHealth(t *testing.T) {
	anim := &NopAnimator{FinishAfter: 500}
	z, err := NewZombie(testZombieConfig(), anim, testRng())
	if err != nil {
		t.Fatal(err)
	}
	z.SetPos(geom.Vec{X: 400, Y: 100})
	z.TakeDamage(150)

	if err := z.Update(16, testLane(t)); err != nil {
		t.Fatal(err)
	}
	if z.State() != ZombieDying {
		t.Fatalf("zombie at health<=0 should be dying, got %q", z.State())
	}

	// 播完死亡动画（500ms）后开始渐隐（2000ms）
	if err := z.Update(500, nil); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4 && !z.Expired(); i++ {
		if err := z.Update(500, nil); err != nil {
			t.Fatal(err)
		}
	}
	if !z.Expired() {
		t.Error("zombie should expire after the dying fade completes")
	}
}

// TestZombie_OffsetCenter 测试偏移中心包含垂直锚点偏移
func TestZombie_OffsetCenter(t *testing.T) {
	cfg := testZombieConfig()
	cfg.AnchorOffsetY = 20
	z, err := NewZombie(cfg, &NopAnimator{}, testRng())
	if err != nil {
		t.Fatal(err)
	}
	z.SetPos(geom.Vec{X: 400, Y: 100})
	if z.OffsetCenter() != (geom.Vec{X: 400, Y: 120}) {
		t.Errorf("unexpected offset center %+v", z.OffsetCenter())
	}
}
