package game

// ListenableValue 可监听值，值变化时通知全部监听者
//
// 用于阳光计数这类被多个 UI 部件观察的数值。监听者回调在 Set
// 的调用栈上同步执行，单线程模拟循环内使用。
type ListenableValue[T any] struct {
	value  T
	nextID int
	order  []int
	byID   map[int]func(T)
}

// NewListenableValue 创建可监听值
func NewListenableValue[T any](initial T) *ListenableValue[T] {
	return &ListenableValue[T]{value: initial, byID: make(map[int]func(T))}
}

// Get 返回当前值
func (lv *ListenableValue[T]) Get() T { return lv.value }

// Set 更新值并按注册顺序通知监听者
func (lv *ListenableValue[T]) Set(v T) {
	lv.value = v
	for _, id := range lv.order {
		if fn, ok := lv.byID[id]; ok {
			fn(v)
		}
	}
}

// AddListener 注册监听者，返回用于 RemoveListener 的句柄
func (lv *ListenableValue[T]) AddListener(fn func(T)) int {
	id := lv.nextID
	lv.nextID++
	lv.byID[id] = fn
	lv.order = append(lv.order, id)
	return id
}

// RemoveListener 按句柄移除监听者，未知句柄为空操作
func (lv *ListenableValue[T]) RemoveListener(id int) {
	delete(lv.byID, id)
}

// Clear 移除所有监听者
func (lv *ListenableValue[T]) Clear() {
	lv.order = nil
	lv.byID = map[int]func(T){}
}
