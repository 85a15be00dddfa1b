package rng

import "sync"

// Scripted 按预设序列返回随机值，序列耗尽后返回默认值。
// Shuffle 不改变顺序。
type Scripted struct {
	mu     sync.Mutex
	ints   []int
	floats []float64

	// DefaultFloat 浮点序列耗尽后的返回值
	DefaultFloat float64
}

// NewScripted 创建脚本随机源
func NewScripted() *Scripted {
	return &Scripted{DefaultFloat: 0.99}
}

// PushInts 追加IntN的返回值
func (s *Scripted) PushInts(v ...int) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ints = append(s.ints, v...)
	return s
}

// PushFloats 追加Float64的返回值
func (s *Scripted) PushFloats(v ...float64) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.floats = append(s.floats, v...)
	return s
}

// IntN 返回下一个预设整数（对n取模），耗尽后返回0
func (s *Scripted) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.ints) == 0 || n <= 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v < 0 {
		v = -v
	}
	return v % n
}

// Float64 返回下一个预设浮点数
func (s *Scripted) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.floats) == 0 {
		return s.DefaultFloat
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

// Shuffle 保持原顺序
func (s *Scripted) Shuffle(n int, swap func(i, j int)) {}

// Remaining 剩余未消费的整数个数
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ints)
}
