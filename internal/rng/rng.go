// Package rng 提供可注入的随机源，测试和回放时可替换为固定种子或脚本化序列。
package rng

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// Source 随机源
type Source interface {
	IntN(n int) int   // [0, n)
	Float64() float64 // [0, 1)
	Shuffle(n int, swap func(i, j int))
}

// cryptoSource 基于crypto/rand的rand.Source
type cryptoSource struct{}

func (cryptoSource) Uint64() uint64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		// 回退到math/rand/v2
		return rand.Uint64()
	}
	return binary.BigEndian.Uint64(buf[:])
}

// Default 默认随机源（crypto）
func Default() Source {
	return rand.New(cryptoSource{})
}

// seeded 可复现的随机源，*rand.Rand 本身不是并发安全的
type seeded struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeeded 创建固定种子的随机源
func NewSeeded(seed uint64) Source {
	return &seeded{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seeded) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

func (s *seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func (s *seeded) Shuffle(n int, swap func(i, j int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Shuffle(n, swap)
}

// New 按种子选择随机源，seed为0时使用crypto随机源
func New(seed uint64) Source {
	if seed == 0 {
		return Default()
	}
	return NewSeeded(seed)
}

// Chance 以概率p返回true
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}
