package question

import (
	"github.com/wfunc/math-tycoon/internal/rng"
)

// maxOptionAttempts 随机生成干扰项的最大尝试次数，之后按顺序补齐
const maxOptionAttempts = 64

// Options 生成4个互不相同的正整数选项，其中一个是答案。
// answer必须为正数。
func Options(answer int, src rng.Source) []int {
	opts := []int{answer}
	has := func(v int) bool {
		for _, o := range opts {
			if o == v {
				return true
			}
		}
		return false
	}

	for attempt := 0; len(opts) < OptionCount && attempt < maxOptionAttempts; attempt++ {
		diff := 10
		if src.IntN(2) == 1 {
			diff = 100
		}
		sign := 1
		if src.IntN(2) == 1 {
			sign = -1
		}
		val := answer + (src.IntN(5)+1)*diff*sign
		small := answer + src.IntN(20) - 10

		switch {
		case val > 0 && !has(val):
			opts = append(opts, val)
		case small > 0 && !has(small):
			opts = append(opts, small)
		}
	}

	// 随机源退化时按顺序补齐
	for k := 1; len(opts) < OptionCount; k++ {
		if !has(answer + k) {
			opts = append(opts, answer+k)
		}
	}

	src.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })
	return opts
}
