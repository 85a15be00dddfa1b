package question

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter 按语言格式化金额
type Formatter struct {
	p *message.Printer
}

// NewFormatter 创建格式化器，无法识别的语言回退到简体中文
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.SimplifiedChinese
	}
	return &Formatter{p: message.NewPrinter(tag)}
}

// Money 金额，如 ¥2,000
func (f *Formatter) Money(n int) string {
	if n < 0 {
		return f.p.Sprintf("-¥%d", -n)
	}
	return f.p.Sprintf("¥%d", n)
}

// Number 带千分位的数字
func (f *Formatter) Number(n int) string {
	return f.p.Sprintf("%d", n)
}
