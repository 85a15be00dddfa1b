package models

// OpKind 运算类型
type OpKind string

const (
	OpAdd OpKind = "ADD"
	OpSub OpKind = "SUB"
	OpMul OpKind = "MUL"
	OpDiv OpKind = "DIV"
)

// AllOps 全部运算类型（固定顺序）
var AllOps = []OpKind{OpAdd, OpSub, OpMul, OpDiv}

// Valid 是否为合法运算
func (o OpKind) Valid() bool {
	switch o {
	case OpAdd, OpSub, OpMul, OpDiv:
		return true
	}
	return false
}

// Symbol 运算符号
func (o OpKind) Symbol() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "×"
	case OpDiv:
		return "÷"
	}
	return "?"
}

// Question 数学题
type Question struct {
	Prompt      string `json:"question"`
	Answer      int    `json:"answer"`
	Options     []int  `json:"options"`
	Op          OpKind `json:"type"`
	Difficulty  int    `json:"difficulty"`
	Explanation string `json:"explanation,omitempty"`
}

// IsCorrect 判断选项是否正确
func (q *Question) IsCorrect(option int) bool {
	return option == q.Answer
}

// HasOption 选项是否属于本题
func (q *Question) HasOption(option int) bool {
	for _, o := range q.Options {
		if o == option {
			return true
		}
	}
	return false
}
