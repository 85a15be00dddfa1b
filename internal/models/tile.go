package models

// TileType 格子类型
type TileType string

const (
	TileStart    TileType = "START"
	TileProperty TileType = "PROPERTY" // 可购买的地产
	TileChance   TileType = "CHANCE"   // 运气卡
	TileBank     TileType = "BANK"     // 银行/税务
	TileJail     TileType = "JAIL"     // 休息站
)

// BankKind 银行格子种类
type BankKind string

const (
	BankInterest BankKind = "interest" // 发放利息
	BankTax      BankKind = "tax"      // 征收税款
)

// BankRule 银行格子规则
type BankRule struct {
	Kind        BankKind `json:"kind" yaml:"kind"`
	Label       string   `json:"label" yaml:"label"`
	Periods     int      `json:"periods,omitempty" yaml:"periods"`           // 利息期数
	Rate        int      `json:"rate,omitempty" yaml:"rate"`                 // 每期利息
	PerProperty int      `json:"per_property,omitempty" yaml:"per_property"` // 每块地产税额
	Minimum     int      `json:"minimum,omitempty" yaml:"minimum"`           // 无地产时的固定税额
}

// JailRule 休息站出狱题目（整除）
type JailRule struct {
	Scenario string `json:"scenario" yaml:"scenario"`
	Dividend int    `json:"dividend" yaml:"dividend"`
	Divisor  int    `json:"divisor" yaml:"divisor"`
}

// Tile 棋盘格子
type Tile struct {
	ID    int       `json:"id" yaml:"id"`
	Name  string    `json:"name" yaml:"name"`
	Type  TileType  `json:"type" yaml:"type"`
	Color string    `json:"color,omitempty" yaml:"color"`
	Price int       `json:"price,omitempty" yaml:"price"`
	Rent  int       `json:"rent,omitempty" yaml:"rent"`
	Owner string    `json:"owner,omitempty" yaml:"-"` // 空字符串表示无主
	Level int       `json:"level,omitempty" yaml:"-"`
	Bank  *BankRule `json:"bank,omitempty" yaml:"bank"`
	Jail  *JailRule `json:"jail,omitempty" yaml:"jail"`
}

// Owned 是否有主
func (t *Tile) Owned() bool {
	return t.Owner != ""
}

// Reset 恢复为无主、1级
func (t *Tile) Reset() {
	t.Owner = ""
	if t.Type == TileProperty {
		t.Level = 1
	}
}

// Clone 深拷贝
func (t Tile) Clone() Tile {
	c := t
	if t.Bank != nil {
		b := *t.Bank
		c.Bank = &b
	}
	if t.Jail != nil {
		j := *t.Jail
		c.Jail = &j
	}
	return c
}
