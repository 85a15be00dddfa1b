package board

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultBoard []byte

// ChanceEvent 运气卡事件
//
// Op为空时是固定金额事件，Amount带符号；Op为MUL/DIV时金额由A、B计算得出。
type ChanceEvent struct {
	Text   string        `yaml:"text" json:"text"`
	Amount int           `yaml:"amount" json:"amount,omitempty"`
	Op     models.OpKind `yaml:"op" json:"op,omitempty"`
	A      int           `yaml:"a" json:"a,omitempty"`
	B      int           `yaml:"b" json:"b,omitempty"`
	Gain   bool          `yaml:"gain" json:"gain,omitempty"`
}

// Computed 是否为需要乘除计算的事件
func (c ChanceEvent) Computed() bool {
	return c.Op == models.OpMul || c.Op == models.OpDiv
}

// IsGain 是否为收益事件
func (c ChanceEvent) IsGain() bool {
	if c.Computed() {
		return c.Gain
	}
	return c.Amount > 0
}

// Value 事件金额（绝对值）
func (c ChanceEvent) Value() int {
	switch c.Op {
	case models.OpMul:
		return c.A * c.B
	case models.OpDiv:
		if c.B == 0 {
			return 0
		}
		return c.A / c.B
	}
	if c.Amount < 0 {
		return -c.Amount
	}
	return c.Amount
}

// Board 棋盘定义
type Board struct {
	Name   string        `yaml:"name"`
	Tiles  []models.Tile `yaml:"tiles"`
	Chance []ChanceEvent `yaml:"chance"`
}

// Default 内置上海棋盘
func Default() (*Board, error) {
	return Parse(defaultBoard)
}

// Load 从文件加载棋盘，path为空时使用内置棋盘
func Load(path string) (*Board, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "读取棋盘文件 %s", path)
	}
	return Parse(data)
}

// Parse 解析YAML棋盘并校验
func Parse(data []byte) (*Board, error) {
	b := &Board{}
	if err := yaml.Unmarshal(data, b); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "解析棋盘YAML")
	}
	for i := range b.Tiles {
		if b.Tiles[i].Type == models.TileProperty {
			b.Tiles[i].Level = 1
		}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Size 格子数
func (b *Board) Size() int {
	return len(b.Tiles)
}

// CloneTiles 复制一份初始格子，供新对局使用
func (b *Board) CloneTiles() []models.Tile {
	tiles := make([]models.Tile, len(b.Tiles))
	for i, t := range b.Tiles {
		tiles[i] = t.Clone()
		tiles[i].Reset()
	}
	return tiles
}

// Validate 校验棋盘
func (b *Board) Validate() error {
	if len(b.Tiles) < 4 {
		return errors.Newf(errors.ErrInvalidBoard, "格子数过少: %d", len(b.Tiles))
	}
	if b.Tiles[0].Type != models.TileStart {
		return errors.New(errors.ErrInvalidBoard, "第0格必须是起点")
	}

	hasChance := false
	for i, t := range b.Tiles {
		if t.ID != i {
			return errors.Newf(errors.ErrInvalidBoard, "格子ID %d 与位置 %d 不一致", t.ID, i)
		}
		if err := validateTile(t); err != nil {
			return err
		}
		switch t.Type {
		case models.TileChance:
			hasChance = true
		case models.TileStart:
			if i != 0 {
				return errors.Newf(errors.ErrInvalidBoard, "只能有一个起点，第%d格重复", i)
			}
		}
	}

	if hasChance && len(b.Chance) == 0 {
		return errors.New(errors.ErrInvalidBoard, "存在运气卡格子但事件表为空")
	}
	for i, evt := range b.Chance {
		if err := validateChance(evt); err != nil {
			return errors.Wrapf(err, errors.ErrInvalidBoard, "运气卡事件 #%d", i)
		}
	}
	return nil
}

func validateTile(t models.Tile) error {
	switch t.Type {
	case models.TileStart, models.TileChance:
	case models.TileProperty:
		if t.Price <= 0 || t.Rent <= 0 {
			return errors.Newf(errors.ErrInvalidBoard, "地产 %s 的价格和租金必须大于0", t.Name)
		}
	case models.TileBank:
		r := t.Bank
		if r == nil {
			return errors.Newf(errors.ErrInvalidBoard, "银行格子 %s 缺少规则", t.Name)
		}
		switch r.Kind {
		case models.BankInterest:
			if r.Periods <= 0 || r.Rate <= 0 {
				return errors.Newf(errors.ErrInvalidBoard, "银行格子 %s 的期数和利率必须大于0", t.Name)
			}
		case models.BankTax:
			if r.PerProperty <= 0 || r.Minimum <= 0 {
				return errors.Newf(errors.ErrInvalidBoard, "税务格子 %s 的税额必须大于0", t.Name)
			}
		default:
			return errors.Newf(errors.ErrInvalidBoard, "银行格子 %s 的种类无效: %s", t.Name, r.Kind)
		}
	case models.TileJail:
		j := t.Jail
		if j == nil {
			return errors.Newf(errors.ErrInvalidBoard, "休息站 %s 缺少出狱题目", t.Name)
		}
		if j.Divisor <= 0 || j.Dividend <= 0 || j.Dividend%j.Divisor != 0 {
			return errors.Newf(errors.ErrInvalidBoard, "休息站 %s 的题目必须能整除", t.Name)
		}
	default:
		return errors.Newf(errors.ErrInvalidBoard, "未知格子类型: %s", t.Type)
	}
	return nil
}

func validateChance(evt ChanceEvent) error {
	switch evt.Op {
	case "":
		if evt.Amount == 0 {
			return fmt.Errorf("固定金额不能为0")
		}
	case models.OpMul:
		if evt.A <= 0 || evt.B <= 0 {
			return fmt.Errorf("乘法事件的因数必须大于0")
		}
	case models.OpDiv:
		if evt.A <= 0 || evt.B <= 0 || evt.A%evt.B != 0 {
			return fmt.Errorf("除法事件必须能整除")
		}
	default:
		return fmt.Errorf("不支持的运算: %s", evt.Op)
	}
	return nil
}
