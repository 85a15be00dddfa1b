package board

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/models"
)

func TestDefaultBoard(t *testing.T) {
	b, err := Default()
	require.NoError(t, err)

	assert.Equal(t, 16, b.Size())
	assert.Equal(t, models.TileStart, b.Tiles[0].Type)

	nanjing := b.Tiles[1]
	assert.Equal(t, "南京路", nanjing.Name)
	assert.Equal(t, 200, nanjing.Price)
	assert.Equal(t, 40, nanjing.Rent)
	assert.Equal(t, 1, nanjing.Level)
	assert.False(t, nanjing.Owned())

	require.NotNil(t, b.Tiles[6].Bank)
	assert.Equal(t, models.BankInterest, b.Tiles[6].Bank.Kind)
	assert.Equal(t, 150, b.Tiles[6].Bank.Periods*b.Tiles[6].Bank.Rate)
	require.NotNil(t, b.Tiles[14].Bank)
	assert.Equal(t, models.BankTax, b.Tiles[14].Bank.Kind)
	require.NotNil(t, b.Tiles[8].Jail)
	assert.Equal(t, 12, b.Tiles[8].Jail.Dividend/b.Tiles[8].Jail.Divisor)

	assert.NotEmpty(t, b.Chance)
}

func TestChanceEventValue(t *testing.T) {
	tests := []struct {
		evt   ChanceEvent
		value int
		gain  bool
	}{
		{ChanceEvent{Amount: 100}, 100, true},
		{ChanceEvent{Amount: -50}, 50, false},
		{ChanceEvent{Op: models.OpMul, A: 40, B: 3, Gain: true}, 120, true},
		{ChanceEvent{Op: models.OpDiv, A: 90, B: 3}, 30, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.value, tt.evt.Value())
		assert.Equal(t, tt.gain, tt.evt.IsGain())
	}
}

func TestCloneTilesIsolated(t *testing.T) {
	b, err := Default()
	require.NoError(t, err)

	tiles := b.CloneTiles()
	tiles[1].Owner = models.PlayerOne
	tiles[1].Level = 3
	tiles[6].Bank.Rate = 1

	assert.False(t, b.Tiles[1].Owned())
	assert.Equal(t, 1, b.Tiles[1].Level)
	assert.Equal(t, 50, b.Tiles[6].Bank.Rate)
}

func TestParseInvalid(t *testing.T) {
	const (
		p1 = "  - {id: 1, name: b, type: PROPERTY, price: 10, rent: 1}\n"
		p2 = "  - {id: 2, name: c, type: PROPERTY, price: 10, rent: 1}\n"
		p3 = "  - {id: 3, name: d, type: PROPERTY, price: 10, rent: 1}\n"
	)
	start := "tiles:\n  - {id: 0, name: a, type: START}\n"

	tests := []struct {
		name string
		yaml string
	}{
		{"格子过少", start},
		{"起点错位", "tiles:\n  - {id: 0, name: a, type: PROPERTY, price: 10, rent: 1}\n  - {id: 1, name: b, type: START}\n" + p2 + p3},
		{"多个起点", start + p1 + "  - {id: 2, name: c, type: START}\n" + p3},
		{"ID不连续", start + p2 + p3 + "  - {id: 4, name: e, type: PROPERTY, price: 10, rent: 1}\n"},
		{"地产无价格", start + "  - {id: 1, name: b, type: PROPERTY}\n" + p2 + p3},
		{"休息站不能整除", start + "  - {id: 1, name: b, type: JAIL, jail: {dividend: 10, divisor: 3}}\n" + p2 + p3},
		{"运气卡表为空", start + "  - {id: 1, name: b, type: CHANCE}\n" + p2 + p3},
		{"除法事件不能整除", start + "  - {id: 1, name: b, type: CHANCE}\n" + p2 + p3 + "chance:\n  - {text: x, op: DIV, a: 10, b: 3}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrInvalidBoard))
		})
	}

	b, err := Parse([]byte(start + p1 + p2 + p3))
	require.NoError(t, err)
	assert.Equal(t, 4, b.Size())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(path, defaultBoard, 0o644))

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "上海大冒险", b.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, errors.ErrConfigLoad))

	_, err = Parse([]byte("tiles: ["))
	assert.True(t, errors.Is(err, errors.ErrConfigParse))
}
