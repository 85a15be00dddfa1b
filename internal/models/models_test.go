package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayerClone(t *testing.T) {
	p := Player{ID: PlayerOne, Money: 2000, Properties: []int{1, 4}}
	c := p.Clone()
	c.Properties[0] = 9

	assert.Equal(t, 1, p.Properties[0])
	assert.True(t, p.Owns(4))
	assert.False(t, p.Owns(9))
	assert.NotNil(t, Player{}.Clone().Properties)
}

func TestTileReset(t *testing.T) {
	tile := Tile{ID: 1, Type: TileProperty, Owner: PlayerAI, Level: 3}
	tile.Reset()
	assert.False(t, tile.Owned())
	assert.Equal(t, 1, tile.Level)

	bank := Tile{ID: 6, Type: TileBank, Bank: &BankRule{Kind: BankInterest, Rate: 50}}
	c := bank.Clone()
	c.Bank.Rate = 10
	assert.Equal(t, 50, bank.Bank.Rate)
}

func TestQuestionOptions(t *testing.T) {
	q := Question{Answer: 1800, Options: []int{1700, 1800, 1900, 1810}, Op: OpSub}
	assert.True(t, q.IsCorrect(1800))
	assert.False(t, q.IsCorrect(1700))
	assert.True(t, q.HasOption(1810))
	assert.False(t, q.HasOption(5))
	assert.Equal(t, "-", OpSub.Symbol())
	assert.False(t, OpKind("MOD").Valid())
}
