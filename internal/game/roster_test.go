package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/models"
)

func TestRoster(t *testing.T) {
	tests := []struct {
		mode      Mode
		ids       []string
		automated []bool
	}{
		{ModeVsAI, []string{models.PlayerOne, models.PlayerAI}, []bool{false, true}},
		{ModeVsFriend, []string{models.PlayerOne, models.PlayerTwo}, []bool{false, false}},
		{ModeVsFriendAndAI, []string{models.PlayerOne, models.PlayerTwo, models.PlayerAI}, []bool{false, false, true}},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			players, err := Roster(tt.mode, 2000)
			require.NoError(t, err)
			require.Len(t, players, len(tt.ids))
			for i, p := range players {
				assert.Equal(t, tt.ids[i], p.ID)
				assert.Equal(t, tt.automated[i], p.Automated)
				assert.Equal(t, 2000, p.Money)
				assert.Zero(t, p.Position)
				assert.Empty(t, p.Properties)
			}
		})
	}

	_, err := Roster(ModeCustom, 2000)
	assert.True(t, errors.Is(err, errors.ErrInvalidRoster))
}

func TestPrepareRoster(t *testing.T) {
	players, primary, err := prepareRoster([]models.Player{
		{ID: "bot", Automated: true, Money: 500},
		{ID: "kid", Position: 3},
	}, 16, 2000)
	require.NoError(t, err)
	assert.Equal(t, "kid", primary)
	assert.Equal(t, 500, players[0].Money)
	assert.Equal(t, 2000, players[1].Money)
	assert.Equal(t, "kid", players[1].Name)
	assert.Equal(t, 3, players[1].Position)

	bad := [][]models.Player{
		{{ID: "a"}},
		{{ID: "a"}, {ID: "a"}},
		{{ID: "a"}, {ID: ""}},
		{{ID: "a"}, {ID: "b", Position: 16}},
		{{ID: "a"}, {ID: "b", Money: -1}},
		{{ID: "a", Automated: true}, {ID: "b", Automated: true}},
	}
	for i, roster := range bad {
		_, _, err := prepareRoster(roster, 16, 2000)
		assert.True(t, errors.Is(err, errors.ErrInvalidRoster), "case %d", i)
	}
}

func TestNextActive(t *testing.T) {
	mk := func(bankrupt ...bool) []models.Player {
		ps := make([]models.Player, len(bankrupt))
		for i, b := range bankrupt {
			ps[i] = models.Player{ID: string(rune('a' + i)), Bankrupt: b}
		}
		return ps
	}

	tests := []struct {
		name    string
		players []models.Player
		current int
		want    int
	}{
		{"next", mk(false, false, false), 0, 1},
		{"wrap", mk(false, false, false), 2, 0},
		{"skip bankrupt", mk(false, true, false), 0, 2},
		{"skip and wrap", mk(false, false, true), 1, 0},
		{"only self left", mk(false, true, true), 0, 0},
		{"empty", nil, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextActive(tt.players, tt.current))
		})
	}
}
