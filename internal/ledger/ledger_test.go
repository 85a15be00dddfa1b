package ledger

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/models"
	"github.com/wfunc/math-tycoon/internal/rng"
)

type LedgerTestSuite struct {
	suite.Suite
	players []models.Player
	tiles   []models.Tile
	ledger  *Ledger
}

func (s *LedgerTestSuite) SetupTest() {
	s.players = []models.Player{
		{ID: models.PlayerOne, Name: "我", Money: 2000, Properties: []int{}},
		{ID: models.PlayerTwo, Name: "朋友", Money: 2000, Properties: []int{}},
		{ID: models.PlayerAI, Name: "机器人", Money: 2000, Properties: []int{}, Automated: true},
	}
	s.tiles = []models.Tile{
		{ID: 0, Type: models.TileStart},
		{ID: 1, Type: models.TileProperty, Price: 200, Rent: 40, Level: 1},
		{ID: 2, Type: models.TileProperty, Price: 250, Rent: 50, Level: 1},
		{ID: 3, Type: models.TileChance},
	}
	s.ledger = New(s.players, s.tiles)
}

func (s *LedgerTestSuite) TestPurchaseExample() {
	s.Require().NoError(s.ledger.Purchase(models.PlayerOne, 1))

	s.Equal(1800, s.players[0].Money)
	s.Equal(models.PlayerOne, s.tiles[1].Owner)
	s.Equal(1, s.tiles[1].Level)
	s.Equal([]int{1}, s.players[0].Properties)

	// 已有主的地产不能再买
	err := s.ledger.Purchase(models.PlayerTwo, 1)
	s.True(errors.Is(err, errors.ErrInvalidParam))
}

func (s *LedgerTestSuite) TestPurchaseInsufficientFunds() {
	s.players[1].Money = 100
	err := s.ledger.Purchase(models.PlayerTwo, 1)
	s.True(errors.Is(err, errors.ErrInsufficientFunds))
	s.Equal(100, s.players[1].Money)
	s.False(s.tiles[1].Owned())
}

func (s *LedgerTestSuite) TestUpgrade() {
	s.Require().NoError(s.ledger.Purchase(models.PlayerOne, 1))

	level, err := s.ledger.Upgrade(models.PlayerOne, 1, 100, 3)
	s.Require().NoError(err)
	s.Equal(2, level)
	level, err = s.ledger.Upgrade(models.PlayerOne, 1, 100, 3)
	s.Require().NoError(err)
	s.Equal(3, level)
	s.Equal(1600, s.players[0].Money)

	_, err = s.ledger.Upgrade(models.PlayerOne, 1, 100, 3)
	s.True(errors.Is(err, errors.ErrInvalidParam))

	_, err = s.ledger.Upgrade(models.PlayerTwo, 1, 100, 3)
	s.True(errors.Is(err, errors.ErrInvalidParam))
}

func (s *LedgerTestSuite) TestRentExample() {
	s.Require().NoError(s.ledger.Purchase(models.PlayerOne, 1))
	s.tiles[1].Level = 2
	rent := s.tiles[1].Rent * s.tiles[1].Level
	s.Equal(80, rent)

	res, err := s.ledger.ChargeOrBankrupt(models.PlayerTwo, rent, models.PlayerOne)
	s.Require().NoError(err)
	s.Equal(Charge{Paid: 80, Transferred: 80}, res)
	s.Equal(1920, s.players[1].Money)
	s.Equal(1880, s.players[0].Money)
}

func (s *LedgerTestSuite) TestShortfallBankruptcy() {
	s.Require().NoError(s.ledger.Purchase(models.PlayerTwo, 2))
	s.players[1].Money = 50

	res, err := s.ledger.ChargeOrBankrupt(models.PlayerTwo, 80, models.PlayerOne)
	s.Require().NoError(err)
	s.True(res.Bankrupt)
	s.Equal(50, res.Transferred)
	s.Equal(2050, s.players[0].Money)

	p2 := s.players[1]
	s.True(p2.Bankrupt)
	s.Equal(0, p2.Money)
	s.Empty(p2.Properties)
	s.False(s.tiles[2].Owned())
	s.Equal(1, s.tiles[2].Level)

	// 还剩两名玩家，对局继续
	_, ended := s.ledger.Winner()
	s.False(ended)
}

func (s *LedgerTestSuite) TestBankruptIsTerminal() {
	s.players[2].Money = 10
	_, err := s.ledger.ChargeOrBankrupt(models.PlayerAI, 100, "")
	s.Require().NoError(err)
	s.True(s.players[2].Bankrupt)

	err = s.ledger.Credit(models.PlayerAI, 200)
	s.True(errors.Is(err, errors.ErrPlayerBankrupt))
	_, err = s.ledger.ChargeOrBankrupt(models.PlayerAI, 1, "")
	s.True(errors.Is(err, errors.ErrPlayerBankrupt))
	err = s.ledger.Purchase(models.PlayerAI, 1)
	s.True(errors.Is(err, errors.ErrPlayerBankrupt))

	s.True(s.players[2].Bankrupt)
	s.Equal(0, s.players[2].Money)
}

func (s *LedgerTestSuite) TestBankruptCreditorSkipped() {
	s.players[2].Money = 0
	_, err := s.ledger.ChargeOrBankrupt(models.PlayerAI, 1, "")
	s.Require().NoError(err)

	res, err := s.ledger.ChargeOrBankrupt(models.PlayerOne, 100, models.PlayerAI)
	s.Require().NoError(err)
	s.True(res.CreditorSkipped)
	s.Equal(1900, s.players[0].Money)
	s.Equal(0, s.players[2].Money)
}

func (s *LedgerTestSuite) TestWinnerDeclaredOnce() {
	s.players[1].Money = 0
	s.players[2].Money = 0

	_, err := s.ledger.ChargeOrBankrupt(models.PlayerTwo, 10, "")
	s.Require().NoError(err)
	_, ended := s.ledger.Winner()
	s.False(ended)

	_, err = s.ledger.ChargeOrBankrupt(models.PlayerAI, 10, models.PlayerOne)
	s.Require().NoError(err)
	winner, ended := s.ledger.Winner()
	s.True(ended)
	s.Equal(models.PlayerOne, winner)

	// 再次破产不会改写获胜者
	_, err = s.ledger.ChargeOrBankrupt(models.PlayerOne, 99999, "")
	s.Require().NoError(err)
	winner, _ = s.ledger.Winner()
	s.Equal(models.PlayerOne, winner)
}

func (s *LedgerTestSuite) TestInvalidArguments() {
	s.True(errors.Is(s.ledger.Credit(models.PlayerOne, -1), errors.ErrInvalidParam))
	s.True(errors.Is(s.ledger.Credit("P9", 1), errors.ErrPlayerNotFound))

	_, err := s.ledger.ChargeOrBankrupt(models.PlayerOne, -1, "")
	s.True(errors.Is(err, errors.ErrInvalidParam))
	_, err = s.ledger.ChargeOrBankrupt(models.PlayerOne, 1, models.PlayerOne)
	s.True(errors.Is(err, errors.ErrInvalidParam))
	_, err = s.ledger.ChargeOrBankrupt(models.PlayerOne, 1, "P9")
	s.True(errors.Is(err, errors.ErrPlayerNotFound))
	s.Equal(2000, s.players[0].Money)
}

// 任意扣款序列下余额都不会为负
func (s *LedgerTestSuite) TestMoneyNeverNegative() {
	src := rng.NewSeeded(99)
	ids := []string{models.PlayerOne, models.PlayerTwo, models.PlayerAI}

	for i := 0; i < 500; i++ {
		debtor := ids[src.IntN(len(ids))]
		creditor := ids[src.IntN(len(ids))]
		if creditor == debtor {
			creditor = ""
		}
		_, _ = s.ledger.ChargeOrBankrupt(debtor, src.IntN(400), creditor)
		if src.IntN(3) == 0 {
			_ = s.ledger.Credit(ids[src.IntN(len(ids))], src.IntN(300))
		}

		for _, p := range s.players {
			s.Require().GreaterOrEqual(p.Money, 0)
			if p.Bankrupt {
				s.Require().Equal(0, p.Money)
				s.Require().Empty(p.Properties)
			}
		}
	}
}

func TestLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}
