package archive

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/wfunc/math-tycoon/internal/config"
	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/models"
)

type StoreTestSuite struct {
	suite.Suite
	open  func() (Store, error)
	store Store
	ctx   context.Context
	base  time.Time
}

func (s *StoreTestSuite) SetupTest() {
	store, err := s.open()
	s.Require().NoError(err)
	s.store = store
	s.ctx = context.Background()
	s.base = time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
}

func (s *StoreTestSuite) TearDownTest() {
	s.NoError(s.store.Close())
}

func (s *StoreTestSuite) wrong(i int, gameID string, op models.OpKind) *models.WrongAnswer {
	return &models.WrongAnswer{
		RecordID:    fmt.Sprintf("rec-%02d", i),
		GameID:      gameID,
		PlayerID:    models.PlayerOne,
		Op:          op,
		Prompt:      "你现有 ¥2,000，花费 ¥200，剩余多少？",
		Answer:      1800,
		WrongOption: 1900,
		Explanation: "2000 - 200 = 1800",
		CreatedAt:   s.base.Add(time.Duration(i) * time.Minute),
	}
}

func (s *StoreTestSuite) TestRecordAndList() {
	s.Require().NoError(s.store.Record(s.ctx, s.wrong(1, "g1", models.OpSub)))
	s.Require().NoError(s.store.Record(s.ctx, s.wrong(2, "g1", models.OpMul)))
	s.Require().NoError(s.store.Record(s.ctx, s.wrong(3, "g2", models.OpSub)))

	all, err := s.store.List(s.ctx, Query{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("rec-03", all[0].RecordID)
	s.Equal("rec-01", all[2].RecordID)
	s.Equal(1800, all[0].Answer)
	s.Equal(1900, all[0].WrongOption)

	byGame, err := s.store.List(s.ctx, Query{GameID: "g1"})
	s.Require().NoError(err)
	s.Len(byGame, 2)

	byOp, err := s.store.List(s.ctx, Query{Op: models.OpSub})
	s.Require().NoError(err)
	s.Len(byOp, 2)
	for _, r := range byOp {
		s.Equal(models.OpSub, r.Op)
	}

	limited, err := s.store.List(s.ctx, Query{Limit: 1})
	s.Require().NoError(err)
	s.Require().Len(limited, 1)
	s.Equal("rec-03", limited[0].RecordID)
}

func (s *StoreTestSuite) TestListEmpty() {
	out, err := s.store.List(s.ctx, Query{})
	s.Require().NoError(err)
	s.NotNil(out)
	s.Empty(out)
}

func (s *StoreTestSuite) TestSummary() {
	s.Require().NoError(s.store.Record(s.ctx, s.wrong(1, "g1", models.OpSub)))
	s.Require().NoError(s.store.Record(s.ctx, s.wrong(2, "g1", models.OpSub)))
	s.Require().NoError(s.store.Record(s.ctx, s.wrong(3, "g1", models.OpDiv)))

	sum, err := s.store.Summary(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, sum.Total)
	s.Equal([]OpCount{
		{Op: models.OpAdd, Count: 0},
		{Op: models.OpSub, Count: 2},
		{Op: models.OpMul, Count: 0},
		{Op: models.OpDiv, Count: 1},
	}, sum.ByOp)
}

func (s *StoreTestSuite) TestRejectInvalid() {
	s.True(errors.Is(s.store.Record(s.ctx, nil), errors.ErrInvalidParam))

	w := s.wrong(1, "", models.OpSub)
	s.True(errors.Is(s.store.Record(s.ctx, w), errors.ErrInvalidParam))

	w = s.wrong(1, "g1", "MOD")
	s.True(errors.Is(s.store.Record(s.ctx, w), errors.ErrInvalidParam))
}

func (s *StoreTestSuite) TestDuplicateRecordID() {
	s.Require().NoError(s.store.Record(s.ctx, s.wrong(1, "g1", models.OpSub)))
	s.Error(s.store.Record(s.ctx, s.wrong(1, "g1", models.OpSub)))

	out, err := s.store.List(s.ctx, Query{})
	s.Require().NoError(err)
	s.Len(out, 1)
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &StoreTestSuite{open: func() (Store, error) {
		return NewMemoryStore(), nil
	}})
}

func TestSQLiteStore(t *testing.T) {
	suite.Run(t, &StoreTestSuite{open: func() (Store, error) {
		return OpenSQLite(":memory:", "silent")
	}})
}

func TestOpen(t *testing.T) {
	st, err := Open(config.ArchiveConfig{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, st)

	st, err = Open(config.ArchiveConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"})
	require.NoError(t, err)
	assert.IsType(t, &GormStore{}, st)
	assert.NoError(t, st.Close())

	_, err = Open(config.ArchiveConfig{Driver: "oracle"})
	assert.True(t, errors.Is(err, errors.ErrConfigValidate))
}
