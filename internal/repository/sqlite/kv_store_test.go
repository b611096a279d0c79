package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/quizdeck/quizdeck/internal/repository"
	"github.com/quizdeck/quizdeck/internal/repository/sqlite"
	"github.com/quizdeck/quizdeck/internal/testutil"
)

type KVStoreSuite struct {
	suite.Suite
	db    *sql.DB
	store repository.ProgressStore
}

func (s *KVStoreSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.store = sqlite.NewProgressStore(s.db)
}

func (s *KVStoreSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *KVStoreSuite) TestLoad_AbsentKey() {
	value, err := s.store.Load(context.Background(), "progress:missing")
	s.Require().NoError(err)
	s.Assert().Nil(value)
}

func (s *KVStoreSuite) TestSaveAndLoad() {
	ctx := context.Background()

	err := s.store.Save(ctx, "progress:abc", []byte(`{"currentIndex":2}`))
	s.Require().NoError(err)

	value, err := s.store.Load(ctx, "progress:abc")
	s.Require().NoError(err)
	s.Assert().Equal(`{"currentIndex":2}`, string(value))
}

func (s *KVStoreSuite) TestSave_Overwrites() {
	ctx := context.Background()

	s.Require().NoError(s.store.Save(ctx, "progress:abc", []byte("first")))
	s.Require().NoError(s.store.Save(ctx, "progress:abc", []byte("second")))

	value, err := s.store.Load(ctx, "progress:abc")
	s.Require().NoError(err)
	s.Assert().Equal("second", string(value))
}

func (s *KVStoreSuite) TestKeysAreIndependent() {
	ctx := context.Background()

	s.Require().NoError(s.store.Save(ctx, "progress:a", []byte("one")))
	s.Require().NoError(s.store.Save(ctx, "session:a", []byte("two")))

	value, err := s.store.Load(ctx, "progress:a")
	s.Require().NoError(err)
	s.Assert().Equal("one", string(value))

	value, err = s.store.Load(ctx, "session:a")
	s.Require().NoError(err)
	s.Assert().Equal("two", string(value))
}

func (s *KVStoreSuite) TestClear() {
	ctx := context.Background()

	s.Require().NoError(s.store.Save(ctx, "progress:abc", []byte("data")))
	s.Require().NoError(s.store.Clear(ctx, "progress:abc"))

	value, err := s.store.Load(ctx, "progress:abc")
	s.Require().NoError(err)
	s.Assert().Nil(value)
}

func (s *KVStoreSuite) TestClear_AbsentKeyIsNoop() {
	s.Require().NoError(s.store.Clear(context.Background(), "progress:missing"))
}

func TestKVStoreSuite(t *testing.T) {
	suite.Run(t, new(KVStoreSuite))
}
