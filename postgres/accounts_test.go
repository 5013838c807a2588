package postgres_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/postgres"
)

var _ gatekeeper.AccountStore = (*postgres.AccountStore)(nil)

func (suite *DBTestSuite) TestCreateAccount() {
	// Arrange
	ctx := context.Background()
	store := postgres.NewAccountStore(suite.db)
	a := gatekeeper.Account{
		ID:           uuid.NewString(),
		Email:        "  Admin@Example.com ",
		Name:         "Admin",
		PasswordHash: []byte("hash"),
	}

	// Act
	err := store.CreateAccount(ctx, a)

	// Assert
	suite.Require().Nil(err)

	actual, err := store.AccountByID(ctx, a.ID)
	suite.Require().Nil(err)
	suite.Require().Equal("admin@example.com", actual.Email)
	suite.Require().Equal("Admin", actual.Name)
	suite.Require().Equal([]byte("hash"), actual.PasswordHash)
	suite.Require().True(actual.Exists())

	// Act
	err = store.CreateAccount(ctx, gatekeeper.Account{
		ID:           uuid.NewString(),
		Email:        "ADMIN@example.com",
		PasswordHash: []byte("other"),
	})

	// Assert
	suite.Require().ErrorIs(err, gatekeeper.ErrExists)
}

func (suite *DBTestSuite) TestCreateAccountMissingData() {
	// Arrange
	store := postgres.NewAccountStore(suite.db)

	// Act
	err := store.CreateAccount(context.Background(), gatekeeper.Account{Email: "a@x.com"})

	// Assert
	suite.Require().ErrorIs(err, gatekeeper.ErrMissingData)
}

func (suite *DBTestSuite) TestAccountByEmail() {
	// Arrange
	ctx := context.Background()
	store := postgres.NewAccountStore(suite.db)
	id := uuid.NewString()
	suite.Require().Nil(store.CreateAccount(ctx, gatekeeper.Account{
		ID:           id,
		Email:        "a@x.com",
		PasswordHash: []byte("hash"),
	}))

	// Act
	actual, err := store.AccountByEmail(ctx, "A@X.COM")

	// Assert
	suite.Require().Nil(err)
	suite.Require().Equal(id, actual.ID)

	// Act
	_, err = store.AccountByEmail(ctx, "b@x.com")

	// Assert
	suite.Require().ErrorIs(err, gatekeeper.ErrNotExist)

	// Act
	_, err = store.AccountByID(ctx, uuid.NewString())

	// Assert
	suite.Require().ErrorIs(err, gatekeeper.ErrNotExist)
}

func (suite *DBTestSuite) TestAccountByIDCancelled() {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := postgres.NewAccountStore(suite.db)

	// Act
	_, err := store.AccountByID(ctx, uuid.NewString())

	// Assert
	suite.Require().NotNil(err)
	suite.Require().NotErrorIs(err, gatekeeper.ErrNotExist)
}
