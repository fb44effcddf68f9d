package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/ports"
)

const (
	collectionAccounts = "accounts"
	collectionUsers    = "users"
	collectionLocks    = "locks"
)

// LedgerStore implements ports.LedgerStore with multi-document transactions.
// Every read of a record that the transaction may change bumps its
// lock_version, so two transactions touching the same record conflict and
// the driver retries the loser.
type LedgerStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewLedgerStore(client *mongo.Client, db *mongo.Database) *LedgerStore {
	return &LedgerStore{client: client, db: db}
}

func (s *LedgerStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.LedgerTx) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongo start session: %w", err)
	}
	defer sess.EndSession(ctx)

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	tx := ledgerTx{
		accounts: &AccountRepository{col: s.db.Collection(collectionAccounts)},
		users: &UserRepository{
			col:   s.db.Collection(collectionUsers),
			locks: s.db.Collection(collectionLocks),
		},
	}
	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, tx)
	}, opts)
	return err
}

// EnsureIndexes creates the unique client number index. Account numbers and
// user ids are the _id of their documents.
func (s *LedgerStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.db.Collection(collectionUsers).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "client_number", Value: 1}},
			Options: options.Index().
				SetName(clientNumberIndex).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"client_number": bson.M{"$exists": true}}),
		},
		{Keys: bson.D{{Key: "role", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = s.db.Collection(collectionAccounts).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}},
	})
	return err
}

type ledgerTx struct {
	accounts *AccountRepository
	users    *UserRepository
}

func (t ledgerTx) Accounts() ports.AccountRepository { return t.accounts }
func (t ledgerTx) Users() ports.UserRepository       { return t.users }
