package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
)

// AccountRepository implements ports.AccountRepository. It is only handed
// out by LedgerStore.WithinTx, so ctx always carries the session.
type AccountRepository struct {
	col *mongo.Collection
}

type accountDocument struct {
	Number         string               `bson:"_id"`
	OwnerID        string               `bson:"owner_id"`
	Kind           string               `bson:"kind"`
	Balance        primitive.Decimal128 `bson:"balance"`
	OverdraftLimit primitive.Decimal128 `bson:"overdraft_limit"`
	LockVersion    int64                `bson:"lock_version"`
}

func toAccountDocument(a *domain.Account) (accountDocument, error) {
	balance, err := toDecimal128(a.Balance)
	if err != nil {
		return accountDocument{}, err
	}
	limit, err := toDecimal128(a.OverdraftLimit)
	if err != nil {
		return accountDocument{}, err
	}
	return accountDocument{
		Number:         a.Number,
		OwnerID:        a.OwnerID,
		Kind:           string(a.Kind),
		Balance:        balance,
		OverdraftLimit: limit,
	}, nil
}

func (d accountDocument) toDomain() (*domain.Account, error) {
	balance, err := fromDecimal128(d.Balance)
	if err != nil {
		return nil, err
	}
	limit, err := fromDecimal128(d.OverdraftLimit)
	if err != nil {
		return nil, err
	}
	return &domain.Account{
		Number:         d.Number,
		OwnerID:        d.OwnerID,
		Kind:           domain.AccountKind(d.Kind),
		Balance:        balance,
		OverdraftLimit: limit,
	}, nil
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("encode decimal %s: %w", d, err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode decimal %s: %w", v, err)
	}
	return d, nil
}

func (r *AccountRepository) Exists(ctx context.Context, number string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": number}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count account: %w", err)
	}
	return n > 0, nil
}

// Find returns the account and write-locks it for the rest of the transaction.
func (r *AccountRepository) Find(ctx context.Context, number string) (*domain.Account, error) {
	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": number},
		bson.M{"$inc": bson.M{"lock_version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	return decodeAccount(res, number)
}

func (r *AccountRepository) Get(ctx context.Context, number string) (*domain.Account, error) {
	return decodeAccount(r.col.FindOne(ctx, bson.M{"_id": number}), number)
}

func decodeAccount(res *mongo.SingleResult, number string) (*domain.Account, error) {
	var doc accountDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, number)
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain()
}

// FindAllOwnedBy locks and returns every account of ownerID ordered by number.
func (r *AccountRepository) FindAllOwnedBy(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	_, err := r.col.UpdateMany(ctx, bson.M{"owner_id": ownerID}, bson.M{"$inc": bson.M{"lock_version": 1}})
	if err != nil {
		return nil, fmt.Errorf("lock accounts: %w", err)
	}
	return r.ListOwnedBy(ctx, ownerID)
}

func (r *AccountRepository) ListOwnedBy(ctx context.Context, ownerID string) ([]*domain.Account, error) {
	cur, err := r.col.Find(ctx, bson.M{"owner_id": ownerID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find accounts: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Account
	for cur.Next(ctx) {
		var doc accountDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		a, err := doc.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, cur.Err()
}

func (r *AccountRepository) Save(ctx context.Context, a *domain.Account) error {
	doc, err := toAccountDocument(a)
	if err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"owner_id":        doc.OwnerID,
			"kind":            doc.Kind,
			"balance":         doc.Balance,
			"overdraft_limit": doc.OverdraftLimit,
		},
		"$inc": bson.M{"lock_version": 1},
	}
	_, err = r.col.UpdateOne(ctx, bson.M{"_id": doc.Number}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, number string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": number})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, number)
	}
	return nil
}
