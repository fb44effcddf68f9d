package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
)

const (
	managersLockID    = "managers"
	clientNumberIndex = "client_number_1"
)

// UserRepository implements ports.UserRepository.
type UserRepository struct {
	col   *mongo.Collection
	locks *mongo.Collection
}

type userDocument struct {
	UserID       string `bson:"_id"`
	PasswordHash string `bson:"password_hash"`
	LastName     string `bson:"last_name"`
	FirstName    string `bson:"first_name"`
	Address      string `bson:"address"`
	Male         bool   `bson:"male"`
	Role         string `bson:"role"`
	ClientNumber string `bson:"client_number,omitempty"`
}

func toUserDocument(u *domain.User) userDocument {
	doc := userDocument{
		UserID:       u.UserID,
		PasswordHash: u.PasswordHash,
		LastName:     u.LastName,
		FirstName:    u.FirstName,
		Address:      u.Address,
		Male:         u.Male,
		Role:         string(u.Role),
	}
	if u.IsClient() {
		doc.ClientNumber = u.Client.Number
	}
	return doc
}

func (d userDocument) toDomain() *domain.User {
	u := &domain.User{
		UserID:       d.UserID,
		PasswordHash: d.PasswordHash,
		LastName:     d.LastName,
		FirstName:    d.FirstName,
		Address:      d.Address,
		Male:         d.Male,
		Role:         domain.Role(d.Role),
	}
	if u.Role == domain.RoleClient {
		u.Client = &domain.ClientProfile{Number: d.ClientNumber, Accounts: map[string]*domain.Account{}}
	}
	return u
}

func (r *UserRepository) Exists(ctx context.Context, userID string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": userID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count user: %w", err)
	}
	return n > 0, nil
}

// Find write-locks the user document, so a transaction that reads the owner
// conflicts with one that deletes it.
func (r *UserRepository) Find(ctx context.Context, userID string) (*domain.User, error) {
	res := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": userID},
		bson.M{"$inc": bson.M{"lock_version": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	return decodeUser(res, userID)
}

func (r *UserRepository) Get(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": userID}, userID)
}

func (r *UserRepository) FindByClientNumber(ctx context.Context, number string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"client_number": number}, "client "+number)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, label string) (*domain.User, error) {
	return decodeUser(r.col.FindOne(ctx, filter), label)
}

func decodeUser(res *mongo.SingleResult, label string) (*domain.User, error) {
	var doc userDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, label)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	cur, err := r.col.Find(ctx, bson.M{"role": string(role)}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	out := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// CountManagers bumps the managers lock document before counting, so two
// transactions that both count managers cannot both commit.
func (r *UserRepository) CountManagers(ctx context.Context) (int, error) {
	_, err := r.locks.UpdateOne(ctx,
		bson.M{"_id": managersLockID},
		bson.M{"$inc": bson.M{"version": 1}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return 0, fmt.Errorf("lock managers: %w", err)
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"role": string(domain.RoleManager)})
	if err != nil {
		return 0, fmt.Errorf("count managers: %w", err)
	}
	return int(n), nil
}

func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
	doc := toUserDocument(u)
	_, err := r.col.ReplaceOne(ctx, bson.M{"_id": doc.UserID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save user: %w", mapDuplicateKey(err, doc))
	}
	return nil
}

// mapDuplicateKey tells a client number collision from an _id collision by
// the index named in the server message.
func mapDuplicateKey(err error, doc userDocument) error {
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	if strings.Contains(err.Error(), clientNumberIndex) {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateClientNumber, doc.ClientNumber)
	}
	return fmt.Errorf("%w: %s", domain.ErrDuplicateUser, doc.UserID)
}

func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	return nil
}
