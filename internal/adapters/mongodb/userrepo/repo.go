package userrepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb"
	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/userrepo"
)

type userDoc struct {
	ID           string    `bson:"_id"`
	FirstName    string    `bson:"first_name"`
	LastName     string    `bson:"last_name"`
	Email        string    `bson:"email"`
	PasswordHash []byte    `bson:"password_hash"`
	CreatedAt    time.Time `bson:"created_at"`
}

// Repo is a MongoDB implementation of userrepo.Repository.
// Email uniqueness relies on the users_email_unique index (see mongodb.EnsureIndexes).
type Repo struct {
	coll *mongo.Collection
}

func NewRepo(d *mongo.Database) *Repo {
	return &Repo{coll: d.Collection(mongodb.UsersCollection)}
}

func (r *Repo) Create(ctx context.Context, u userrepo.User) error {
	_, err := r.coll.InsertOne(ctx, userDoc{
		ID:           string(u.ID),
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt.UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if strings.Contains(err.Error(), mongodb.UsersEmailIndex) {
				return userrepo.ErrEmailTaken
			}
			return userrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (userrepo.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *Repo) GetByID(ctx context.Context, id domain.UserID) (userrepo.User, error) {
	return r.findOne(ctx, bson.M{"_id": string(id)})
}

func (r *Repo) findOne(ctx context.Context, filter bson.M) (userrepo.User, error) {
	var doc userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return userrepo.User{}, userrepo.ErrNotFound
		}
		return userrepo.User{}, err
	}
	return userrepo.User{
		ID:           domain.UserID(doc.ID),
		FirstName:    doc.FirstName,
		LastName:     doc.LastName,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt.UTC(),
	}, nil
}
