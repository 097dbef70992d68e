package notificationrepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb"
	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/notificationrepo"
)

type notificationDoc struct {
	ID        string    `bson:"_id"`
	Message   string    `bson:"message"`
	Type      string    `bson:"type"`
	CreatedAt time.Time `bson:"created_at"`
}

// Repo is a MongoDB implementation of notificationrepo.Repository.
type Repo struct {
	coll *mongo.Collection
}

func NewRepo(d *mongo.Database) *Repo {
	return &Repo{coll: d.Collection(mongodb.NotificationsCollection)}
}

func (r *Repo) Create(ctx context.Context, n notificationrepo.Notification) error {
	_, err := r.coll.InsertOne(ctx, notificationDoc{
		ID:        string(n.ID),
		Message:   n.Message,
		Type:      n.Type,
		CreatedAt: n.CreatedAt.UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return notificationrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) List(ctx context.Context) ([]notificationrepo.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []notificationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]notificationrepo.Notification, 0, len(docs))
	for _, d := range docs {
		out = append(out, notificationrepo.Notification{
			ID:        domain.NotificationID(d.ID),
			Message:   d.Message,
			Type:      d.Type,
			CreatedAt: d.CreatedAt.UTC(),
		})
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.NotificationID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": string(id)})
	return err
}
