package triprepo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Overland-East-Bay/roadbook-api/internal/adapters/mongodb"
	"github.com/Overland-East-Bay/roadbook-api/internal/domain"
	"github.com/Overland-East-Bay/roadbook-api/internal/ports/out/triprepo"
)

type tripDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Date      time.Time `bson:"date"`
	Budget    float64   `bson:"budget"`
	CreatedAt time.Time `bson:"created_at"`
}

// Repo is a MongoDB implementation of triprepo.Repository.
type Repo struct {
	coll *mongo.Collection
}

func NewRepo(d *mongo.Database) *Repo {
	return &Repo{coll: d.Collection(mongodb.TripsCollection)}
}

func (r *Repo) Create(ctx context.Context, t triprepo.Trip) error {
	_, err := r.coll.InsertOne(ctx, tripDoc{
		ID:        string(t.ID),
		Name:      t.Name,
		Date:      t.Date.UTC(),
		Budget:    t.Budget,
		CreatedAt: t.CreatedAt.UTC(),
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return triprepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) List(ctx context.Context) ([]triprepo.Trip, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []tripDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]triprepo.Trip, 0, len(docs))
	for _, d := range docs {
		out = append(out, triprepo.Trip{
			ID:        domain.TripID(d.ID),
			Name:      d.Name,
			Date:      d.Date.UTC(),
			Budget:    d.Budget,
			CreatedAt: d.CreatedAt.UTC(),
		})
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.TripID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": string(id)})
	return err
}
