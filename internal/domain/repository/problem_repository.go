package repository

import (
	"context"
	"fmt"
	"time"

	"codecamp/internal/common"
	"codecamp/internal/domain/model"
	"codecamp/internal/platform/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProblemFilter struct {
	Difficulty model.ProblemDifficulty
	Page       int
	PageSize   int
}

type ProblemRepository interface {
	Create(ctx context.Context, problem *model.Problem) error
	// Update replaces the editable content of a problem. Counters are left alone.
	Update(ctx context.Context, problem *model.Problem) error
	FindByID(ctx context.Context, id string) (*model.Problem, error)
	FindBySlug(ctx context.Context, slug string) (*model.Problem, error)
	List(ctx context.Context, filter ProblemFilter) ([]model.Problem, int64, error)
	IncrementCounters(ctx context.Context, id string, accepted bool) error
}

type mongoProblemRepository struct {
	coll *mongo.Collection
}

func NewMongoProblemRepository(db *mongo.Database) ProblemRepository {
	return &mongoProblemRepository{coll: db.Collection(database.ProblemsCollection)}
}

func (r *mongoProblemRepository) Create(ctx context.Context, p *model.Problem) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("problem with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("mongoProblemRepository.Create: %w", err)
	}
	return nil
}

func (r *mongoProblemRepository) Update(ctx context.Context, p *model.Problem) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	p.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"title":            p.Title,
		"slug":             p.Slug,
		"description":      p.Description,
		"difficulty":       p.Difficulty,
		"testCases":        p.TestCases,
		"starterTemplates": p.StarterTemplates,
		"cpuTimeLimit":     p.CPUTimeLimit,
		"memoryLimit":      p.MemoryLimit,
		"updatedAt":        p.UpdatedAt,
	}}
	res, err := r.coll.UpdateByID(ctx, p.ID, update)
	if err != nil {
		return mapMongoError("mongoProblemRepository.Update", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *mongoProblemRepository) findOne(ctx context.Context, op string, filter bson.M) (*model.Problem, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var p model.Problem
	if err := r.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, mapMongoError(op, err)
	}
	return &p, nil
}

func (r *mongoProblemRepository) FindByID(ctx context.Context, id string) (*model.Problem, error) {
	return r.findOne(ctx, "mongoProblemRepository.FindByID", bson.M{"_id": id})
}

func (r *mongoProblemRepository) FindBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	return r.findOne(ctx, "mongoProblemRepository.FindBySlug", bson.M{"slug": slug})
}

func (r *mongoProblemRepository) List(ctx context.Context, f ProblemFilter) ([]model.Problem, int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if f.Difficulty != "" {
		filter["difficulty"] = f.Difficulty
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("mongoProblemRepository.List count: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.PageSize)).
		SetLimit(int64(f.PageSize)).
		// list pages never carry test data
		SetProjection(bson.M{"testCases": 0, "starterTemplates": 0})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("mongoProblemRepository.List: %w", err)
	}
	defer cur.Close(ctx)

	problems := []model.Problem{}
	if err := cur.All(ctx, &problems); err != nil {
		return nil, 0, fmt.Errorf("mongoProblemRepository.List decode: %w", err)
	}
	return problems, total, nil
}

func (r *mongoProblemRepository) IncrementCounters(ctx context.Context, id string, accepted bool) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	inc := bson.M{"totalSubmissions": 1}
	if accepted {
		inc["acceptedSubmissions"] = 1
	}
	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$inc": inc})
	if err != nil {
		return fmt.Errorf("mongoProblemRepository.IncrementCounters: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}
