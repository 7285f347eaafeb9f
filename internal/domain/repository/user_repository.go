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

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	// SaveStats writes back the submission statistics and solve history of user.
	SaveStats(ctx context.Context, user *model.User) error
	UpdateRole(ctx context.Context, id, role string) error
	Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
}

type mongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(database.UsersCollection)}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.SolvedProblems == nil {
		user.SolvedProblems = []model.SolvedProblem{}
	}
	if user.RecentActivity == nil {
		user.RecentActivity = []model.ActivityEntry{}
	}

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("mongoUserRepository.Create: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, op string, filter bson.M) (*model.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var user model.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, mapMongoError(op, err)
	}
	return &user, nil
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "mongoUserRepository.FindByEmail", bson.M{"email": email})
}

func (r *mongoUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.findOne(ctx, "mongoUserRepository.FindByUsername", bson.M{"username": username})
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, "mongoUserRepository.FindByID", bson.M{"_id": id})
}

func (r *mongoUserRepository) SaveStats(ctx context.Context, user *model.User) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	user.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"problemsSolved":   user.ProblemsSolved,
		"totalSubmissions": user.TotalSubmissions,
		"accuracy":         user.Accuracy,
		"streak":           user.Streak,
		"score":            user.Score,
		"lastActive":       user.LastActive,
		"solvedProblems":   user.SolvedProblems,
		"recentActivity":   user.RecentActivity,
		"updatedAt":        user.UpdatedAt,
	}}
	res, err := r.coll.UpdateByID(ctx, user.ID, update)
	if err != nil {
		return fmt.Errorf("mongoUserRepository.SaveStats: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) UpdateRole(ctx context.Context, id, role string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("mongoUserRepository.UpdateRole: %w", err)
	}
	if res.MatchedCount == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "score", Value: -1}, {Key: "problemsSolved", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"username": 1, "score": 1, "problemsSolved": 1, "accuracy": 1, "streak": 1})

	cur, err := r.coll.Find(ctx, bson.M{"role": bson.M{"$ne": model.RoleAdmin}}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongoUserRepository.Leaderboard: %w", err)
	}
	defer cur.Close(ctx)

	entries := []model.LeaderboardEntry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("mongoUserRepository.Leaderboard decode: %w", err)
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
