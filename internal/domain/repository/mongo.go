package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codecamp/internal/common"

	"go.mongodb.org/mongo-driver/mongo"
)

// opTimeout bounds every single-collection call.
const opTimeout = 5 * time.Second

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}

// mapMongoError converts driver errors into common sentinels.
func mapMongoError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return common.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, common.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
