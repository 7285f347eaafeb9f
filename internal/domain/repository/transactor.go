package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Transactor runs fn inside one transactional boundary. Repositories called
// with the ctx handed to fn take part in the transaction. fn may run more
// than once on transient conflicts, so it must re-read what it modifies.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTransactor struct {
	client *mongo.Client
}

// NewTransactor returns a multi-document transaction runner, or a pass-through
// one when transactions are disabled (standalone mongod without a replica set).
func NewTransactor(client *mongo.Client, enabled bool) Transactor {
	if !enabled || client == nil {
		return sequentialTransactor{}
	}
	return &mongoTransactor{client: client}
}

func (t *mongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().SetWriteConcern(writeconcern.Majority())
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, txnOpts)
	return err
}

// sequentialTransactor runs fn once with no atomicity. A failure between two
// writes inside fn leaves the earlier write applied.
type sequentialTransactor struct{}

func (sequentialTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
