package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrEmpty is returned by Pop when no task arrived before the timeout.
var ErrEmpty = errors.New("queue empty")

// TaskQueue is a FIFO of JSON-encoded tasks on a Redis list: LPUSH in, BRPOP out.
type TaskQueue struct {
	rdb  redis.UniversalClient
	name string
}

func NewTaskQueue(rdb redis.UniversalClient, name string) *TaskQueue {
	return &TaskQueue{rdb: rdb, name: name}
}

func (q *TaskQueue) Name() string { return q.name }

func (q *TaskQueue) Push(ctx context.Context, task any) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := q.rdb.LPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("push to %s: %w", q.name, err)
	}
	return nil
}

// Requeue puts a task back behind every task already waiting.
func (q *TaskQueue) Requeue(ctx context.Context, task any) error {
	return q.Push(ctx, task)
}

// Pop blocks up to timeout and decodes the next task into dst.
func (q *TaskQueue) Pop(ctx context.Context, timeout time.Duration, dst any) error {
	res, err := q.rdb.BRPop(ctx, timeout, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrEmpty
		}
		return err
	}
	// res is [queueName, value]
	if len(res) < 2 || res[1] == "" {
		return ErrEmpty
	}
	if err := json.Unmarshal([]byte(res[1]), dst); err != nil {
		return fmt.Errorf("decode task from %s: %w", q.name, err)
	}
	return nil
}

func (q *TaskQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.name).Result()
}
