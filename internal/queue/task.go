package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type TaskType string

const (
	// TaskPurge removes one soft-deleted content object from storage.
	TaskPurge TaskType = "purge"
	// TaskSweep purges every soft-deleted object still left in storage.
	TaskSweep TaskType = "sweep"
)

var ErrEmptyStream = errors.New("queue stream not configured")

type Task struct {
	Type      TaskType `json:"type"`
	ContentID string   `json:"contentId,omitempty"`
	Bucket    string   `json:"bucket,omitempty"`
	Object    string   `json:"object,omitempty"`
}

func (t Task) values() map[string]any {
	values := map[string]any{"type": string(t.Type)}
	if t.ContentID != "" {
		values["contentId"] = t.ContentID
	}
	if t.Bucket != "" {
		values["bucket"] = t.Bucket
	}
	if t.Object != "" {
		values["object"] = t.Object
	}
	return values
}

// DecodeTask reads a task back from stream entry values.
func DecodeTask(values map[string]interface{}) (Task, error) {
	raw, err := json.Marshal(values)
	if err != nil {
		return Task{}, err
	}
	var task Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return Task{}, err
	}
	if task.Type == "" {
		return Task{}, fmt.Errorf("missing task type")
	}
	return task, nil
}

// Producer appends tasks to a redis stream.
type Producer struct {
	client *redis.Client
	stream string
}

func NewProducer(client *redis.Client, stream string) *Producer {
	return &Producer{client: client, stream: stream}
}

func (p *Producer) Enqueue(ctx context.Context, task Task) error {
	if p.client == nil {
		return nil
	}
	if p.stream == "" {
		return ErrEmptyStream
	}
	_, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: task.values(),
	}).Result()
	return err
}
