package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/ytakahashi/tasks/internal/models"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	tasksCollection    = "tasks"
	countersCollection = "counters"
)

// FirestoreStore keeps tasks as Firestore documents keyed by their decimal id.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(ctx context.Context, projectID string) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: create Firestore client: %v", ErrStorage, err)
	}

	return &FirestoreStore{
		client: client,
	}, nil
}

func (fs *FirestoreStore) Close() error {
	return fs.client.Close()
}

func (fs *FirestoreStore) doc(id int64) *firestore.DocumentRef {
	return fs.client.Collection(tasksCollection).Doc(strconv.FormatInt(id, 10))
}

func (fs *FirestoreStore) CreateTask(ctx context.Context, title string) (*models.Task, error) {
	counter := fs.client.Collection(countersCollection).Doc(tasksCollection)

	var task *models.Task
	err := fs.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		next := int64(1)
		snap, err := tx.Get(counter)
		switch {
		case status.Code(err) == codes.NotFound:
		case err != nil:
			return err
		default:
			v, err := snap.DataAt("next")
			if err != nil {
				return err
			}
			if n, ok := v.(int64); ok {
				next = n
			}
		}

		task = &models.Task{
			ID:        next,
			Title:     title,
			Done:      false,
			CreatedAt: time.Now().UTC(),
		}
		if err := tx.Set(counter, map[string]interface{}{"next": next + 1}); err != nil {
			return err
		}
		return tx.Create(fs.doc(next), task)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create task: %v", ErrStorage, err)
	}

	return task, nil
}

func (fs *FirestoreStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	iter := fs.client.Collection(tasksCollection).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	tasks := []models.Task{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: iterate tasks: %v", ErrStorage, err)
		}

		var task models.Task
		if err := doc.DataTo(&task); err != nil {
			return nil, fmt.Errorf("%w: unmarshal task: %v", ErrStorage, err)
		}

		tasks = append(tasks, task)
	}

	return tasks, nil
}

func (fs *FirestoreStore) UpdateTaskDone(ctx context.Context, id int64, done bool) (*models.Task, error) {
	ref := fs.doc(id)

	var task models.Task
	err := fs.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		if err := snap.DataTo(&task); err != nil {
			return err
		}
		task.Done = done
		return tx.Update(ref, []firestore.Update{
			{Path: "done", Value: done},
		})
	})
	if err != nil {
		return nil, fs.wrap(err, "update", id)
	}

	return &task, nil
}

func (fs *FirestoreStore) DeleteTask(ctx context.Context, id int64) (*models.Task, error) {
	ref := fs.doc(id)

	var task models.Task
	err := fs.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		if err := snap.DataTo(&task); err != nil {
			return err
		}
		return tx.Delete(ref)
	})
	if err != nil {
		return nil, fs.wrap(err, "delete", id)
	}

	return &task, nil
}

func (fs *FirestoreStore) wrap(err error, op string, id int64) error {
	if status.Code(err) == codes.NotFound || errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s task %d: %v", ErrStorage, op, id, err)
}
