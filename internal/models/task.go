package models

import (
	"time"
)

// Task represents a todo item
type Task struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" firestore:"id" json:"id"`
	Title     string    `gorm:"not null" firestore:"title" json:"title"`
	Done      bool      `gorm:"not null;default:false" firestore:"done" json:"done"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" firestore:"createdAt" json:"createdAt"`
}

// CreateTaskRequest is the body of POST /api/tasks.
// An empty title is accepted; only a missing one is rejected.
type CreateTaskRequest struct {
	Title *string `json:"title" validate:"required"`
}

// UpdateTaskRequest is the body of PATCH /api/tasks/:id.
type UpdateTaskRequest struct {
	Done *bool `json:"done" validate:"required"`
}
