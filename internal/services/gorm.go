package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	drv "github.com/go-sql-driver/mysql"
	"github.com/ytakahashi/tasks/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormStore keeps tasks in a relational database through gorm.
type GormStore struct {
	db *gorm.DB
}

const sqliteBusyTimeout = "_pragma=busy_timeout(5000)"

// NewGormStore opens a sqlite or mysql database and migrates the tasks table.
func NewGormStore(kind, dsn string) (*GormStore, error) {
	var dialector gorm.Dialector
	switch kind {
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(dsn))
	case "mysql":
		mdsn, err := mysqlDSN(dsn)
		if err != nil {
			return nil, err
		}
		dialector = mysql.Open(mdsn)
	default:
		return nil, fmt.Errorf("unsupported sql store %q", kind)
	}
	st, err := OpenGorm(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if kind == "sqlite" {
		// one writer at a time; overlapping requests queue on the pool
		sqlDB, err := st.db.DB()
		if err != nil {
			return nil, fmt.Errorf("%w: open database: %v", ErrStorage, err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return st, nil
}

// mysqlDSN forces parseTime so DATETIME columns scan into time.Time.
func mysqlDSN(dsn string) (string, error) {
	cfg, err := drv.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// sqliteDSN adds a busy timeout unless the dsn already sets one.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "busy_timeout") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + sqliteBusyTimeout
	}
	return dsn + "?" + sqliteBusyTimeout
}

// OpenGorm opens a store on an arbitrary dialector.
func OpenGorm(dialector gorm.Dialector, cfg *gorm.Config) (*GormStore, error) {
	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", ErrStorage, err)
	}
	if err := db.AutoMigrate(&models.Task{}); err != nil {
		return nil, fmt.Errorf("%w: migrate tasks: %v", ErrStorage, err)
	}
	return &GormStore{db: db}, nil
}

// DB exposes the underlying handle.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *GormStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	tasks := []models.Task{}
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list tasks: %v", ErrStorage, err)
	}
	return tasks, nil
}

func (s *GormStore) CreateTask(ctx context.Context, title string) (*models.Task, error) {
	task := &models.Task{Title: title, Done: false}
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return nil, fmt.Errorf("%w: create task: %v", ErrStorage, err)
	}
	return task, nil
}

func (s *GormStore) UpdateTaskDone(ctx context.Context, id int64, done bool) (*models.Task, error) {
	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(task).Update("done", done).Error; err != nil {
		return nil, fmt.Errorf("%w: update task %d: %v", ErrStorage, id, err)
	}
	task.Done = done
	return task, nil
}

func (s *GormStore) DeleteTask(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Delete(&models.Task{}, id)
	if res.Error != nil {
		return nil, fmt.Errorf("%w: delete task %d: %v", ErrStorage, id, res.Error)
	}
	// deleted concurrently between lookup and delete
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return task, nil
}

func (s *GormStore) find(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).First(&task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: find task %d: %v", ErrStorage, id, err)
	}
	return &task, nil
}
