package repositories

import (
	"context"
	"fmt"

	"github.com/BradenHooton/tasktrack/internal/database"
	"github.com/BradenHooton/tasktrack/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepository stores tasks. Every query is scoped to the owning user, so a
// task belonging to someone else behaves exactly like a missing one.
type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{pool: db.Pool}
}

func scanTaskRow(scanner rowScanner) (*models.Task, error) {
	var task models.Task
	err := scanner.Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description, &task.Completed,
		&task.Priority, &task.Status, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &task, nil
}

func scanTaskRows(rows pgx.Rows) ([]*models.Task, error) {
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTaskRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]*models.Task, error) {
	query, args, err := buildListTasksQuery(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	return scanTaskRows(rows)
}

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query, args, err := buildInsertTaskQuery(task)
	if err != nil {
		return nil, fmt.Errorf("failed to build insert query: %w", err)
	}

	created, err := scanTaskRow(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return created, nil
}

func (r *TaskRepository) Update(ctx context.Context, id int64, userID string, patch models.TaskPatch) (*models.Task, error) {
	query, args, err := buildUpdateTaskQuery(id, userID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to build update query: %w", err)
	}

	updated, err := scanTaskRow(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return updated, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64, userID string) error {
	query, args, err := buildDeleteTaskQuery(id, userID)
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", database.MapPostgresError(err))
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
