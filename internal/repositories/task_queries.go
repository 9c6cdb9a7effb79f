package repositories

import (
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/BradenHooton/tasktrack/internal/models"
)

const tasksTable = "tasks"

var taskColumns = []string{
	"id", "user_id", "title", "description", "completed",
	"priority", "status", "created_at", "updated_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func returningTaskColumns() string {
	return "RETURNING " + strings.Join(taskColumns, ", ")
}

func buildListTasksQuery(userID string) (string, []any, error) {
	return psql.
		Select(taskColumns...).
		From(tasksTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
}

func buildInsertTaskQuery(task *models.Task) (string, []any, error) {
	return psql.
		Insert(tasksTable).
		Columns("user_id", "title", "description", "completed", "priority", "status", "created_at", "updated_at").
		Values(task.UserID, task.Title, task.Description, task.Completed, task.Priority, task.Status, task.CreatedAt, task.UpdatedAt).
		Suffix(returningTaskColumns()).
		ToSql()
}

// buildUpdateTaskQuery sets only the non-nil patch fields plus updated_at.
func buildUpdateTaskQuery(id int64, userID string, patch models.TaskPatch) (string, []any, error) {
	q := psql.Update(tasksTable)

	if patch.Title != nil {
		q = q.Set("title", *patch.Title)
	}
	switch {
	case patch.ClearDescription:
		q = q.Set("description", nil)
	case patch.Description != nil:
		q = q.Set("description", *patch.Description)
	}
	if patch.Priority != nil {
		q = q.Set("priority", *patch.Priority)
	}
	if patch.Status != nil {
		q = q.Set("status", *patch.Status)
	}
	if patch.Completed != nil {
		q = q.Set("completed", *patch.Completed)
	}

	return q.
		Set("updated_at", patch.UpdatedAt).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"user_id": userID}).
		Suffix(returningTaskColumns()).
		ToSql()
}

func buildDeleteTaskQuery(id int64, userID string) (string, []any, error) {
	return psql.
		Delete(tasksTable).
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
}
