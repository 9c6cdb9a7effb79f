package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"

	"github.com/BradenHooton/tasktrack/internal/models"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

// TaskRepository defines the persistence operations for tasks. All of them are
// scoped to the owner.
type TaskRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*models.Task, error)
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	Update(ctx context.Context, id int64, userID string, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id int64, userID string) error
}

type CreateTaskInput struct {
	Title       string
	Description *string
	Priority    string
	Status      string
}

// UpdateTaskInput changes only the fields that are set
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Priority    *string
	Status      *string
}

type TaskService struct {
	repo   TaskRepository
	clock  clockwork.Clock
	logger *slog.Logger
}

func NewTaskService(repo TaskRepository, clock clockwork.Clock, logger *slog.Logger) *TaskService {
	return &TaskService{repo: repo, clock: clock, logger: logger}
}

// List returns the user's tasks, newest first.
func (s *TaskService) List(ctx context.Context, userID string) ([]*models.Task, error) {
	tasks, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list tasks", slog.String("user_id", userID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, userID string, input CreateTaskInput) (*models.Task, error) {
	title, err := normalizeTitle(input.Title)
	if err != nil {
		return nil, err
	}
	description, err := normalizeDescription(input.Description)
	if err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !validPriority(priority) {
		return nil, models.NewValidationError("priority", "priority must be one of low, medium, high")
	}

	status := input.Status
	if status == "" {
		status = models.StatusNotStarted
	}
	if !validStatus(status) {
		return nil, models.NewValidationError("status", "status must be one of not_started, in_progress, completed")
	}

	now := s.clock.Now().UTC()
	task, err := s.repo.Create(ctx, &models.Task{
		UserID:      userID,
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, s.mapRepoError("create task", err)
	}

	s.logger.Info("task created", slog.String("user_id", userID), slog.Int64("task_id", task.ID))
	return task, nil
}

// SetCompleted flips only the completed flag.
func (s *TaskService) SetCompleted(ctx context.Context, id int64, userID string, completed bool) (*models.Task, error) {
	task, err := s.repo.Update(ctx, id, userID, models.TaskPatch{
		Completed: &completed,
		UpdatedAt: s.clock.Now().UTC(),
	})
	if err != nil {
		return nil, s.mapRepoError("complete task", err)
	}
	return task, nil
}

func (s *TaskService) Update(ctx context.Context, id int64, userID string, input UpdateTaskInput) (*models.Task, error) {
	patch := models.TaskPatch{UpdatedAt: s.clock.Now().UTC()}

	if input.Title != nil {
		title, err := normalizeTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if input.Description != nil {
		description, err := normalizeDescription(input.Description)
		if err != nil {
			return nil, err
		}
		patch.Description = description
		patch.ClearDescription = description == nil
	}
	if input.Priority != nil {
		if !validPriority(*input.Priority) {
			return nil, models.NewValidationError("priority", "priority must be one of low, medium, high")
		}
		patch.Priority = input.Priority
	}
	if input.Status != nil {
		if !validStatus(*input.Status) {
			return nil, models.NewValidationError("status", "status must be one of not_started, in_progress, completed")
		}
		patch.Status = input.Status
	}

	task, err := s.repo.Update(ctx, id, userID, patch)
	if err != nil {
		return nil, s.mapRepoError("update task", err)
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, id int64, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return s.mapRepoError("delete task", err)
	}
	s.logger.Info("task deleted", slog.String("user_id", userID), slog.Int64("task_id", id))
	return nil
}

// mapRepoError passes not-found and bad-request through and hides everything else.
func (s *TaskService) mapRepoError(op string, err error) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return models.ErrNotFound
	case errors.Is(err, models.ErrBadRequest):
		return fmt.Errorf("%s: %w", op, models.ErrBadRequest)
	default:
		s.logger.Error("failed to "+op, slog.Any("error", err))
		return models.ErrInternalServer
	}
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", models.NewValidationError("title", "title cannot be empty or whitespace")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", models.NewValidationError("title", fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}
	return title, nil
}

// normalizeDescription trims the text and maps blank input to nil.
func normalizeDescription(description *string) (*string, error) {
	if description == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*description)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > MaxDescriptionLength {
		return nil, models.NewValidationError("description", fmt.Sprintf("description must be at most %d characters", MaxDescriptionLength))
	}
	return &trimmed, nil
}

func validPriority(p string) bool {
	return p == models.PriorityLow || p == models.PriorityMedium || p == models.PriorityHigh
}

func validStatus(s string) bool {
	return s == models.StatusNotStarted || s == models.StatusInProgress || s == models.StatusCompleted
}
