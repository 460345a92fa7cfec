package db

import (
	"context"
	"fmt"

	"github.com/habit-king/habitking/internal/domain"
)

type todoRow struct {
	ID        string `db:"id"`
	OwnerID   string `db:"owner_id"`
	TaskDate  string `db:"task_date"`
	TaskName  string `db:"task_name"`
	Completed bool   `db:"completed"`
	CreatedAt int64  `db:"created_at"`
}

func (r todoRow) toDomain() domain.Todo {
	return domain.Todo{
		ID:        r.ID,
		OwnerID:   r.OwnerID,
		TaskDate:  parseDate(r.TaskDate),
		TaskName:  r.TaskName,
		Completed: r.Completed,
		CreatedAt: fromUnix(r.CreatedAt),
	}
}

const todoCols = `id, owner_id, task_date, task_name, completed, created_at`

// InsertTodo stores a new to-do.
func (d *DB) InsertTodo(ctx context.Context, t domain.Todo) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO todos (`+todoCols+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.OwnerID, t.TaskDate.String(), t.TaskName, t.Completed, unix(t.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

// GetTodo loads a to-do.
func (d *DB) GetTodo(ctx context.Context, id string) (*domain.Todo, error) {
	var row todoRow
	err := d.db.GetContext(ctx, &row, `SELECT `+todoCols+` FROM todos WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err, domain.ErrTodoNotFound)
	}
	t := row.toDomain()
	return &t, nil
}

// SetTodoCompleted sets the completion flag.
func (d *DB) SetTodoCompleted(ctx context.Context, id string, completed bool) error {
	res, err := d.db.ExecContext(ctx, `UPDATE todos SET completed = $1 WHERE id = $2`, completed, id)
	if err != nil {
		return fmt.Errorf("update todo: %w", err)
	}
	return affectedOrNotFound(res, domain.ErrTodoNotFound)
}

// DeleteTodo removes a to-do.
func (d *DB) DeleteTodo(ctx context.Context, id string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	return affectedOrNotFound(res, domain.ErrTodoNotFound)
}
