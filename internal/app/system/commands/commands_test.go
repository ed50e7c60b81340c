package commands

import (
	"context"
	"errors"
	"testing"
)

func TestDispatch_RunsRegisteredHandler(t *testing.T) {
	reg := NewRegistry()

	var gotUser string
	var gotTitle string
	reg.Register(TaskCreate, func(ctx context.Context, userID string, p TaskPayload) error {
		gotUser = userID
		if p.Title != nil {
			gotTitle = *p.Title
		}
		return nil
	})

	title := "ship it"
	err := reg.Dispatch(context.Background(), "user-1", Command{
		Name:    TaskCreate,
		Payload: TaskPayload{Title: &title},
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if gotUser != "user-1" || gotTitle != "ship it" {
		t.Errorf("handler saw user=%q title=%q", gotUser, gotTitle)
	}
}

func TestDispatch_UnknownCommand(t *testing.T) {
	reg := NewRegistry()
	err := reg.Dispatch(context.Background(), "user-1", Command{Name: "task-explode"})
	if !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("err: got %v, want ErrUnknownCommand", err)
	}
}

func TestRegister_ReplacesHandler(t *testing.T) {
	reg := NewRegistry()

	reg.Register(TaskSave, func(ctx context.Context, userID string, p TaskPayload) error {
		return errors.New("old handler")
	})
	reg.Register(TaskSave, func(ctx context.Context, userID string, p TaskPayload) error {
		return nil
	})

	if err := reg.Dispatch(context.Background(), "user-1", Command{Name: TaskSave}); err != nil {
		t.Errorf("dispatch after replace: %v", err)
	}
}
