package tasks_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	errorsfeature "github.com/boardhub/boardhub/internal/app/features/errors"
	tasksfeature "github.com/boardhub/boardhub/internal/app/features/tasks"
	boardstore "github.com/boardhub/boardhub/internal/app/store/boards"
	projectstore "github.com/boardhub/boardhub/internal/app/store/projects"
	taskstore "github.com/boardhub/boardhub/internal/app/store/tasks"
	"github.com/boardhub/boardhub/internal/app/system/commands"
	"github.com/boardhub/boardhub/internal/app/system/events"
	"github.com/boardhub/boardhub/internal/domain/models"
	"github.com/boardhub/boardhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *tasksfeature.Handler {
	logger := zap.NewNop()
	pub := &events.Publisher{Hub: events.NewHub(), Log: logger}
	return tasksfeature.NewHandler(
		taskstore.New(db),
		boardstore.New(db),
		projectstore.New(db),
		commands.NewRegistry(),
		pub,
		errorsfeature.NewErrorLogger(logger),
		logger,
	)
}

func dropBody(t *testing.T, payload map[string]string, status string) *strings.Reader {
	t.Helper()
	body, err := json.Marshal(map[string]any{"payload": payload, "status": status})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return strings.NewReader(string(body))
}

func TestHandleDrop_ViewerGets403AndNoWrite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	owner := fix.CreateUser(ctx, "Owner", "owner@test.com")
	viewer := fix.CreateUser(ctx, "Viewer", "viewer@test.com")
	p := fix.CreateProject(ctx, "Launch", owner.ID, testutil.Membership{UserID: viewer.ID, Role: "viewer"})
	task := fix.CreateTask(ctx, p.ID, "ship", "todo", nil)

	h := newHandler(db)
	req := testutil.NewAuthenticatedRequest("POST", "/drop",
		dropBody(t, map[string]string{"task-id": task.ID.Hex()}, "done"),
		testutil.UserFor(viewer.ID, viewer.FullName, viewer.Email))
	req = testutil.WithChiURLParam(req, "projectID", p.ID.Hex())

	rec := testutil.NewRecorder()
	h.HandleDrop(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusForbidden)

	// The task must be untouched.
	got, err := taskstore.New(db).GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != "todo" {
		t.Errorf("status: got %q, want unchanged %q", got.Status, "todo")
	}
}

func TestHandleDrop_EditorMovesTask(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	owner := fix.CreateUser(ctx, "Owner", "owner@test.com")
	editor := fix.CreateUser(ctx, "Editor", "editor@test.com")
	p := fix.CreateProject(ctx, "Launch", owner.ID, testutil.Membership{UserID: editor.ID, Role: "editor"})
	task := fix.CreateTask(ctx, p.ID, "ship", "todo", nil)

	h := newHandler(db)
	req := testutil.NewAuthenticatedRequest("POST", "/drop",
		dropBody(t, map[string]string{"task-id": task.ID.Hex()}, "done"),
		testutil.UserFor(editor.ID, editor.FullName, editor.Email))
	req = testutil.WithChiURLParam(req, "projectID", p.ID.Hex())

	rec := testutil.NewRecorder()
	h.HandleDrop(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusNoContent)

	got, err := taskstore.New(db).GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != "done" {
		t.Errorf("status: got %q, want %q", got.Status, "done")
	}
}

func TestHandleDrop_ColumnIndexWinsOverTaskID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	owner := fix.CreateUser(ctx, "Owner", "owner@test.com")
	p := fix.CreateProject(ctx, "Launch", owner.ID)
	task := fix.CreateTask(ctx, p.ID, "ship", "todo", nil)

	h := newHandler(db)
	// Both keys present: the column index must win, so the task stays put
	// and the columns reorder.
	body, err := json.Marshal(map[string]any{
		"payload":    map[string]string{"task-id": task.ID.Hex(), "draggedColumnIndex": "0"},
		"status":     "done",
		"drop_index": 2,
	})
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := testutil.NewAuthenticatedRequest("POST", "/drop", strings.NewReader(string(body)),
		testutil.UserFor(owner.ID, owner.FullName, owner.Email))
	req = testutil.WithChiURLParam(req, "projectID", p.ID.Hex())

	rec := testutil.NewRecorder()
	h.HandleDrop(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusNoContent)

	got, err := taskstore.New(db).GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != "todo" {
		t.Errorf("task moved during a column drag: status %q", got.Status)
	}

	boards, err := boardstore.New(db).ListByProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("list boards: %v", err)
	}
	wantNames := []string{"inProgress", "done", "todo"}
	for i, b := range boards {
		if b.Name != wantNames[i] {
			t.Errorf("position %d: got %q, want %q", i, b.Name, wantNames[i])
		}
	}
}

func TestHandleDrop_NonMemberGets404(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	owner := fix.CreateUser(ctx, "Owner", "owner@test.com")
	outsider := fix.CreateUser(ctx, "Outsider", "outsider@test.com")
	p := fix.CreateProject(ctx, "Launch", owner.ID)
	task := fix.CreateTask(ctx, p.ID, "ship", "todo", nil)

	h := newHandler(db)
	req := testutil.NewAuthenticatedRequest("POST", "/drop",
		dropBody(t, map[string]string{"task-id": task.ID.Hex()}, "done"),
		testutil.UserFor(outsider.ID, outsider.FullName, outsider.Email))
	req = testutil.WithChiURLParam(req, "projectID", p.ID.Hex())

	rec := testutil.NewRecorder()
	h.HandleDrop(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestCommands_CreateNormalizesUpcomingWithoutDeadline(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	owner := fix.CreateUser(ctx, "Owner", "owner@test.com")
	p := fix.CreateProject(ctx, "Launch", owner.ID)

	reg := commands.NewRegistry()
	logger := zap.NewNop()
	pub := &events.Publisher{Hub: events.NewHub(), Log: logger}
	tasksfeature.NewHandler(taskstore.New(db), boardstore.New(db), projectstore.New(db),
		reg, pub, errorsfeature.NewErrorLogger(logger), logger)

	title := "review"
	status := models.StatusUpcoming
	err := reg.Dispatch(ctx, owner.ID.Hex(), commands.Command{
		Name: commands.TaskCreate,
		Payload: commands.TaskPayload{
			ProjectID: p.ID.Hex(),
			Title:     &title,
			Status:    &status,
			// No deadline: an upcoming task without one lands on the first board.
		},
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	tasks, err := taskstore.New(db).ListByProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("tasks: got %d, want 1", len(tasks))
	}
	if tasks[0].Status != "todo" {
		t.Errorf("status: got %q, want normalized to %q", tasks[0].Status, "todo")
	}
}

func TestCommands_ViewerCannotDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	owner := fix.CreateUser(ctx, "Owner", "owner@test.com")
	viewer := fix.CreateUser(ctx, "Viewer", "viewer@test.com")
	p := fix.CreateProject(ctx, "Launch", owner.ID, testutil.Membership{UserID: viewer.ID, Role: "viewer"})
	task := fix.CreateTask(ctx, p.ID, "ship", "todo", nil)

	reg := commands.NewRegistry()
	logger := zap.NewNop()
	pub := &events.Publisher{Hub: events.NewHub(), Log: logger}
	tasksfeature.NewHandler(taskstore.New(db), boardstore.New(db), projectstore.New(db),
		reg, pub, errorsfeature.NewErrorLogger(logger), logger)

	err := reg.Dispatch(ctx, viewer.ID.Hex(), commands.Command{
		Name:    commands.TaskDelete,
		Payload: commands.TaskPayload{ProjectID: p.ID.Hex(), TaskID: task.ID.Hex()},
	})
	if err == nil {
		t.Fatal("viewer delete succeeded, want permission error")
	}

	if _, err := taskstore.New(db).GetByID(ctx, task.ID); err != nil {
		t.Errorf("task gone after refused delete: %v", err)
	}
}
