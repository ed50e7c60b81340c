package taskstore_test

import (
	"testing"
	"time"

	taskstore "github.com/boardhub/boardhub/internal/app/store/tasks"
	"github.com/boardhub/boardhub/internal/domain/models"
	"github.com/boardhub/boardhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalize_ElapsedDeadlineMovesToFirstBoard(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)

	task := models.Task{Status: models.StatusUpcoming, Deadline: &past}
	taskstore.Normalize(&task, "todo", now)
	if task.Status != "todo" {
		t.Errorf("status: got %q, want %q", task.Status, "todo")
	}
}

func TestNormalize_NilDeadlineMovesToFirstBoard(t *testing.T) {
	task := models.Task{Status: models.StatusUpcoming}
	taskstore.Normalize(&task, "todo", time.Now())
	if task.Status != "todo" {
		t.Errorf("status: got %q, want %q", task.Status, "todo")
	}
}

func TestNormalize_FutureDeadlineStaysUpcoming(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)

	task := models.Task{Status: models.StatusUpcoming, Deadline: &future}
	taskstore.Normalize(&task, "todo", now)
	if task.Status != models.StatusUpcoming {
		t.Errorf("status: got %q, want upcoming", task.Status)
	}
}

func TestNormalize_NonUpcomingUntouched(t *testing.T) {
	task := models.Task{Status: "done"}
	taskstore.Normalize(&task, "todo", time.Now())
	if task.Status != "done" {
		t.Errorf("status: got %q, want %q", task.Status, "done")
	}
}

func TestPartition(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tasks := []models.Task{
		{Title: "on board", Status: "todo"},
		{Title: "scheduled", Status: models.StatusUpcoming, Deadline: &future},
		{Title: "overdue", Status: models.StatusUpcoming, Deadline: &past},
		{Title: "dateless upcoming", Status: models.StatusUpcoming},
	}

	current, upcoming := taskstore.Partition(tasks, "todo", now)

	if len(upcoming) != 1 || upcoming[0].Title != "scheduled" {
		t.Fatalf("upcoming: got %v", titles(upcoming))
	}
	if len(current) != 3 {
		t.Fatalf("current: got %v", titles(current))
	}
	// Elapsed and dateless upcoming tasks display under the first board.
	for _, task := range current {
		if task.Status != "todo" {
			t.Errorf("task %q: status got %q, want %q", task.Title, task.Status, "todo")
		}
	}
}

func titles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestCreate_SanitizesAndNormalizes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := taskstore.New(db)
	past := time.Now().Add(-time.Hour)

	created, err := store.Create(ctx, models.Task{
		Title:    "<b>Ship it</b>",
		Status:   models.StatusUpcoming,
		Deadline: &past,
	}, "todo")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if created.Title != "Ship it" {
		t.Errorf("title: got %q, want markup stripped", created.Title)
	}
	if created.Status != "todo" {
		t.Errorf("status: got %q, want normalized to %q", created.Status, "todo")
	}
}

func TestUpdate_UpcomingWithFutureDeadlineSticks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	store := taskstore.New(db)

	task := fix.CreateTask(ctx, primitive.NewObjectID(), "plan", "todo", nil)

	future := time.Now().Add(24 * time.Hour)
	status := models.StatusUpcoming
	err := store.Update(ctx, task.ID, taskstore.Patch{Status: &status, Deadline: &future}, "todo")
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusUpcoming {
		t.Errorf("status: got %q, want upcoming", got.Status)
	}
}

func TestUpdate_UpcomingWithoutDeadlineNormalizes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	store := taskstore.New(db)

	task := fix.CreateTask(ctx, primitive.NewObjectID(), "plan", "todo", nil)

	status := models.StatusUpcoming
	if err := store.Update(ctx, task.ID, taskstore.Patch{Status: &status}, "todo"); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "todo" {
		t.Errorf("status: got %q, want %q", got.Status, "todo")
	}
}

func TestMoveToCurrent_ClearsDeadline(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	store := taskstore.New(db)

	future := time.Now().Add(24 * time.Hour)
	task := fix.CreateTask(ctx, primitive.NewObjectID(), "later", models.StatusUpcoming, &future)

	if err := store.MoveToCurrent(ctx, task.ID, "todo"); err != nil {
		t.Fatalf("move to current: %v", err)
	}

	got, err := store.GetByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "todo" {
		t.Errorf("status: got %q, want %q", got.Status, "todo")
	}
	if got.Deadline != nil {
		t.Errorf("deadline: got %v, want cleared", got.Deadline)
	}
}
