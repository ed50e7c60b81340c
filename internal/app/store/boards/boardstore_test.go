package boardstore_test

import (
	"testing"

	boardstore "github.com/boardhub/boardhub/internal/app/store/boards"
	projectstore "github.com/boardhub/boardhub/internal/app/store/projects"
	"github.com/boardhub/boardhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAdd_AppendsAfterExistingBoards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	owner := fix.CreateUser(ctx, "Owner", "owner@test.com")
	// Three default boards at orders 0..2.
	p := fix.CreateProject(ctx, "Launch", owner.ID)

	store := boardstore.New(db)
	b, err := store.Add(ctx, p.ID, "Review", "#123456")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if b.Order != 3 {
		t.Errorf("order: got %d, want 3", b.Order)
	}

	// A second add keeps appending; the counter never reuses an order.
	b2, err := store.Add(ctx, p.ID, "Blocked", "#654321")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if b2.Order != 4 {
		t.Errorf("order: got %d, want 4", b2.Order)
	}
}

func TestAdd_UnknownProject(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := boardstore.New(db)
	if _, err := store.Add(ctx, primitive.NewObjectID(), "Review", "#123456"); err != projectstore.ErrNotFound {
		t.Errorf("err: got %v, want ErrNotFound", err)
	}
}

func TestUpdateOrder_AssignsDenseOrders(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	projectID := primitive.NewObjectID()
	b1 := fix.CreateBoard(ctx, projectID, "todo", "#f8d471", 0)
	b2 := fix.CreateBoard(ctx, projectID, "inProgress", "#5224fb", 1)
	b3 := fix.CreateBoard(ctx, projectID, "done", "#4ADE80", 2)

	store := boardstore.New(db)
	if err := store.UpdateOrder(ctx, projectID, []primitive.ObjectID{b3.ID, b1.ID, b2.ID}); err != nil {
		t.Fatalf("update order: %v", err)
	}

	boards, err := store.ListByProject(ctx, projectID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	wantNames := []string{"done", "todo", "inProgress"}
	for i, b := range boards {
		if b.Name != wantNames[i] {
			t.Errorf("position %d: got %q, want %q", i, b.Name, wantNames[i])
		}
		if b.Order != i {
			t.Errorf("board %q: order got %d, want %d", b.Name, b.Order, i)
		}
	}
}

func TestUpdateOrder_IgnoresForeignBoards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	projectID := primitive.NewObjectID()
	otherProject := primitive.NewObjectID()
	mine := fix.CreateBoard(ctx, projectID, "todo", "#f8d471", 0)
	foreign := fix.CreateBoard(ctx, otherProject, "todo", "#f8d471", 0)

	store := boardstore.New(db)
	if err := store.UpdateOrder(ctx, projectID, []primitive.ObjectID{foreign.ID, mine.ID}); err != nil {
		t.Fatalf("update order: %v", err)
	}

	got, err := store.GetByID(ctx, foreign.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Order != 0 {
		t.Errorf("foreign board order: got %d, want untouched 0", got.Order)
	}
}

func TestListByProject_SortedByOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	projectID := primitive.NewObjectID()
	fix.CreateBoard(ctx, projectID, "third", "#111111", 2)
	fix.CreateBoard(ctx, projectID, "first", "#222222", 0)
	fix.CreateBoard(ctx, projectID, "second", "#333333", 1)

	store := boardstore.New(db)
	boards, err := store.ListByProject(ctx, projectID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i, b := range boards {
		if b.Name != want[i] {
			t.Errorf("position %d: got %q, want %q", i, b.Name, want[i])
		}
	}
}
