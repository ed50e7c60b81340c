package projectstore_test

import (
	"errors"
	"testing"

	"github.com/boardhub/boardhub/internal/app/policy/projectpolicy"
	projectstore "github.com/boardhub/boardhub/internal/app/store/projects"
	"github.com/boardhub/boardhub/internal/domain/models"
	"github.com/boardhub/boardhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreate_SeedsDefaultBoardsAndRoles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	owner := fix.CreateUser(ctx, "Owner", "owner@test.com")
	friend := fix.CreateUser(ctx, "Friend", "friend@test.com")

	store := projectstore.New(db)
	p, err := store.Create(ctx, owner.ID, "Launch", []primitive.ObjectID{friend.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if got := projectpolicy.GetUserRole(&p, owner.ID); got != projectpolicy.RoleOwner {
		t.Errorf("owner role: got %q, want owner", got)
	}
	if got := projectpolicy.GetUserRole(&p, friend.ID); got != projectpolicy.RoleEditor {
		t.Errorf("friend role: got %q, want editor", got)
	}
	if p.NextBoardOrder != len(models.DefaultBoards) {
		t.Errorf("next board order: got %d, want %d", p.NextBoardOrder, len(models.DefaultBoards))
	}

	count, err := db.Collection("boards").CountDocuments(ctx, bson.M{"project_id": p.ID})
	if err != nil {
		t.Fatalf("count boards: %v", err)
	}
	if count != int64(len(models.DefaultBoards)) {
		t.Errorf("seeded boards: got %d, want %d", count, len(models.DefaultBoards))
	}
}

func TestListForUser_OnlyMemberProjects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	alice := fix.CreateUser(ctx, "Alice", "alice@test.com")
	bob := fix.CreateUser(ctx, "Bob", "bob@test.com")
	fix.CreateProject(ctx, "Mine", alice.ID)
	fix.CreateProject(ctx, "Shared", bob.ID, testutil.Membership{UserID: alice.ID, Role: "viewer"})
	fix.CreateProject(ctx, "Theirs", bob.ID)

	store := projectstore.New(db)
	projects, err := store.ListForUser(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("projects: got %d, want 2", len(projects))
	}
}

func TestSetMemberRole_OwnerImmutable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	owner := fix.CreateUser(ctx, "Owner", "owner@test.com")
	p := fix.CreateProject(ctx, "Launch", owner.ID)

	store := projectstore.New(db)
	if err := store.SetMemberRole(ctx, p.ID, owner.ID, "viewer"); !errors.Is(err, projectstore.ErrOwnerImmutable) {
		t.Errorf("demoting owner: got %v, want ErrOwnerImmutable", err)
	}
	if err := store.RemoveMember(ctx, p.ID, owner.ID); !errors.Is(err, projectstore.ErrOwnerImmutable) {
		t.Errorf("removing owner: got %v, want ErrOwnerImmutable", err)
	}
}

func TestSetMemberRole_UpdatesMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	owner := fix.CreateUser(ctx, "Owner", "owner@test.com")
	viewer := fix.CreateUser(ctx, "Viewer", "viewer@test.com")
	p := fix.CreateProject(ctx, "Launch", owner.ID, testutil.Membership{UserID: viewer.ID, Role: "viewer"})

	store := projectstore.New(db)
	if err := store.SetMemberRole(ctx, p.ID, viewer.ID, "admin"); err != nil {
		t.Fatalf("set role: %v", err)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if role := projectpolicy.GetUserRole(got, viewer.ID); role != projectpolicy.RoleAdmin {
		t.Errorf("role: got %q, want admin", role)
	}
}

func TestDelete_CascadesBoardsAndTasks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	owner := fix.CreateUser(ctx, "Owner", "owner@test.com")
	p := fix.CreateProject(ctx, "Launch", owner.ID)
	fix.CreateTask(ctx, p.ID, "ship", "todo", nil)

	store := projectstore.New(db)
	if err := store.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	for _, coll := range []string{"boards", "tasks"} {
		count, err := db.Collection(coll).CountDocuments(ctx, bson.M{"project_id": p.ID})
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if count != 0 {
			t.Errorf("%s: got %d orphaned documents, want 0", coll, count)
		}
	}
}

func TestNextBoardOrder_Advances(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	owner := fix.CreateUser(ctx, "Owner", "owner@test.com")
	p := fix.CreateProject(ctx, "Launch", owner.ID)

	store := projectstore.New(db)
	first, err := store.NextBoardOrder(ctx, p.ID)
	if err != nil {
		t.Fatalf("next order: %v", err)
	}
	second, err := store.NextBoardOrder(ctx, p.ID)
	if err != nil {
		t.Fatalf("next order: %v", err)
	}
	if first != 3 || second != 4 {
		t.Errorf("orders: got %d then %d, want 3 then 4", first, second)
	}
}

func TestAddMembers_SkipsExisting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	owner := fix.CreateUser(ctx, "Owner", "owner@test.com")
	bob := fix.CreateUser(ctx, "Bob", "bob@test.com")
	p := fix.CreateProject(ctx, "Launch", owner.ID)

	store := projectstore.New(db)
	if err := store.AddMembers(ctx, p.ID, []primitive.ObjectID{bob.ID, owner.ID}, "viewer"); err != nil {
		t.Fatalf("add members: %v", err)
	}

	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Members) != 2 {
		t.Errorf("members: got %d, want 2", len(got.Members))
	}
	if role := projectpolicy.GetUserRole(got, owner.ID); role != projectpolicy.RoleOwner {
		t.Errorf("owner role after re-add: got %q, want owner", role)
	}
}
