package userstore_test

import (
	"context"
	"errors"
	"testing"

	userstore "github.com/boardhub/boardhub/internal/app/store/users"
	"github.com/boardhub/boardhub/internal/domain/models"
	"github.com/boardhub/boardhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ensureEmailIndex(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func TestCreate_NormalizesAndRejectsDuplicates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := userstore.New(db)
	u, err := store.Create(ctx, models.User{
		FullName: "  Alice Example ",
		Email:    " Alice@Test.COM ",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Email != "alice@test.com" {
		t.Errorf("email: got %q, want normalized", u.Email)
	}
	if u.FullName != "Alice Example" {
		t.Errorf("full name: got %q, want trimmed", u.FullName)
	}
	if u.AuthMethod != "internal" {
		t.Errorf("auth method: got %q, want internal default", u.AuthMethod)
	}

	// Index must exist for the duplicate check to fire.
	if err := ensureEmailIndex(ctx, db); err != nil {
		t.Fatalf("ensure index: %v", err)
	}
	if _, err := store.Create(ctx, models.User{FullName: "Other", Email: "alice@test.com"}); !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("duplicate email: got %v, want ErrDuplicateEmail", err)
	}
}

func TestGetByEmail_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	fix.CreateUser(ctx, "Alice", "alice@test.com")

	store := userstore.New(db)
	u, err := store.GetByEmail(ctx, "ALICE@Test.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if u.FullName != "Alice" {
		t.Errorf("full name: got %q, want Alice", u.FullName)
	}
}

func TestAddAndRemoveMutualFriends(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	alice := fix.CreateUser(ctx, "Alice", "alice@test.com")
	bob := fix.CreateUser(ctx, "Bob", "bob@test.com")

	store := userstore.New(db)
	if err := store.AddMutualFriends(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("add mutual friends: %v", err)
	}

	gotAlice, _ := store.GetByID(ctx, alice.ID)
	gotBob, _ := store.GetByID(ctx, bob.ID)
	if !gotAlice.Friends[bob.ID.Hex()] || !gotBob.Friends[alice.ID.Hex()] {
		t.Fatal("friendship is not mutual after add")
	}

	if err := store.RemoveMutualFriends(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("remove mutual friends: %v", err)
	}
	gotAlice, _ = store.GetByID(ctx, alice.ID)
	gotBob, _ = store.GetByID(ctx, bob.ID)
	if gotAlice.Friends[bob.ID.Hex()] || gotBob.Friends[alice.ID.Hex()] {
		t.Fatal("friendship entries remain after remove")
	}
}
