package friends_test

import (
	"encoding/json"
	"net/http"
	"testing"

	errorsfeature "github.com/boardhub/boardhub/internal/app/features/errors"
	friendsfeature "github.com/boardhub/boardhub/internal/app/features/friends"
	friendrequeststore "github.com/boardhub/boardhub/internal/app/store/friendrequests"
	userstore "github.com/boardhub/boardhub/internal/app/store/users"
	"github.com/boardhub/boardhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(db *mongo.Database) *friendsfeature.Handler {
	logger := zap.NewNop()
	return friendsfeature.NewHandler(
		userstore.New(db),
		friendrequeststore.New(db),
		errorsfeature.NewErrorLogger(logger),
		logger,
	)
}

func TestServeList_ReturnsMutualFriends(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	alice := fix.CreateUser(ctx, "Alice", "alice@test.com")
	bob := fix.CreateUser(ctx, "Bob", "bob@test.com")
	fix.MakeFriends(ctx, alice, bob)

	// A corrupt friends key must be skipped, not break the list.
	if _, err := db.Collection("users").UpdateOne(ctx, bson.M{"_id": alice.ID},
		bson.M{"$set": bson.M{"friends.not-an-object-id": true}}); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	h := newHandler(db)
	req := testutil.NewAuthenticatedRequest("GET", "/", nil,
		testutil.UserFor(alice.ID, alice.FullName, alice.Email))
	rec := testutil.NewRecorder()
	h.ServeList(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	var got []struct {
		ID       string `json:"id"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("friends: got %d, want 1", len(got))
	}
	if got[0].ID != bob.ID.Hex() || got[0].Email != "bob@test.com" {
		t.Errorf("friend: got %+v, want bob", got[0])
	}
}

func TestHandleRemove_RemovesBothSides(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	alice := fix.CreateUser(ctx, "Alice", "alice@test.com")
	bob := fix.CreateUser(ctx, "Bob", "bob@test.com")
	fix.MakeFriends(ctx, alice, bob)

	h := newHandler(db)
	req := testutil.NewAuthenticatedRequest("DELETE", "/"+bob.ID.Hex(), nil,
		testutil.UserFor(alice.ID, alice.FullName, alice.Email))
	req = testutil.WithChiURLParam(req, "friendID", bob.ID.Hex())

	rec := testutil.NewRecorder()
	h.HandleRemove(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusNoContent)

	users := userstore.New(db)
	gotAlice, err := users.GetByID(ctx, alice.ID)
	if err != nil {
		t.Fatalf("get alice: %v", err)
	}
	gotBob, err := users.GetByID(ctx, bob.ID)
	if err != nil {
		t.Fatalf("get bob: %v", err)
	}
	if gotAlice.Friends[bob.ID.Hex()] {
		t.Error("alice still lists bob as a friend")
	}
	if gotBob.Friends[alice.ID.Hex()] {
		t.Error("bob still lists alice as a friend")
	}
}

func TestHandleRemove_NotAFriendIs404(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fix := testutil.NewFixtures(t, db)
	alice := fix.CreateUser(ctx, "Alice", "alice@test.com")
	bob := fix.CreateUser(ctx, "Bob", "bob@test.com")

	h := newHandler(db)
	req := testutil.NewAuthenticatedRequest("DELETE", "/"+bob.ID.Hex(), nil,
		testutil.UserFor(alice.ID, alice.FullName, alice.Email))
	req = testutil.WithChiURLParam(req, "friendID", bob.ID.Hex())

	rec := testutil.NewRecorder()
	h.HandleRemove(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusNotFound)
}
