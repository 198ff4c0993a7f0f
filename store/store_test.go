package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vibelab/vibe/models"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Like{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

func mustInsertUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, HashedPassword: "x"}
	if err := s.InsertUser(user); err != nil {
		t.Fatalf("insert user %s: %v", username, err)
	}
	return user
}

func mustInsertPost(t *testing.T, s *Store, authorID uint, content string, createdAt time.Time, parentID *uint) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: authorID, Content: content, CreatedAt: createdAt, ParentID: parentID}
	if err := s.InsertPost(post); err != nil {
		t.Fatalf("insert post %q: %v", content, err)
	}
	return post
}

func TestUserUniqueness(t *testing.T) {
	s := setupStore(t)

	mustInsertUser(t, s, "alice")

	err := s.InsertUser(&models.User{Username: "alice", HashedPassword: "y"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate username: got %v, want ErrDuplicate", err)
	}

	user, err := s.FindUserByUsername("alice")
	if err != nil {
		t.Fatalf("FindUserByUsername: %v", err)
	}
	if user.Username != "alice" {
		t.Errorf("username = %q, want alice", user.Username)
	}

	if _, err := s.FindUserByUsername("nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: got %v, want ErrNotFound", err)
	}
}

func TestListUsersByID(t *testing.T) {
	s := setupStore(t)

	alice := mustInsertUser(t, s, "alice")
	bob := mustInsertUser(t, s, "bob")

	users, err := s.ListUsersByID([]uint{alice.ID, bob.ID, 9999})
	if err != nil {
		t.Fatalf("ListUsersByID: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("users = %d, want 2 (missing ids are skipped)", len(users))
	}

	none, err := s.ListUsersByID(nil)
	if err != nil || len(none) != 0 {
		t.Errorf("ListUsersByID(nil) = %v, %v; want empty, nil", none, err)
	}
}

func TestPostOrderingAndWindow(t *testing.T) {
	s := setupStore(t)
	alice := mustInsertUser(t, s, "alice")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		mustInsertPost(t, s, alice.ID, "post", base.Add(time.Duration(i)*time.Minute), nil)
	}

	all, err := s.ListPostsNewestFirst(0, 100)
	if err != nil {
		t.Fatalf("ListPostsNewestFirst: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("posts = %d, want 5", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].CreatedAt.After(all[i-1].CreatedAt) {
			t.Fatalf("posts not newest-first at index %d", i)
		}
	}

	window, err := s.ListPostsNewestFirst(2, 2)
	if err != nil {
		t.Fatalf("ListPostsNewestFirst window: %v", err)
	}
	if len(window) != 2 {
		t.Fatalf("window = %d posts, want 2", len(window))
	}
	if window[0].ID != all[2].ID || window[1].ID != all[3].ID {
		t.Errorf("window returned ids %d, %d; want %d, %d", window[0].ID, window[1].ID, all[2].ID, all[3].ID)
	}

	past, err := s.ListPostsNewestFirst(100, 10)
	if err != nil || len(past) != 0 {
		t.Errorf("offset past the end: got %d posts, err %v; want empty", len(past), err)
	}
}

func TestRepliesOldestFirst(t *testing.T) {
	s := setupStore(t)
	alice := mustInsertUser(t, s, "alice")

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	root := mustInsertPost(t, s, alice.ID, "root", base, nil)
	second := mustInsertPost(t, s, alice.ID, "second", base.Add(2*time.Minute), &root.ID)
	first := mustInsertPost(t, s, alice.ID, "first", base.Add(time.Minute), &root.ID)

	replies, err := s.ListRepliesOfPost(root.ID)
	if err != nil {
		t.Fatalf("ListRepliesOfPost: %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("replies = %d, want 2", len(replies))
	}
	if replies[0].ID != first.ID || replies[1].ID != second.ID {
		t.Errorf("replies not oldest-first: got %d, %d", replies[0].ID, replies[1].ID)
	}
}

func TestLikeUniqueness(t *testing.T) {
	s := setupStore(t)
	alice := mustInsertUser(t, s, "alice")
	bob := mustInsertUser(t, s, "bob")
	post := mustInsertPost(t, s, alice.ID, "root", time.Now().UTC(), nil)

	if err := s.InsertLike(&models.Like{UserID: bob.ID, PostID: post.ID}); err != nil {
		t.Fatalf("first like: %v", err)
	}
	err := s.InsertLike(&models.Like{UserID: bob.ID, PostID: post.ID})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("second like: got %v, want ErrDuplicate", err)
	}

	count, err := s.CountLikes(post.ID)
	if err != nil {
		t.Fatalf("CountLikes: %v", err)
	}
	if count != 1 {
		t.Errorf("likes = %d, want exactly 1", count)
	}

	if _, err := s.FindLike(bob.ID, post.ID); err != nil {
		t.Errorf("FindLike existing: %v", err)
	}
	if _, err := s.FindLike(alice.ID, post.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindLike missing: got %v, want ErrNotFound", err)
	}
}

func TestTransactionRollback(t *testing.T) {
	s := setupStore(t)
	alice := mustInsertUser(t, s, "alice")

	boom := errors.New("boom")
	err := s.Transaction(func(tx *Store) error {
		if err := tx.InsertPost(&models.Post{AuthorID: alice.ID, Content: "doomed"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Transaction: got %v, want boom", err)
	}

	posts, err := s.ListPostsNewestFirst(0, 10)
	if err != nil {
		t.Fatalf("ListPostsNewestFirst: %v", err)
	}
	if len(posts) != 0 {
		t.Errorf("rolled-back post persisted: %d posts", len(posts))
	}
}
