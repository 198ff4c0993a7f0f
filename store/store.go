// Package store is the persistence layer: explicit query functions keyed by
// entity ids, so callers never navigate ORM relationships directly.
package store

import (
	"errors"

	"gorm.io/gorm"

	"github.com/vibelab/vibe/models"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a uniqueness
	// constraint (username taken, like already recorded).
	ErrDuplicate = errors.New("duplicate record")
)

// Store wraps a gorm handle with the query surface the handlers need.
type Store struct {
	db *gorm.DB
}

// New creates a Store on top of db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Transaction runs fn with a Store bound to one database transaction, so a
// request's reads and writes commit as a single unit.
func (s *Store) Transaction(fn func(tx *Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func (s *Store) InsertUser(user *models.User) error {
	return translate(s.db.Create(user).Error)
}

func (s *Store) FindUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *Store) FindUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// ListUsersByID loads the given users in one query; missing ids are simply
// absent from the result.
func (s *Store) ListUsersByID(ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []models.User
	if err := s.db.Find(&users, ids).Error; err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (s *Store) InsertPost(post *models.Post) error {
	return translate(s.db.Create(post).Error)
}

func (s *Store) FindPostByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.First(&post, id).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// ListPostsNewestFirst returns the subsequence [offset, offset+limit) of
// all posts ordered by creation time descending. Replies are included as
// rows of their own.
func (s *Store) ListPostsNewestFirst(offset, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&posts).Error
	if err != nil {
		return nil, translate(err)
	}
	return posts, nil
}

// ListPostsByAuthor returns all posts by one author, newest first.
func (s *Store) ListPostsByAuthor(authorID uint) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.Where("author_id = ?", authorID).Order("created_at DESC, id DESC").Find(&posts).Error
	if err != nil {
		return nil, translate(err)
	}
	return posts, nil
}

// ListRepliesOfPost returns the direct replies of a post, oldest first.
func (s *Store) ListRepliesOfPost(postID uint) ([]models.Post, error) {
	var replies []models.Post
	err := s.db.Where("parent_id = ?", postID).Order("created_at ASC, id ASC").Find(&replies).Error
	if err != nil {
		return nil, translate(err)
	}
	return replies, nil
}

func (s *Store) InsertLike(like *models.Like) error {
	return translate(s.db.Create(like).Error)
}

func (s *Store) FindLike(userID, postID uint) (*models.Like, error) {
	var like models.Like
	err := s.db.Where("user_id = ? AND post_id = ?", userID, postID).First(&like).Error
	if err != nil {
		return nil, translate(err)
	}
	return &like, nil
}

func (s *Store) CountLikes(postID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	if err != nil {
		return 0, translate(err)
	}
	return count, nil
}

// translate maps gorm errors to the store's sentinels; anything else is
// passed through untouched for the handler to treat as a server error.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
