// Package views turns raw post rows into the response trees served by the
// API. It is a pure transformation: no authorization, no storage access.
package views

import (
	"sort"
	"time"

	"github.com/vibelab/vibe/models"
)

// DeletedAuthor is the sentinel username shown when a post's author record
// cannot be resolved. Accounts are never deleted in practice; the assembler
// tolerates a missing row anyway.
const DeletedAuthor = "<deleted>"

const (
	// DefaultPageSize is used when the query omits page_size.
	DefaultPageSize = 50

	maxPageSize = 100
)

// PostView is the wire shape of a post. Replies carry exactly one level:
// a reply's own Replies slice is always empty, the tree never recurses.
type PostView struct {
	ID             uint       `json:"id"`
	AuthorUsername string     `json:"author_username"`
	AuthorID       uint       `json:"author_id"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
	ParentID       *uint      `json:"parent_id"`
	Likes          int64      `json:"likes"`
	Replies        []PostView `json:"replies"`
}

// ProfileView is a user's public metadata plus all their posts.
type ProfileView struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	DisplayName *string    `json:"display_name"`
	CreatedAt   time.Time  `json:"created_at"`
	Posts       []PostView `json:"posts"`
}

// AssemblePost builds the view for one post from pre-fetched lookup maps:
// direct replies keyed by parent id, like counts keyed by post id, and
// users keyed by id. Replies are ordered oldest-first regardless of the
// map's ordering; deeper descendants are truncated, not recursed.
func AssemblePost(post models.Post, repliesByParent map[uint][]models.Post, likesByPost map[uint]int64, usersByID map[uint]models.User) PostView {
	view := leafView(post, likesByPost, usersByID)

	replies := append([]models.Post(nil), repliesByParent[post.ID]...)
	sort.SliceStable(replies, func(i, j int) bool {
		if replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].ID < replies[j].ID
		}
		return replies[i].CreatedAt.Before(replies[j].CreatedAt)
	})
	for _, reply := range replies {
		view.Replies = append(view.Replies, leafView(reply, likesByPost, usersByID))
	}
	return view
}

// leafView builds a view with an always-empty reply list.
func leafView(post models.Post, likesByPost map[uint]int64, usersByID map[uint]models.User) PostView {
	username := DeletedAuthor
	if author, ok := usersByID[post.AuthorID]; ok {
		username = author.Username
	}
	return PostView{
		ID:             post.ID,
		AuthorUsername: username,
		AuthorID:       post.AuthorID,
		Content:        post.Content,
		CreatedAt:      post.CreatedAt,
		ParentID:       post.ParentID,
		Likes:          likesByPost[post.ID],
		Replies:        []PostView{},
	}
}

// PageWindow converts page/page_size query values into an offset and limit.
// page_size is clamped to [1, 100], page to >= 0; invalid values are
// silently clamped, never rejected.
func PageWindow(page, pageSize int) (offset, limit int) {
	if pageSize < 1 {
		pageSize = 1
	} else if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page < 0 {
		page = 0
	}
	return page * pageSize, pageSize
}
