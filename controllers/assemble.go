package controllers

import (
	"github.com/vibelab/vibe/models"
	"github.com/vibelab/vibe/store"
	"github.com/vibelab/vibe/utils"
	"github.com/vibelab/vibe/views"
)

// assemblePostViews resolves everything the assembler needs for the given
// posts — direct replies, like counts and author records — and builds the
// response views. Authors are batch-loaded in one query to avoid a lookup
// per row.
func assemblePostViews(s *store.Store, posts []models.Post) ([]views.PostView, error) {
	repliesByParent := make(map[uint][]models.Post, len(posts))
	likesByPost := make(map[uint]int64)
	var authorIDs []uint

	countable := make([]models.Post, 0, len(posts))
	countable = append(countable, posts...)

	for _, post := range posts {
		replies, err := s.ListRepliesOfPost(post.ID)
		if err != nil {
			return nil, err
		}
		repliesByParent[post.ID] = replies
		countable = append(countable, replies...)
	}

	for _, post := range countable {
		if _, done := likesByPost[post.ID]; !done {
			count, err := s.CountLikes(post.ID)
			if err != nil {
				return nil, err
			}
			likesByPost[post.ID] = count
		}
		authorIDs = append(authorIDs, post.AuthorID)
	}

	users, err := s.ListUsersByID(utils.UniqueUint(authorIDs))
	if err != nil {
		return nil, err
	}
	usersByID := make(map[uint]models.User, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}

	result := make([]views.PostView, 0, len(posts))
	for _, post := range posts {
		result = append(result, views.AssemblePost(post, repliesByParent, likesByPost, usersByID))
	}
	return result, nil
}
