package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vibelab/vibe/middleware"
	"github.com/vibelab/vibe/models"
	"github.com/vibelab/vibe/store"
	"github.com/vibelab/vibe/utils"
	"github.com/vibelab/vibe/views"
)

// errReplyDepth marks an attempt to reply to a post that is itself a reply.
var errReplyDepth = errors.New("reply depth exceeded")

// PostController handles post creation, the global feed and likes.
type PostController struct {
	store *store.Store
}

// NewPostController creates a PostController.
func NewPostController(s *store.Store) *PostController {
	return &PostController{store: s}
}

// CreatePost persists a new post or one-level reply and returns its
// assembled view. Requires auth; rate limited.
func (p *PostController) CreatePost(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "could not validate credentials")
		return
	}

	var req struct {
		Content  string `json:"content" binding:"required,max=280"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, "invalid request payload")
		return
	}

	content := strings.TrimSpace(utils.Sanitize(req.Content))
	if content == "" {
		utils.Error(ctx, http.StatusBadRequest, "content cannot be empty")
		return
	}

	post := models.Post{
		AuthorID: userID,
		Content:  content,
		ParentID: req.ParentID,
	}
	err := p.store.Transaction(func(tx *store.Store) error {
		if req.ParentID != nil {
			parent, err := tx.FindPostByID(*req.ParentID)
			if err != nil {
				return err
			}
			if parent.ParentID != nil {
				return errReplyDepth
			}
		}
		return tx.InsertPost(&post)
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, "parent post not found")
		return
	case errors.Is(err, errReplyDepth):
		utils.Error(ctx, http.StatusBadRequest, "cannot reply more than one level deep")
		return
	case err != nil:
		utils.Error(ctx, http.StatusInternalServerError, "failed to create post")
		return
	}

	invalidateReadCaches()
	utils.Event("post_created", "post_id", post.ID, "author_id", userID, "username", ctx.GetString(middleware.ContextUsernameKey))

	postViews, err := assemblePostViews(p.store, []models.Post{post})
	if err != nil || len(postViews) != 1 {
		utils.Error(ctx, http.StatusInternalServerError, "failed to load post")
		return
	}
	ctx.JSON(http.StatusOK, postViews[0])
}

// Feed returns the paginated global feed, newest first. Public, no auth
// and no rate limit. Replies show up both nested under their parent and as
// rows of their own.
func (p *PostController) Feed(ctx *gin.Context) {
	page := parseIntQuery(ctx.Query("page"), 0)
	pageSize := parseIntQuery(ctx.Query("page_size"), views.DefaultPageSize)
	offset, limit := views.PageWindow(page, pageSize)

	cacheKey := fmt.Sprintf("cache:feed:off=%d:lim=%d", offset, limit)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	posts, err := p.store.ListPostsNewestFirst(offset, limit)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list posts")
		return
	}

	postViews, err := assemblePostViews(p.store, posts)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list posts")
		return
	}

	utils.CacheSetJSON(cacheKey, postViews, 0)
	ctx.JSON(http.StatusOK, postViews)
}

// LikePost records a like for the authenticated user. Duplicate likes are
// rejected; the storage-level unique constraint settles concurrent ties.
func (p *PostController) LikePost(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "could not validate credentials")
		return
	}

	postID64, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		utils.Error(ctx, http.StatusNotFound, "post not found")
		return
	}
	postID := uint(postID64)

	err = p.store.Transaction(func(tx *store.Store) error {
		if _, err := tx.FindPostByID(postID); err != nil {
			return err
		}
		// Fast path only; InsertLike hitting the unique index is the
		// authoritative duplicate signal.
		if _, err := tx.FindLike(userID, postID); err == nil {
			return store.ErrDuplicate
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return tx.InsertLike(&models.Like{UserID: userID, PostID: postID})
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, "post not found")
		return
	case errors.Is(err, store.ErrDuplicate):
		utils.Error(ctx, http.StatusBadRequest, "already liked")
		return
	case err != nil:
		utils.Error(ctx, http.StatusInternalServerError, "failed to like post")
		return
	}

	invalidateReadCaches()
	utils.Event("post_liked", "post_id", postID, "user_id", userID, "username", ctx.GetString(middleware.ContextUsernameKey))
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseIntQuery(raw string, def int) int {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// invalidateReadCaches drops cached feed pages and profiles after a write.
// Best effort: cache failures never affect the response.
func invalidateReadCaches() {
	utils.InvalidateByPrefix("cache:feed:")
	utils.InvalidateByPrefix("cache:profile:")
}
