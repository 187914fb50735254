package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sujalbistaa/bookit/internal/apperr"
	"github.com/sujalbistaa/bookit/internal/auth"
	"github.com/sujalbistaa/bookit/internal/models"
	"github.com/sujalbistaa/bookit/internal/pagination"
	"github.com/sujalbistaa/bookit/internal/testutil"
)

type fixture struct {
	db     *gorm.DB
	svc    *Service
	author auth.Principal
	reader auth.Principal
	admin  auth.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testutil.NewDB(t)
	return &fixture{
		db:     gdb,
		svc:    NewService(gdb, zap.NewNop()),
		author: auth.PrincipalOf(testutil.CreateUser(t, gdb, "omar_writer", models.RoleUser)),
		reader: auth.PrincipalOf(testutil.CreateUser(t, gdb, "lina_reader", models.RoleUser)),
		admin:  auth.PrincipalOf(testutil.CreateUser(t, gdb, "admin", models.RoleAdmin)),
	}
}

func TestPostLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	post, err := f.svc.CreatePost(ctx, f.author, PostInput{Content: "  Reading Season of Migration  ", Images: []string{"https://img/1.png"}})
	require.NoError(t, err)
	assert.Equal(t, "Reading Season of Migration", post.Content)
	require.NotNil(t, post.Author)
	assert.Equal(t, "omar_writer", post.Author.Username)
	assert.Equal(t, models.Images{"https://img/1.png"}, post.Images)

	_, err = f.svc.CreatePost(ctx, f.author, PostInput{Content: "   "})
	assert.True(t, apperr.IsInvalid(err))
	assert.Contains(t, apperr.FieldsOf(err), "content")

	updated := "Finished it"
	_, err = f.svc.UpdatePost(ctx, f.reader, post.ID, PostPatch{Content: &updated})
	assert.True(t, apperr.IsForbidden(err))

	got, err := f.svc.UpdatePost(ctx, f.admin, post.ID, PostPatch{Content: &updated})
	require.NoError(t, err)
	assert.Equal(t, "Finished it", got.Content)
	assert.Equal(t, models.Images{"https://img/1.png"}, got.Images)

	_, err = f.svc.GetPost(ctx, "missing")
	assert.True(t, apperr.IsNotFound(err))
}

func TestListPostsSortsByLikes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	quiet := testutil.CreatePost(t, f.db, f.author.ID, "quiet")
	popular := testutil.CreatePost(t, f.db, f.author.ID, "popular")
	_, err := f.svc.Like(ctx, f.reader, models.KindPost, popular.ID)
	require.NoError(t, err)

	posts, total, err := f.svc.ListPosts(ctx, "top", pagination.Parse("1", "10"))
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, posts, 2)
	assert.Equal(t, popular.ID, posts[0].ID)
	assert.Equal(t, quiet.ID, posts[1].ID)

	posts, _, err = f.svc.ListPosts(ctx, "", pagination.Parse("2", "1"))
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestLikesAreASet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := testutil.CreatePost(t, f.db, f.author.ID, "like me")

	count, err := f.svc.Like(ctx, f.reader, models.KindPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = f.svc.Like(ctx, f.reader, models.KindPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = f.svc.Like(ctx, f.author, models.KindPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = f.svc.Unlike(ctx, f.reader, models.KindPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = f.svc.Unlike(ctx, f.reader, models.KindPost, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	stored, err := f.svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.LikesCount)

	liked, err := f.svc.HasLiked(ctx, f.author.ID, models.KindPost, post.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	_, err = f.svc.Like(ctx, f.reader, models.KindPost, "missing")
	assert.True(t, apperr.IsNotFound(err))
	_, err = f.svc.Like(ctx, f.reader, models.KindProduct, post.ID)
	assert.True(t, apperr.IsInvalid(err))
}

func TestCommentsKeepParentCountExact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	review := testutil.CreateReview(t, f.db, f.author.ID, "Season of Migration to the North")

	first, err := f.svc.AddComment(ctx, f.reader, models.KindReview, review.ID, "Agreed")
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, f.author, models.KindReview, review.ID, "Thanks")
	require.NoError(t, err)

	got, err := f.svc.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentsCount)

	assert.True(t, apperr.IsForbidden(f.svc.DeleteComment(ctx, f.author, first.ID)))
	require.NoError(t, f.svc.DeleteComment(ctx, f.reader, first.ID))

	got, err = f.svc.GetReview(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentsCount)

	comments, err := f.svc.ListComments(ctx, models.KindReview, review.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Thanks", comments[0].Content)

	var kept int64
	require.NoError(t, f.db.Model(&models.Comment{}).Where("id = ?", first.ID).Count(&kept).Error)
	assert.EqualValues(t, 1, kept, "soft-deleted comment row is retained")

	_, err = f.svc.Like(ctx, f.author, models.KindComment, first.ID)
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(f.svc.DeleteComment(ctx, f.reader, first.ID)))
}

func TestAddCommentValidatesParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddComment(ctx, f.reader, models.KindPost, "missing", "hello")
	assert.True(t, apperr.IsNotFound(err))

	_, err = f.svc.AddComment(ctx, f.reader, models.KindUser, f.author.ID, "hello")
	assert.True(t, apperr.IsInvalid(err))

	product := testutil.CreateProduct(t, f.db, f.author.ID, "Notebook", 10, 3)
	comment, err := f.svc.AddComment(ctx, f.reader, models.KindProduct, product.ID, "Nice paper")
	require.NoError(t, err)
	assert.Equal(t, models.KindProduct, comment.ParentType)
}

func TestDeletePostCascadesComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := testutil.CreatePost(t, f.db, f.author.ID, "to be removed")
	comment, err := f.svc.AddComment(ctx, f.reader, models.KindPost, post.ID, "first")
	require.NoError(t, err)
	_, err = f.svc.Like(ctx, f.author, models.KindComment, comment.ID)
	require.NoError(t, err)

	assert.True(t, apperr.IsForbidden(f.svc.DeletePost(ctx, f.reader, post.ID)))
	require.NoError(t, f.svc.DeletePost(ctx, f.author, post.ID))

	_, err = f.svc.GetPost(ctx, post.ID)
	assert.True(t, apperr.IsNotFound(err))

	var comments, likes int64
	require.NoError(t, f.db.Model(&models.Comment{}).Count(&comments).Error)
	require.NoError(t, f.db.Model(&models.Like{}).Count(&likes).Error)
	assert.Zero(t, comments)
	assert.Zero(t, likes)
}

func TestCollaboratorOps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := testutil.CreatePost(t, f.db, f.author.ID, "reported")
	comment, err := f.svc.AddComment(ctx, f.reader, models.KindPost, post.ID, "rude")
	require.NoError(t, err)

	ok, err := Exists(f.db, models.KindPost, post.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, IncrementReportCount(f.db, models.KindPost, post.ID))
	require.NoError(t, IncrementReportCount(f.db, models.KindPost, post.ID))
	require.NoError(t, IncrementReportCount(f.db, models.KindComment, comment.ID))
	got, err := f.svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ReportsCount)

	t.Run("hard-deleting a comment recounts its parent", func(t *testing.T) {
		require.NoError(t, DeleteByID(f.db, models.KindComment, comment.ID))
		got, err := f.svc.GetPost(ctx, post.ID)
		require.NoError(t, err)
		assert.Zero(t, got.CommentsCount)
	})

	t.Run("hard-deleting a post leaves its comments", func(t *testing.T) {
		_, err := f.svc.AddComment(ctx, f.reader, models.KindPost, post.ID, "still here")
		require.NoError(t, err)
		require.NoError(t, DeleteByID(f.db, models.KindPost, post.ID))

		ok, err := Exists(f.db, models.KindPost, post.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		var n int64
		require.NoError(t, f.db.Model(&models.Comment{}).Where("parent_id = ?", post.ID).Count(&n).Error)
		assert.EqualValues(t, 1, n)
	})

	t.Run("deleting twice is safe", func(t *testing.T) {
		assert.NoError(t, DeleteByID(f.db, models.KindPost, post.ID))
		assert.NoError(t, DeleteByID(f.db, models.KindComment, comment.ID))
	})
}

func TestPurgeCommentIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := testutil.CreatePost(t, f.db, f.author.ID, "thread")
	comment, err := f.svc.AddComment(ctx, f.reader, models.KindPost, post.ID, "off topic")
	require.NoError(t, err)

	assert.True(t, apperr.IsForbidden(f.svc.PurgeComment(ctx, f.reader, comment.ID)))
	require.NoError(t, f.svc.PurgeComment(ctx, f.admin, comment.ID))

	var n int64
	require.NoError(t, f.db.Model(&models.Comment{}).Where("id = ?", comment.ID).Count(&n).Error)
	assert.Zero(t, n)
	got, err := f.svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, got.CommentsCount)

	assert.True(t, apperr.IsNotFound(f.svc.PurgeComment(ctx, f.admin, comment.ID)))
}
