package service

import (
	"context"
	"testing"

	"vecinu/internal/models"
	"vecinu/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_CreateNotifiesPostAuthor(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	centru := testutil.CreateNeighborhood(t, env.db, "centru")
	ana := testutil.CreateUser(t, env.db, "Ana Pop", testutil.InNeighborhood(centru))
	mihai := testutil.CreateUser(t, env.db, "Mihai Ionescu", testutil.InNeighborhood(centru))
	post := testutil.CreatePost(t, env.db, ana, centru, models.CategoryQuestion)

	_, err := env.svc.Comments.Create(ctx, ana.ID, CreateCommentInput{PostID: post.ID, Body: "Revin cu detalii."})
	require.NoError(t, err)
	assert.Empty(t, env.notificationsFor(t, ana.ID), "own post")

	comment, err := env.svc.Comments.Create(ctx, mihai.ID, CreateCommentInput{PostID: post.ID, Body: "Eu știu un <i>instalator</i> bun."})
	require.NoError(t, err)
	assert.Equal(t, "Eu știu un instalator bun.", comment.Body)
	assert.Equal(t, mihai.ID, comment.AuthorView.ID)

	got := env.notificationsFor(t, ana.ID)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationNewComment, got[0].Type)
	assert.Equal(t, "Mihai Ionescu a comentat la postarea ta", got[0].Title)
	assert.Equal(t, comment.ID.String(), got[0].Data["commentId"])
	assert.Empty(t, env.notificationsFor(t, mihai.ID))

	assert.Equal(t, 2, env.reload(t, post).CommentCount)
}

func TestCommentService_ReplyNotifiesParentAuthor(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	centru := testutil.CreateNeighborhood(t, env.db, "centru")
	ana := testutil.CreateUser(t, env.db, "Ana Pop", testutil.InNeighborhood(centru))
	mihai := testutil.CreateUser(t, env.db, "Mihai Ionescu", testutil.InNeighborhood(centru))
	post := testutil.CreatePost(t, env.db, ana, centru, models.CategoryQuestion)
	parent := testutil.CreateComment(t, env.db, mihai, post, nil)

	reply, err := env.svc.Comments.Create(ctx, ana.ID, CreateCommentInput{PostID: post.ID, ParentID: &parent.ID, Body: "Mulțumesc!"})
	require.NoError(t, err)

	got := env.notificationsFor(t, mihai.ID)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationCommentReply, got[0].Type)
	assert.Empty(t, env.notificationsFor(t, ana.ID))

	_, err = env.svc.Comments.Create(ctx, mihai.ID, CreateCommentInput{PostID: post.ID, ParentID: &parent.ID, Body: "Cu drag."})
	require.NoError(t, err)
	assert.Len(t, env.notificationsFor(t, mihai.ID), 1, "replying in own thread")

	_, err = env.svc.Comments.Create(ctx, mihai.ID, CreateCommentInput{PostID: post.ID, ParentID: &reply.ID, Body: "Nested"})
	requireCode(t, err, models.CodeValidation)

	replies, err := env.svc.Comments.Replies(ctx, parent.ID)
	require.NoError(t, err)
	assert.Len(t, replies, 2)

	page, err := env.svc.Comments.List(ctx, post.ID, "", 0, nil)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Items[0].ReplyCount)
}

func TestCommentService_CreateRejects(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	centru := testutil.CreateNeighborhood(t, env.db, "centru")
	ana := testutil.CreateUser(t, env.db, "Ana Pop", testutil.InNeighborhood(centru))
	banned := testutil.CreateUser(t, env.db, "Ion Banat", testutil.Banned("spam"))
	post := testutil.CreatePost(t, env.db, ana, centru, models.CategoryQuestion)
	hidden := testutil.CreatePost(t, env.db, ana, centru, models.CategoryQuestion, testutil.WithStatus(models.PostHidden))
	otherPost := testutil.CreatePost(t, env.db, ana, centru, models.CategoryEvent)
	foreign := testutil.CreateComment(t, env.db, ana, otherPost, nil)

	_, err := env.svc.Comments.Create(ctx, banned.ID, CreateCommentInput{PostID: post.ID, Body: "Hello"})
	requireCode(t, err, models.CodeAuthorization)

	_, err = env.svc.Comments.Create(ctx, ana.ID, CreateCommentInput{PostID: hidden.ID, Body: "Hello"})
	requireCode(t, err, models.CodeNotFound)

	_, err = env.svc.Comments.Create(ctx, ana.ID, CreateCommentInput{PostID: post.ID, ParentID: &foreign.ID, Body: "Hello"})
	requireCode(t, err, models.CodeValidation)

	_, err = env.svc.Comments.Create(ctx, ana.ID, CreateCommentInput{PostID: post.ID, Body: "<p></p>"})
	requireCode(t, err, models.CodeValidation)

	assert.Zero(t, env.reload(t, post).CommentCount)
	assert.Zero(t, env.reload(t, hidden).CommentCount)
}

func TestCommentService_DeleteDecrementsOnce(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	centru := testutil.CreateNeighborhood(t, env.db, "centru")
	ana := testutil.CreateUser(t, env.db, "Ana Pop", testutil.InNeighborhood(centru))
	mihai := testutil.CreateUser(t, env.db, "Mihai Ionescu", testutil.InNeighborhood(centru))
	mod := testutil.CreateUser(t, env.db, "Moderator", testutil.WithRole(models.RoleModerator))
	post := testutil.CreatePost(t, env.db, ana, centru, models.CategoryQuestion)

	first := testutil.CreateComment(t, env.db, mihai, post, nil)
	second := testutil.CreateComment(t, env.db, mihai, post, nil)
	require.Equal(t, 2, env.reload(t, post).CommentCount)

	requireCode(t, env.svc.Comments.Delete(ctx, ana, first.ID, ""), models.CodeAuthorization)

	require.NoError(t, env.svc.Comments.Delete(ctx, mihai, first.ID, ""))
	assert.Equal(t, 1, env.reload(t, post).CommentCount)
	assert.Zero(t, env.auditCount(t, first.ID))

	requireCode(t, env.svc.Comments.Delete(ctx, mihai, first.ID, ""), models.CodeNotFound)
	assert.Equal(t, 1, env.reload(t, post).CommentCount)

	require.NoError(t, env.svc.Comments.Delete(ctx, mod, second.ID, "limbaj vulgar"))
	assert.Equal(t, 0, env.reload(t, post).CommentCount)
	assert.Equal(t, int64(1), env.auditCount(t, second.ID))
}

func TestCommentService_Update(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	centru := testutil.CreateNeighborhood(t, env.db, "centru")
	ana := testutil.CreateUser(t, env.db, "Ana Pop", testutil.InNeighborhood(centru))
	mihai := testutil.CreateUser(t, env.db, "Mihai Ionescu", testutil.InNeighborhood(centru))
	post := testutil.CreatePost(t, env.db, ana, centru, models.CategoryQuestion)
	comment := testutil.CreateComment(t, env.db, mihai, post, nil)

	updated, err := env.svc.Comments.Update(ctx, mihai, comment.ID, UpdateCommentInput{Body: "Corectez: marți."})
	require.NoError(t, err)
	assert.Equal(t, "Corectez: marți.", updated.Body)
	assert.True(t, updated.IsEdited)

	_, err = env.svc.Comments.Update(ctx, ana, comment.ID, UpdateCommentInput{Body: "Nu e al meu"})
	requireCode(t, err, models.CodeAuthorization)
}
