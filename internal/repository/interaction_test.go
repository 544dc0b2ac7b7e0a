package repository

import (
	"testing"

	"piazza/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestInteractionRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInteractionRepository(db)
	ctx := testContext()

	owner := createTestUser(t, db, "olga")
	voter := createTestUser(t, db, "nick")
	post := createTestPost(t, db, owner.ID, "Post", []string{"Tech"}, baseTime, 60)

	interaction := &models.Interaction{PostID: post.ID, UserID: voter.ID, Type: models.InteractionLike}
	require.NoError(t, repo.Create(ctx, interaction))
	require.NotZero(t, interaction.ID)

	got, err := repo.GetByPostAndUser(ctx, post.ID, voter.ID)
	require.NoError(t, err)
	assert.Equal(t, interaction.ID, got.ID)
	assert.Equal(t, models.InteractionLike, got.Type)

	byID, err := repo.GetByID(ctx, interaction.ID)
	require.NoError(t, err)
	assert.Equal(t, "nick", byID.User.Username)
}

func TestInteractionRepository_DuplicateVoteRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInteractionRepository(db)
	ctx := testContext()

	owner := createTestUser(t, db, "olga")
	voter := createTestUser(t, db, "nick")
	post := createTestPost(t, db, owner.ID, "Post", []string{"Tech"}, baseTime, 60)

	require.NoError(t, repo.Create(ctx, &models.Interaction{PostID: post.ID, UserID: voter.ID, Type: models.InteractionLike}))

	// The unique index is the backstop for the one-vote rule
	err := repo.Create(ctx, &models.Interaction{PostID: post.ID, UserID: voter.ID, Type: models.InteractionDislike})
	assert.Error(t, err)
}

func TestInteractionRepository_UpdateType(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInteractionRepository(db)
	ctx := testContext()

	owner := createTestUser(t, db, "olga")
	voter := createTestUser(t, db, "nick")
	post := createTestPost(t, db, owner.ID, "Post", []string{"Tech"}, baseTime, 60)
	interaction := addInteraction(t, db, post.ID, voter.ID, models.InteractionLike)

	require.NoError(t, repo.UpdateType(ctx, interaction.ID, models.InteractionDislike))

	got, err := repo.GetByID(ctx, interaction.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InteractionDislike, got.Type)
}

func TestInteractionRepository_DeleteFreesSlot(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInteractionRepository(db)
	ctx := testContext()

	owner := createTestUser(t, db, "olga")
	voter := createTestUser(t, db, "nick")
	post := createTestPost(t, db, owner.ID, "Post", []string{"Tech"}, baseTime, 60)
	interaction := addInteraction(t, db, post.ID, voter.ID, models.InteractionLike)

	require.NoError(t, repo.Delete(ctx, interaction))

	_, err := repo.GetByPostAndUser(ctx, post.ID, voter.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// After a hard delete the user may vote again
	require.NoError(t, repo.Create(ctx, &models.Interaction{PostID: post.ID, UserID: voter.ID, Type: models.InteractionDislike}))
}

func TestInteractionRepository_CountByType(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInteractionRepository(db)
	ctx := testContext()

	owner := createTestUser(t, db, "olga")
	a := createTestUser(t, db, "mary")
	b := createTestUser(t, db, "nick")
	c := createTestUser(t, db, "pete")
	post := createTestPost(t, db, owner.ID, "Post", []string{"Tech"}, baseTime, 60)

	addInteraction(t, db, post.ID, a.ID, models.InteractionLike)
	addInteraction(t, db, post.ID, b.ID, models.InteractionLike)
	addInteraction(t, db, post.ID, c.ID, models.InteractionDislike)

	likes, err := repo.CountByType(ctx, post.ID, models.InteractionLike)
	require.NoError(t, err)
	assert.Equal(t, int64(2), likes)

	dislikes, err := repo.CountByType(ctx, post.ID, models.InteractionDislike)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dislikes)
}
