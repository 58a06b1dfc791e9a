package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/destocard/backend/internal/domain/address"
	"github.com/destocard/backend/internal/domain/media"
	"github.com/destocard/backend/internal/domain/messaging"
	"github.com/destocard/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormAddressRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormAddressRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	home, err := address.NewAddress(userID, address.Fields{
		Label: "Maison", FullName: "Sacha Ketchum", Street: "1 rue du Bourg",
		PostalCode: "75001", City: "Paris",
	})
	require.NoError(t, err)
	home.MarkDefault()
	require.NoError(t, repo.Save(ctx, home))

	work, err := address.NewAddress(userID, address.Fields{
		Label: "Bureau", FullName: "Sacha Ketchum", Street: "2 avenue Chen",
		PostalCode: "69001", City: "Lyon",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, work))

	list, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, home.ID, list[0].ID)

	require.NoError(t, repo.ClearDefault(ctx, userID))
	stored, err := repo.FindByID(ctx, home.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsDefault)

	n, err := repo.CountByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, repo.Delete(ctx, work.ID))
	_, err = repo.FindByID(ctx, work.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormMessageRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormMessageRepository(db)
	ctx := context.Background()
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

	send := func(from, to uuid.UUID, content string, at time.Time) *messaging.Message {
		m, err := messaging.NewMessage(from, to, nil, content)
		require.NoError(t, err)
		m.CreatedAt = at
		require.NoError(t, repo.Save(ctx, m))
		return m
	}

	base := time.Now().Add(-time.Hour)
	first := send(alice, bob, "Bonjour, la carte est dispo ?", base)
	send(bob, alice, "Oui !", base.Add(time.Minute))
	send(carol, bob, "Échange ?", base.Add(2*time.Minute))

	inbox, total, err := repo.FindInbox(ctx, bob, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, inbox, 2)
	assert.Equal(t, carol, inbox[0].SenderID)

	conv, err := repo.FindConversation(ctx, bob, alice, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, conv, 2)
	assert.Equal(t, first.ID, conv[0].ID)

	unread, err := repo.CountUnread(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	require.NoError(t, first.MarkRead(bob))
	require.NoError(t, repo.Save(ctx, first))
	unread, err = repo.CountUnread(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestGormMediaRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormMediaRepository(db)
	ctx := context.Background()
	owner, productID := uuid.New(), uuid.New()

	m, err := media.NewMedia(owner, &productID, media.UploadInfo{
		FileName:    "a.jpg",
		ContentType: "image/jpeg",
		Size:        1024,
		StorageKey:  "2026/10/a.jpg",
		URL:         "/uploads/2026/10/a.jpg",
	}, media.DefaultLimits())
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, m))

	list, err := repo.FindByProduct(ctx, productID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, media.KindImage, list[0].Kind)

	list, err = repo.FindByOwner(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, m.ID))
	_, err = repo.FindByID(ctx, m.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
