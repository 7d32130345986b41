package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreKnowledgeBaseOrdering(t *testing.T) {
	store := NewMemoryStore(
		Entry{Question: "first", Answer: "a", Priority: 1},
		Entry{Question: "hidden", Answer: "a", Priority: 50, IsActive: Bool(false)},
		Entry{Question: "second", Answer: "a", Priority: 1},
		Entry{Question: "top", Answer: "a", Priority: 9},
	)

	entries, err := store.KnowledgeBase(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "top", entries[0].Question)
	assert.Equal(t, "first", entries[1].Question)
	assert.Equal(t, "second", entries[2].Question)
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	created, err := store.Create(ctx, &Entry{Category: "pricing", Question: "How much?", Answer: "From $497/mo", Priority: 5})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Active())

	created.Answer = "From $597/mo"
	updated, err := store.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "From $597/mo", updated.Answer)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "From $597/mo", got.Answer)

	require.NoError(t, store.Delete(ctx, created.ID))
	_, err = store.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.ErrorIs(t, store.Delete(ctx, created.ID), ErrEntryNotFound)
}

func TestMemoryStoreListFilter(t *testing.T) {
	store := NewMemoryStore(
		Entry{Category: "faq", Question: "a", Answer: "a"},
		Entry{Category: "pricing", Question: "b", Answer: "b"},
		Entry{Category: "FAQ", Question: "c", Answer: "c"},
	)

	entries, err := store.List(context.Background(), ListFilter{Category: "faq", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "c", entries[0].Question)
}

func TestMemoryStoreBotConfig(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	cfg, err := store.BotConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultBotConfig(), cfg)

	require.NoError(t, store.SaveBotConfig(ctx, BotConfig{BotName: "Ava"}))
	cfg, err = store.BotConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ava", cfg.BotName)
	assert.Equal(t, DefaultBotConfig().PrimaryColor, cfg.PrimaryColor)
}
