package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var entryRowColumns = []string{"id", "category", "question", "keywords", "answer", "priority", "is_active", "created_at", "updated_at"}

func TestPostgresStoreKnowledgeBase(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	id := uuid.NewString()
	mock.ExpectQuery("FROM knowledge_entries WHERE is_active = TRUE ORDER BY priority DESC").
		WillReturnRows(pgxmock.NewRows(entryRowColumns).
			AddRow(id, "pricing", "pricing", "cost,price", "Plans start at $497/mo", 10, true, now, now))

	store := NewPostgresStore(mock)
	entries, err := store.KnowledgeBase(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, id, entries[0].ID)
	assert.Equal(t, 10, entries[0].Priority)
	assert.True(t, entries[0].Active())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreListWithCategoryAndPaging(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`WHERE LOWER\(category\) = LOWER\(\$1\) ORDER BY priority DESC, created_at ASC LIMIT \$2 OFFSET \$3`).
		WithArgs("faq", 20, 40).
		WillReturnRows(pgxmock.NewRows(entryRowColumns))

	store := NewPostgresStore(mock)
	entries, err := store.List(context.Background(), ListFilter{Category: "faq", Limit: 20, Offset: 40})
	require.NoError(t, err)
	assert.Empty(t, entries)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	id := uuid.NewString()
	mock.ExpectQuery("INSERT INTO knowledge_entries").
		WithArgs("faq", "Do you do SEO?", "seo,search", "Yes.", 3, true).
		WillReturnRows(pgxmock.NewRows(entryRowColumns).
			AddRow(id, "faq", "Do you do SEO?", "seo,search", "Yes.", 3, true, now, now))

	store := NewPostgresStore(mock)
	created, err := store.Create(context.Background(), &Entry{Category: "faq", Question: "Do you do SEO?", Keywords: "seo,search", Answer: "Yes.", Priority: 3})
	require.NoError(t, err)
	assert.Equal(t, id, created.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreCreateRejectsInvalid(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresStore(mock)
	_, err = store.Create(context.Background(), &Entry{Question: "q"})
	assert.ErrorIs(t, err, ErrInvalidEntry)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreUpdateNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.NewString()
	mock.ExpectQuery("UPDATE knowledge_entries").
		WithArgs(id, "", "q", "", "a", 0, pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	store := NewPostgresStore(mock)
	_, err = store.Update(context.Background(), &Entry{ID: id, Question: "q", Answer: "a"})
	assert.ErrorIs(t, err, ErrEntryNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.NewString()
	mock.ExpectExec("DELETE FROM knowledge_entries").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	store := NewPostgresStore(mock)
	assert.ErrorIs(t, store.Delete(context.Background(), id), ErrEntryNotFound)
	assert.ErrorIs(t, store.Delete(context.Background(), "not-a-uuid"), ErrEntryNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreBotConfig(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT settings FROM chatbot_config").
		WillReturnRows(pgxmock.NewRows([]string{"settings"}).AddRow([]byte(`{"bot_name":"Ava","custom_prompt":"Be brief."}`)))
	mock.ExpectQuery("SELECT settings FROM chatbot_config").
		WillReturnError(pgx.ErrNoRows)

	store := NewPostgresStore(mock)
	cfg, err := store.BotConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ava", cfg.BotName)
	assert.Equal(t, "Be brief.", cfg.CustomPrompt)
	assert.True(t, cfg.AutoCollectLead)

	cfg, err = store.BotConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultBotConfig(), cfg)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreSaveBotConfig(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO chatbot_config").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewPostgresStore(mock)
	require.NoError(t, store.SaveBotConfig(context.Background(), BotConfig{BotName: "Ava"}))
	require.NoError(t, mock.ExpectationsWereMet())
}
