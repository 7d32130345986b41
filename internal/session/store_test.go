package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/agency-chat/internal/chatbot"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour), mr
}

func stores(t *testing.T) map[string]Store {
	redisStore, _ := newRedisStore(t)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  redisStore,
	}
}

func TestStore_AppendAndHistory(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, store.Append(ctx, "abc",
				chatbot.ChatMessage{Role: chatbot.RoleUser, Content: "hi", Timestamp: at},
				chatbot.ChatMessage{Role: chatbot.RoleBot, Content: "Hello! Name?", Timestamp: at, CollectInfo: chatbot.CollectName, Suggestions: []string{"Book a Call"}},
			))
			require.NoError(t, store.Append(ctx, "abc", chatbot.ChatMessage{Role: chatbot.RoleUser, Content: "Sam", Timestamp: at}))

			all, err := store.History(ctx, "abc", 0)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "hi", all[0].Content)
			assert.Equal(t, chatbot.CollectName, all[1].CollectInfo)
			assert.Equal(t, []string{"Book a Call"}, all[1].Suggestions)
			assert.True(t, at.Equal(all[2].Timestamp))

			last, err := store.History(ctx, "abc", 2)
			require.NoError(t, err)
			require.Len(t, last, 2)
			assert.Equal(t, "Hello! Name?", last[0].Content)

			empty, err := store.History(ctx, "unknown", 0)
			require.NoError(t, err)
			assert.Empty(t, empty)

			require.NoError(t, store.Append(ctx, "abc"))
		})
	}
}

func TestStore_TrimsToMaxMessages(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < MaxMessages+5; i++ {
				require.NoError(t, store.Append(ctx, "long", chatbot.ChatMessage{Role: chatbot.RoleUser, Content: fmt.Sprintf("m%d", i)}))
			}
			all, err := store.History(ctx, "long", 0)
			require.NoError(t, err)
			require.Len(t, all, MaxMessages)
			assert.Equal(t, "m5", all[0].Content)
		})
	}
}

func TestRedisStore_RefreshesTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	require.NoError(t, store.Append(context.Background(), "ttl", chatbot.ChatMessage{Role: chatbot.RoleUser, Content: "hi"}))
	assert.Equal(t, time.Hour, mr.TTL(transcriptKey("ttl")))

	mr.FastForward(2 * time.Hour)
	all, err := store.History(context.Background(), "ttl", 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRedisStore_CorruptEntry(t *testing.T) {
	store, mr := newRedisStore(t)
	_, err := mr.Lpush(transcriptKey("bad"), "{not json")
	require.NoError(t, err)

	_, err = store.History(context.Background(), "bad", 0)
	assert.Error(t, err)
}

func TestNewRedisStore_PanicsOnNilClient(t *testing.T) {
	assert.Panics(t, func() { NewRedisStore(nil, 0) })
}
