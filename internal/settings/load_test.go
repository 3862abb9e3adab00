package settings_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPowerDNS-Admin/plugin-settings/internal/db/controller/setting"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/db/models"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/settings"
	"github.com/GoPowerDNS-Admin/plugin-settings/internal/settings/cache"
)

// slowStore holds global values in memory. Its first GetGlobal reads the
// value, signals entered and returns only once release is closed or its
// context is done.
type slowStore struct {
	mu     sync.Mutex
	values map[string]string
	calls  int

	entered chan struct{}
	release chan struct{}
}

func newSlowStore(values map[string]string) *slowStore {
	return &slowStore{
		values:  values,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (s *slowStore) PluginConfig(_ context.Context, key string) (*models.PluginConfig, error) {
	return &models.PluginConfig{ID: 1, Key: key}, nil
}

func (s *slowStore) GetGlobal(ctx context.Context, _, key string) (string, error) {
	s.mu.Lock()
	s.calls++
	first := s.calls == 1
	value, ok := s.values[key]
	s.mu.Unlock()

	if first {
		close(s.entered)

		select {
		case <-s.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if !ok {
		return "", setting.ErrSettingNotFound
	}

	return value, nil
}

func (s *slowStore) ListGlobal(_ context.Context, _ string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}

	return out, nil
}

func (s *slowStore) SetGlobal(_ context.Context, _ uint64, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value

	return nil
}

func (s *slowStore) GetUser(_ context.Context, _ string, _ uint64, _ string) (string, error) {
	return "", setting.ErrSettingNotFound
}

func (s *slowStore) SetUser(_ context.Context, _, _ uint64, _, _ string) error {
	return nil
}

func TestFacet_ReadAfterWriteDoesNotJoinOlderLoad(t *testing.T) {
	ctx := context.Background()
	store := newSlowStore(map[string]string{"channel": "#one"})
	c := cache.New(time.Minute, 0)

	f, err := settings.New(pluginKey, globalDefs, userDefs, store, settings.WithCache(c))
	require.NoError(t, err)

	unblock := sync.OnceFunc(func() { close(store.release) })
	t.Cleanup(unblock)

	early := make(chan string, 1)

	go func() {
		v, err := f.GetSetting(ctx, "channel", settings.UseCache())
		assert.NoError(t, err)
		early <- v
	}()

	<-store.entered

	require.NoError(t, f.SetSetting(ctx, "channel", "#two"))

	late := make(chan string, 1)

	go func() {
		v, err := f.GetSetting(ctx, "channel", settings.UseCache())
		assert.NoError(t, err)
		late <- v
	}()

	var got string

	select {
	case got = <-late:
	case <-time.After(time.Second):
		unblock()

		got = <-late
	}

	assert.Equal(t, "#two", got, "a read started after the write returns the written value")

	unblock()
	assert.Equal(t, "#one", <-early, "the read started before the write may see the old value")

	cached, ok := c.Read(cache.GlobalKey(pluginKey, "channel"))
	require.True(t, ok)
	assert.Equal(t, "#two", cached)
}

func TestFacet_SharedLoadSurvivesCallerCancellation(t *testing.T) {
	store := newSlowStore(map[string]string{"channel": "#one"})
	c := cache.New(time.Minute, 0)

	f, err := settings.New(pluginKey, globalDefs, userDefs, store, settings.WithCache(c))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())

	type result struct {
		value string
		err   error
	}

	first := make(chan result, 1)

	go func() {
		v, err := f.GetSetting(ctx, "channel", settings.UseCache())
		first <- result{value: v, err: err}
	}()

	<-store.entered
	cancel()
	close(store.release)

	res := <-first
	require.NoError(t, res.err)
	assert.Equal(t, "#one", res.value)

	cached, ok := c.Read(cache.GlobalKey(pluginKey, "channel"))
	require.True(t, ok)
	assert.Equal(t, "#one", cached)
}
