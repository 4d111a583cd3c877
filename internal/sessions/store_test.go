package sessions

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/srm-sim/internal/engine"
)

type gauge struct{ n int }

func (g *gauge) SetActiveSessions(n int) { g.n = n }

func newStore(limits Limits) *Store {
	return NewStore(engine.DefaultConfig(), limits, engine.WithSeed(7))
}

func TestStore_CreateGetDelete(t *testing.T) {
	st := newStore(Limits{})
	g := &gauge{}
	st.SetObserver(g)

	var evicted []string
	st.OnEvict(func(id string) { evicted = append(evicted, id) })

	h, err := st.Create()
	require.NoError(t, err)
	assert.Equal(t, 1, g.n)

	got, err := st.Get(h.ID())
	require.NoError(t, err)
	assert.Same(t, h, got)

	require.NoError(t, st.Delete(h.ID()))
	assert.Equal(t, 0, g.n)
	assert.Equal(t, []string{h.ID()}, evicted)

	_, err = st.Get(h.ID())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, st.Delete(h.ID()), ErrNotFound)
}

func TestStore_ExtraOptionsWin(t *testing.T) {
	st := newStore(Limits{})

	h, err := st.Create(engine.WithSeed(99))
	require.NoError(t, err)

	var seed int64
	require.NoError(t, h.Do(func(s *engine.Session) error {
		seed = s.Seed()
		return nil
	}))
	assert.Equal(t, int64(99), seed)
}

func TestStore_Reap(t *testing.T) {
	st := newStore(Limits{})
	a, err := st.Create()
	require.NoError(t, err)
	_, err = st.Create()
	require.NoError(t, err)

	assert.Empty(t, st.Reap(time.Now(), time.Hour))
	assert.Equal(t, 2, st.Len())

	evicted := st.Reap(time.Now().Add(2*time.Hour), time.Hour)
	assert.Len(t, evicted, 2)
	assert.Contains(t, evicted, a.ID())
	assert.Equal(t, 0, st.Len())
}

func TestHosted_RateLimit(t *testing.T) {
	st := newStore(Limits{RatePerSec: 0.001, Burst: 2})
	h, err := st.Create()
	require.NoError(t, err)

	assert.True(t, h.Allow())
	assert.True(t, h.Allow())
	assert.False(t, h.Allow())
}

func TestHosted_DoSerialises(t *testing.T) {
	st := newStore(Limits{})
	h, err := st.Create()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h.Do(func(s *engine.Session) error {
				_, err := s.AdvanceTurn()
				return err
			})
		}()
	}
	wg.Wait()

	var day int
	require.NoError(t, h.Do(func(s *engine.Session) error {
		day = s.Day()
		return nil
	}))
	assert.Equal(t, 11, day)
}
