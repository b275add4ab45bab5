package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEntity struct {
	id   int
	name string
}

func (e *testEntity) EntityID() int      { return e.id }
func (e *testEntity) EntityName() string { return e.name }

func TestPutAndLookup(t *testing.T) {
	store := New[*testEntity]()
	entity := &testEntity{id: 603, name: "The Matrix"}
	store.Put(entity)

	byID, ok := store.ByID(603)
	require.True(t, ok)
	assert.Same(t, entity, byID)

	byName, ok := store.ByName("the matrix")
	require.True(t, ok)
	assert.Same(t, entity, byName)

	byName, ok = store.ByName("The Matrix")
	require.True(t, ok)
	assert.Same(t, entity, byName, "name lookups are case-insensitive")

	_, ok = store.ByID(999)
	assert.False(t, ok)
	_, ok = store.ByName("missing")
	assert.False(t, ok)
}

func TestLookupDispatchesOnKeyShape(t *testing.T) {
	store := New[*testEntity]()
	store.Put(&testEntity{id: 603, name: "The Matrix"})

	byID, ok := store.Lookup("603")
	require.True(t, ok, "numeric keys go through the id index")
	assert.Equal(t, 603, byID.EntityID())

	byName, ok := store.Lookup("the matrix")
	require.True(t, ok, "non-numeric keys go through the name index")
	assert.Equal(t, 603, byName.EntityID())

	_, ok = store.Lookup("42")
	assert.False(t, ok, "numeric keys never fall back to the name index")
}

func TestExpiry(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	store := New[*testEntity](WithMaxAge(time.Hour), WithClock(clock))
	store.Put(&testEntity{id: 1, name: "fresh"})

	_, ok := store.ByID(1)
	require.True(t, ok)

	now = now.Add(59 * time.Minute)
	_, ok = store.ByID(1)
	require.True(t, ok, "entry below max age is fresh")

	now = now.Add(time.Minute)
	_, ok = store.ByID(1)
	assert.False(t, ok, "entry at max age reads as absent")
	_, ok = store.ByName("fresh")
	assert.False(t, ok)

	// Stale entries stay in place, only reads treat them as absent.
	assert.Equal(t, 1, store.Len())
}

func TestPutReplacesEntry(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }

	store := New[*testEntity](WithMaxAge(time.Hour), WithClock(clock))
	store.Put(&testEntity{id: 1, name: "old name"})

	now = now.Add(2 * time.Hour)
	replacement := &testEntity{id: 1, name: "new name"}
	store.Put(replacement)

	got, ok := store.ByID(1)
	require.True(t, ok, "re-storing restamps the entry")
	assert.Same(t, replacement, got)

	got, ok = store.ByName("new name")
	require.True(t, ok)
	assert.Same(t, replacement, got)

	// The old name mapping is never cleaned up; it keeps aliasing the id.
	got, ok = store.ByName("old name")
	require.True(t, ok)
	assert.Same(t, replacement, got)
}

func TestEmptyNameSkipsNameIndex(t *testing.T) {
	store := New[*testEntity]()
	store.Put(&testEntity{id: 5})

	_, ok := store.ByID(5)
	assert.True(t, ok)
	_, ok = store.ByName("")
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	store := New[*testEntity]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Put(&testEntity{id: i, name: fmt.Sprintf("entity %d", i)})
		}()
		go func() {
			defer wg.Done()
			store.ByID(i)
			store.ByName(fmt.Sprintf("entity %d", i))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
}
