package history

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRecordAssignsIDAndTimestamp(t *testing.T) {
	s := NewStore(10)
	e := &Entry{Method: "GET", Path: "/pets", Status: 200, Matched: true}
	s.Record(e)

	require.Equal(t, 1, s.Len())
	got := s.Last()
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.Timestamp.IsZero())
}

func TestStoreLimitDropsOldest(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 5; i++ {
		s.Record(&Entry{Method: "GET", Path: fmt.Sprintf("/p%d", i)})
	}

	entries := s.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "/p2", entries[0].Path)
	assert.Equal(t, "/p4", entries[2].Path)
}

func TestStoreCallCount(t *testing.T) {
	s := NewStore(0)
	s.Record(&Entry{Method: "GET", Path: "/pets"})
	s.Record(&Entry{Method: "get", Path: "/pets"})
	s.Record(&Entry{Method: "POST", Path: "/pets"})
	s.Record(&Entry{Method: "GET", Path: "/pets/1"})

	assert.Equal(t, 2, s.CallCount("GET", "/pets"))
	assert.Equal(t, 1, s.CallCount("post", "/pets"))
	assert.Equal(t, 0, s.CallCount("GET", "/owners"))
}

func TestStoreClear(t *testing.T) {
	s := NewStore(0)
	s.Record(&Entry{Method: "GET", Path: "/pets"})
	s.Clear()

	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.Last())
}
