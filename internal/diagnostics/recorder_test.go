package diagnostics

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zer0phucks/pubhub-connect/internal/models"
)

func TestRecordAndPlatform(t *testing.T) {
	r := NewRecorder(10)
	r.Record(models.PlatformTwitter, "authorization started for project %s", "p1")
	r.Record(models.PlatformTwitter, "token exchange failed: %v", "boom")
	r.Record(models.PlatformReddit, "disconnected")

	entries := r.Platform(models.PlatformTwitter)
	require.Len(t, entries, 2)
	assert.Equal(t, "authorization started for project p1", entries[0].Message)
	assert.Equal(t, "token exchange failed: boom", entries[1].Message)

	assert.Len(t, r.Platform(models.PlatformReddit), 1)
	assert.Empty(t, r.Platform(models.PlatformBlog))
}

func TestRingDropsOldest(t *testing.T) {
	r := NewRecorder(3)
	for i := 0; i < 5; i++ {
		r.Record(models.PlatformTwitter, "entry %d", i)
	}

	entries := r.Platform(models.PlatformTwitter)
	require.Len(t, entries, 3)
	assert.Equal(t, "entry 2", entries[0].Message)
	assert.Equal(t, "entry 4", entries[2].Message)
}

func TestCopyAllOrdered(t *testing.T) {
	r := NewRecorder(0)
	r.Record(models.PlatformTwitter, "first")
	r.Record(models.PlatformReddit, "second")
	r.Record(models.PlatformTwitter, "third")

	all := r.CopyAll()
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].Timestamp.Before(all[i-1].Timestamp))
	}
}

func TestRecorderConcurrentUse(t *testing.T) {
	r := NewRecorder(50)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				r.Record(models.PlatformTwitter, fmt.Sprintf("writer %d entry %d", n, j))
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, r.Platform(models.PlatformTwitter), 50)
}
