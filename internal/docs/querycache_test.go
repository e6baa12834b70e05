package docs

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func batch(queryID string, urls ...string) []SearchResult {
	results := make([]SearchResult, 0, len(urls))
	for i, u := range urls {
		results = append(results, SearchResult{RankOrder: i + 1, URL: u, Title: u, QueryID: queryID})
	}
	return results
}

func TestQueryCacheLookupMiss(t *testing.T) {
	cache := NewQueryCache(DefaultQueryCacheCapacity)
	_, ok := cache.Lookup("https://docs.aws.amazon.com/a.html")
	require.False(t, ok)
	require.Equal(t, 0, cache.Len())
}

func TestQueryCacheRecencyWins(t *testing.T) {
	cache := NewQueryCache(DefaultQueryCacheCapacity)
	cache.Insert(batch("q1", "a", "b"))
	cache.Insert(batch("q2", "a", "c"))
	cache.Insert(batch("q3", "d"))

	id, ok := cache.Lookup("a")
	require.True(t, ok)
	require.Equal(t, "q2", id)

	id, ok = cache.Lookup("b")
	require.True(t, ok)
	require.Equal(t, "q1", id)

	id, ok = cache.Lookup("d")
	require.True(t, ok)
	require.Equal(t, "q3", id)
}

func TestQueryCacheEvictsOldest(t *testing.T) {
	cache := NewQueryCache(DefaultQueryCacheCapacity)
	for i := 1; i <= 5; i++ {
		cache.Insert(batch(fmt.Sprintf("q%d", i), fmt.Sprintf("u%d", i)))
	}

	require.Equal(t, 3, cache.Len())
	for _, evicted := range []string{"u1", "u2"} {
		_, ok := cache.Lookup(evicted)
		require.False(t, ok, evicted)
	}
	for i := 3; i <= 5; i++ {
		id, ok := cache.Lookup(fmt.Sprintf("u%d", i))
		require.True(t, ok)
		require.Equal(t, fmt.Sprintf("q%d", i), id)
	}
}

func TestQueryCacheExactMatch(t *testing.T) {
	cache := NewQueryCache(DefaultQueryCacheCapacity)
	cache.Insert(batch("q1", "https://docs.aws.amazon.com/Lambda.html"))

	_, ok := cache.Lookup("https://docs.aws.amazon.com/lambda.html")
	require.False(t, ok)
	_, ok = cache.Lookup("https://docs.aws.amazon.com/Lambda.html/")
	require.False(t, ok)
}

func TestQueryCacheFirstMatchWithinBatch(t *testing.T) {
	cache := NewQueryCache(DefaultQueryCacheCapacity)
	results := batch("q1", "a")
	results = append(results, SearchResult{RankOrder: 2, URL: "a", QueryID: "other"})
	cache.Insert(results)

	id, ok := cache.Lookup("a")
	require.True(t, ok)
	require.Equal(t, "q1", id)
}

func TestQueryCacheCopiesBatch(t *testing.T) {
	cache := NewQueryCache(DefaultQueryCacheCapacity)
	results := batch("q1", "a")
	cache.Insert(results)
	results[0].URL = "mutated"

	_, ok := cache.Lookup("a")
	require.True(t, ok)
}

func TestQueryCacheEmptyBatchTakesSlot(t *testing.T) {
	cache := NewQueryCache(2)
	cache.Insert(batch("q1", "a"))
	cache.Insert(nil)
	cache.Insert([]SearchResult{})

	require.Equal(t, 2, cache.Len())
	_, ok := cache.Lookup("a")
	require.False(t, ok)
}

func TestQueryCacheEncodesQueryID(t *testing.T) {
	cache := NewQueryCache(DefaultQueryCacheCapacity)
	cache.Insert(batch("id with/slash&amp=1", "a"))

	id, ok := cache.Lookup("a")
	require.True(t, ok)
	require.Equal(t, "id%20with/slash%26amp%3D1", id)
}

func TestNewQueryCacheDefaultCapacity(t *testing.T) {
	cache := NewQueryCache(0)
	for i := 0; i < 10; i++ {
		cache.Insert(batch("q", "a"))
	}
	require.Equal(t, DefaultQueryCacheCapacity, cache.Len())
}

func TestQueryCacheConcurrentAccess(t *testing.T) {
	cache := NewQueryCache(DefaultQueryCacheCapacity)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			cache.Insert(batch(fmt.Sprintf("q%d", i), "shared", fmt.Sprintf("u%d", i)))
		}(i)
		go func() {
			defer wg.Done()
			cache.Lookup("shared")
		}()
	}
	wg.Wait()

	require.Equal(t, DefaultQueryCacheCapacity, cache.Len())
	_, ok := cache.Lookup("shared")
	require.True(t, ok)
}

func TestPercentEncode(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"abcXYZ019-._~/":   "abcXYZ019-._~/",
		"a b":              "a%20b",
		"a+b?c#d":          "a%2Bb%3Fc%23d",
		"é":                "%C3%A9",
		"62d0f3c9:1a2b%3d": "62d0f3c9%3A1a2b%253d",
	}
	for in, want := range cases {
		require.Equal(t, want, PercentEncode(in), in)
	}
}
