package cache

import (
	"testing"

	"github.com/AnyUserName/imagepipe/internal/bufhash"
	"github.com/AnyUserName/imagepipe/internal/floatbuf"
)

func digest(b byte) bufhash.Digest {
	var d bufhash.Digest
	d[0] = b
	return d
}

func TestGetPutRoundTrip(t *testing.T) {
	c := New(1 << 20)
	buf := floatbuf.New(4, 4, 3, false)
	key := digest(1)

	c.Put(key, buf, BufferWeight(buf))
	got, ok := c.Get(key)
	if !ok || got != buf {
		t.Fatalf("expected cache hit returning the same buffer, got %v %v", got, ok)
	}
}

func TestEvictsUnderByteBudget(t *testing.T) {
	buf := floatbuf.New(100, 100, 3, false)
	weight := BufferWeight(buf)
	c := New(weight + weight/2) // room for 1.5 entries

	c.Put(digest(1), buf, weight)
	c.Put(digest(2), buf, weight)

	if _, ok := c.Get(digest(1)); ok {
		t.Fatal("oldest entry should have been evicted once budget was exceeded")
	}
	if _, ok := c.Get(digest(2)); !ok {
		t.Fatal("most recently put entry should still be cached")
	}
}

func TestMissOnUnknownKey(t *testing.T) {
	c := New(1 << 20)
	if _, ok := c.Get(digest(9)); ok {
		t.Fatal("expected miss on unknown key")
	}
}
