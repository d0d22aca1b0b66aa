package cache

import (
	"fmt"
	"testing"

	igniteerrors "github.com/ignitedb/ignite/pkg/errors"
)

func TestSetGetDel(t *testing.T) {
	c := New(2)

	if _, err := c.Get("a"); !igniteerrors.IsNotFound(err) {
		t.Fatalf("Get(a) error = %v, want NotFound", err)
	}

	c.Set("a", []byte("1"))
	v, err := c.Get("a")
	if err != nil {
		t.Fatalf("Get(a) unexpected error: %v", err)
	}
	if string(v) != "1" {
		t.Fatalf("Get(a) = %q, want 1", v)
	}

	if err := c.Del("a"); err != nil {
		t.Fatalf("Del(a) unexpected error: %v", err)
	}
	if _, err := c.Get("a"); !igniteerrors.IsNotFound(err) {
		t.Fatalf("Get(a) after Del error = %v, want NotFound", err)
	}
	if err := c.Del("a"); !igniteerrors.IsNotFound(err) {
		t.Fatalf("Del(a) second call error = %v, want NotFound", err)
	}
}

func TestEvictionIsLRU(t *testing.T) {
	c := New(2)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	// touch "a" so "b" becomes least recently used.
	if _, err := c.Get("a"); err != nil {
		t.Fatalf("Get(a) unexpected error: %v", err)
	}

	c.Set("c", []byte("3"))

	if _, err := c.Get("b"); !igniteerrors.IsNotFound(err) {
		t.Fatalf("Get(b) error = %v, want NotFound (b should have been evicted)", err)
	}
	if v, err := c.Get("a"); err != nil || string(v) != "1" {
		t.Fatalf("Get(a) = (%q, %v), want (1, nil)", v, err)
	}
	if v, err := c.Get("c"); err != nil || string(v) != "3" {
		t.Fatalf("Get(c) = (%q, %v), want (3, nil)", v, err)
	}
	if c.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", c.Size())
	}
}

func TestSetExistingKeyUpdatesValueAndRecency(t *testing.T) {
	c := New(2)
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))

	c.Set("a", []byte("updated"))
	c.Set("c", []byte("3"))

	if _, err := c.Get("b"); !igniteerrors.IsNotFound(err) {
		t.Fatalf("Get(b) error = %v, want NotFound", err)
	}
	if v, err := c.Get("a"); err != nil || string(v) != "updated" {
		t.Fatalf("Get(a) = (%q, %v), want (updated, nil)", v, err)
	}
}

func TestClear(t *testing.T) {
	c := New(3)
	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), []byte{byte(i)})
	}
	if c.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", c.Size())
	}

	c.Clear()
	if c.Size() != 0 {
		t.Fatalf("Size() after Clear = %d, want 0", c.Size())
	}
	for i := 0; i < 3; i++ {
		if _, err := c.Get(fmt.Sprintf("k%d", i)); !igniteerrors.IsNotFound(err) {
			t.Fatalf("Get(k%d) after Clear error = %v, want NotFound", i, err)
		}
	}

	// Cache must still be fully usable after Clear, reusing the same arena.
	c.Set("fresh", []byte("v"))
	if v, err := c.Get("fresh"); err != nil || string(v) != "v" {
		t.Fatalf("Get(fresh) = (%q, %v), want (v, nil)", v, err)
	}
}

func TestRepeatedSetEvictCycles(t *testing.T) {
	c := New(4)
	const n = 100
	for i := 0; i < n; i++ {
		c.Set(fmt.Sprintf("k%d", i), []byte{byte(i)})
	}
	if c.Size() != 4 {
		t.Fatalf("Size() = %d, want 4", c.Size())
	}
	for i := n - 4; i < n; i++ {
		key := fmt.Sprintf("k%d", i)
		if _, err := c.Get(key); err != nil {
			t.Fatalf("Get(%s) unexpected error: %v", key, err)
		}
	}
}
