package postgres

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestULIDGeneratorIsMonotonic(t *testing.T) {
	g := NewULIDGenerator()
	fixed := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	prev := g.Generate()
	for i := 0; i < 100; i++ {
		next := g.Generate()
		if next <= prev {
			t.Fatalf("ids not increasing: %s then %s", prev, next)
		}
		if _, err := ulid.ParseStrict(next); err != nil {
			t.Fatalf("invalid ulid %q: %v", next, err)
		}
		prev = next
	}
}
