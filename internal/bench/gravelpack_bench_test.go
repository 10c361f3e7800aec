package bench

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/MikhailWahib/gravelpack"
)

var benchCfg = &gravelpack.Config{
	SnapshotThreshold: 1 << 30,
	NoSync:            true,
}

func setupBenchDB(b *testing.B, cfg *gravelpack.Config) (*gravelpack.DB, func()) {
	tmpDir := filepath.Join(os.TempDir(), fmt.Sprintf("gravelpack_bench_%d", rand.Int63()))
	c := *cfg
	db, err := gravelpack.Open(tmpDir, &c)
	if err != nil {
		b.Fatalf("Failed to open database: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return db, cleanup
}

// BenchmarkUpsertAscending appends to one array, the common case of
// growing ids.
func BenchmarkUpsertAscending(b *testing.B) {
	db, cleanup := setupBenchDB(b, benchCfg)
	defer cleanup()

	key := []byte("msgpack:key")
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := db.UpsertInt64(key, int64(i)); err != nil {
			b.Fatalf("Upsert failed: %v", err)
		}
	}
}

func BenchmarkUpsertRandom(b *testing.B) {
	db, cleanup := setupBenchDB(b, benchCfg)
	defer cleanup()

	key := []byte("msgpack:key")
	values := make([]int64, b.N)
	for i := range values {
		values[i] = rand.Int63()
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := db.UpsertInt64(key, values[i]); err != nil {
			b.Fatalf("Upsert failed: %v", err)
		}
	}
}

func BenchmarkContains(b *testing.B) {
	db, cleanup := setupBenchDB(b, benchCfg)
	defer cleanup()

	key := []byte("msgpack:key")
	const n = 10000
	batch := make([]int64, n)
	for i := range batch {
		batch[i] = int64(i * 2)
	}
	if _, err := db.UpsertInt64(key, batch...); err != nil {
		b.Fatalf("Upsert failed: %v", err)
	}
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := db.ContainsInt64(key, int64(i%(2*n))); err != nil {
			b.Fatalf("Contains failed: %v", err)
		}
	}
}

// BenchmarkSet writes one plain key per element, the baseline upserts are
// compared against.
func BenchmarkSet(b *testing.B) {
	db, cleanup := setupBenchDB(b, benchCfg)
	defer cleanup()

	value := []byte("0")
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		key := []byte("set:key:" + strconv.Itoa(i))
		if err := db.Set(key, value); err != nil {
			b.Fatalf("Set failed: %v", err)
		}
	}
}
