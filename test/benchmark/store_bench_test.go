package benchmark

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store/boltstore"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store/memory"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store/redisstore"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/config"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/redis"
)

type backendFactory func(b *testing.B) store.Store

func backends() map[string]backendFactory {
	return map[string]backendFactory{
		"memory": func(b *testing.B) store.Store {
			return memory.New()
		},
		"bolt": func(b *testing.B) store.Store {
			s, err := boltstore.Open(filepath.Join(b.TempDir(), "bench.db"), boltstore.Options{})
			if err != nil {
				b.Fatalf("opening bolt: %v", err)
			}
			b.Cleanup(func() { s.Close() })
			return s
		},
		"redis": func(b *testing.B) store.Store {
			mr := miniredis.RunT(b)
			client, err := pkgredis.NewClient(config.RedisConfig{Addr: mr.Addr(), PoolSize: 16})
			if err != nil {
				b.Fatalf("connecting to miniredis: %v", err)
			}
			b.Cleanup(func() { client.Close() })
			return redisstore.New(client, redisstore.Options{Key: "bench"})
		},
	}
}

func BenchmarkStoreAdd(b *testing.B) {
	ctx := context.Background()
	for name, open := range backends() {
		b.Run(name, func(b *testing.B) {
			s := open(b)
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := s.Add(ctx, fmt.Sprintf("phrase %d", i%1000), 1); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkStoreSlice(b *testing.B) {
	ctx := context.Background()
	for name, open := range backends() {
		b.Run(name, func(b *testing.B) {
			s := open(b)
			for i := 0; i < 1000; i++ {
				if err := s.Add(ctx, fmt.Sprintf("phrase %d", i), int64(i%37+1)); err != nil {
					b.Fatal(err)
				}
			}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := s.Slice(ctx, -10, store.ToEnd); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDictionaryParse(b *testing.B) {
	ctx := context.Background()
	text := sampleTexts["medium"]
	for name, open := range backends() {
		b.Run(name, func(b *testing.B) {
			d, err := dictionary.New(open(b))
			if err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			b.SetBytes(int64(len(text)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := d.Parse(ctx, text, 3); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
