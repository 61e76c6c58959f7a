// Package boltstore implements the frequency store in an embedded bbolt file.
//
// Two buckets hold the data: counts maps phrase to its big-endian count, and
// ranked holds one empty-valued key per phrase made of the 8-byte big-endian
// count followed by the phrase bytes. bbolt keeps keys in byte order, so a
// cursor over ranked walks phrases in ascending count order with ties broken
// lexicographically. Rank and range queries walk that cursor and are O(n).
package boltstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store"
)

var (
	bucketCounts = []byte("counts")
	bucketRanked = []byte("ranked")
)

// Options configures a Store.
type Options struct {
	DefaultScore int64
}

// Store is a bbolt-backed frequency store.
type Store struct {
	db   *bbolt.DB
	opts Options
}

// Open opens (or creates) the database file at path.
func Open(path string, opts Options) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketCounts, bucketRanked} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("creating bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, opts: opts}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Add(_ context.Context, phrase string, increment int64) error {
	if err := store.ValidateIncrement(increment); err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		counts := tx.Bucket(bucketCounts)
		ranked := tx.Bucket(bucketRanked)

		var count uint64
		if v := counts.Get([]byte(phrase)); v != nil {
			count = binary.BigEndian.Uint64(v)
			if err := ranked.Delete(rankKey(count, phrase)); err != nil {
				return fmt.Errorf("unlinking %q: %w", phrase, err)
			}
		}
		count += uint64(increment)

		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], count)
		if err := counts.Put([]byte(phrase), buf[:]); err != nil {
			return fmt.Errorf("writing count of %q: %w", phrase, err)
		}
		if err := ranked.Put(rankKey(count, phrase), []byte{}); err != nil {
			return fmt.Errorf("linking %q: %w", phrase, err)
		}
		return nil
	})
}

func (s *Store) Get(_ context.Context, phrase string) (int64, error) {
	count := s.opts.DefaultScore
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketCounts).Get([]byte(phrase)); v != nil {
			count = int64(binary.BigEndian.Uint64(v))
		}
		return nil
	})
	return count, err
}

func (s *Store) IndexOf(_ context.Context, phrase string) (int64, error) {
	rank := int64(-1)
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketCounts).Get([]byte(phrase))
		if v == nil {
			return nil
		}
		target := rankKey(binary.BigEndian.Uint64(v), phrase)
		var i int64
		c := tx.Bucket(bucketRanked).Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			if bytes.Equal(k, target) {
				rank = i
				return nil
			}
			i++
		}
		return fmt.Errorf("phrase %q missing from rank bucket", phrase)
	})
	return rank, err
}

func (s *Store) Length(_ context.Context) (int64, error) {
	var n int64
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = int64(tx.Bucket(bucketCounts).Stats().KeyN)
		return nil
	})
	return n, err
}

func (s *Store) Slice(_ context.Context, start, end int64) ([]string, error) {
	phrases := []string{}
	err := s.db.View(func(tx *bbolt.Tx) error {
		n := int64(tx.Bucket(bucketCounts).Stats().KeyN)
		lo, hi := store.Bounds(start, end, n)
		if lo == hi {
			return nil
		}
		var i int64
		c := tx.Bucket(bucketRanked).Cursor()
		for k, _ := c.First(); k != nil && i < hi; k, _ = c.Next() {
			if i >= lo {
				phrases = append(phrases, string(k[8:]))
			}
			i++
		}
		return nil
	})
	return phrases, err
}

// Clean removes every phrase whose count is at most 1. They sit at the head
// of the rank bucket.
func (s *Store) Clean(_ context.Context) (int64, error) {
	var removed int64
	err := s.db.Update(func(tx *bbolt.Tx) error {
		counts := tx.Bucket(bucketCounts)
		ranked := tx.Bucket(bucketRanked)

		var stale [][]byte
		c := ranked.Cursor()
		for k, _ := c.First(); k != nil && binary.BigEndian.Uint64(k[:8]) <= 1; k, _ = c.Next() {
			stale = append(stale, append([]byte(nil), k...))
		}
		for _, k := range stale {
			if err := ranked.Delete(k); err != nil {
				return err
			}
			if err := counts.Delete(k[8:]); err != nil {
				return err
			}
		}
		removed = int64(len(stale))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("removing rare phrases: %w", err)
	}
	return removed, nil
}

func (s *Store) Reset(_ context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketCounts, bucketRanked} {
			if err := tx.DeleteBucket(b); err != nil {
				return fmt.Errorf("dropping bucket %s: %w", b, err)
			}
			if _, err := tx.CreateBucket(b); err != nil {
				return fmt.Errorf("recreating bucket %s: %w", b, err)
			}
		}
		return nil
	})
}

func rankKey(count uint64, phrase string) []byte {
	key := make([]byte, 8+len(phrase))
	binary.BigEndian.PutUint64(key, count)
	copy(key[8:], phrase)
	return key
}
