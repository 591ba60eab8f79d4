// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package cache keeps mined clue sets of recently seen notes. Hospital exports
// often repeat the same admission note across rows.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"c19-miner/internal/miner"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache stores serialized clue sets keyed by a digest of the note text.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a cache. A zero ttl keeps entries until Clear.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	defaultTTL := ttl
	cleanup := ttl
	if ttl <= 0 {
		defaultTTL = gocache.NoExpiration
		cleanup = 0
	}
	return &MemoryCache{cache: gocache.New(defaultTTL, cleanup)}
}

// Key returns the digest used for text.
func Key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Get returns a fresh copy of the clue set mined for text. Callers may modify it.
func (c *MemoryCache) Get(text string) (*miner.ClueSet, bool) {
	val, found := c.cache.Get(Key(text))
	if !found {
		return nil, false
	}
	var clues miner.ClueSet
	if err := json.Unmarshal(val.([]byte), &clues); err != nil {
		c.cache.Delete(Key(text))
		return nil, false
	}
	return &clues, true
}

// Set stores clues for text. Record attributes are not cached.
func (c *MemoryCache) Set(text string, clues *miner.ClueSet) error {
	stripped := miner.NewClueSet(clues.Text())
	for _, name := range clues.Categories() {
		result, _ := clues.Category(name)
		stripped.Set(result)
	}
	data, err := json.Marshal(stripped)
	if err != nil {
		return err
	}
	c.cache.Set(Key(text), data, gocache.DefaultExpiration)
	return nil
}

// Len returns the number of cached notes, expired ones included until cleanup.
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}

// Clear removes all values from the cache
func (c *MemoryCache) Clear() {
	c.cache.Flush()
}
