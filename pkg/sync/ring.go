package sync

import (
	"encoding/binary"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring is a consistent hash ring over a fixed set of entries
type ring[T any] struct {
	hashRing *treemap.Map

	// minEntry is the entry keys wrap around to when they hash past the last
	// point. treemap.Map.Min() is O(log n), so it's resolved once.
	minEntry T
}

// newRing returns a consistent hash ring placing each entry at
// replicationFactor points
func newRing[T any](entries map[string]T, replicationFactor uint) *ring[T] {
	hashRing := treemap.NewWith(utils.Int64Comparator)
	for name, entry := range entries {
		nameHash, _ := murmur3.Sum128([]byte(name))
		nameHashBytes := make([]byte, 8)
		binary.LittleEndian.PutUint64(nameHashBytes, nameHash)

		for i := uint(0); i < replicationFactor; i++ {
			indexBytes := make([]byte, 4)
			binary.LittleEndian.PutUint32(indexBytes, uint32(i))

			hasher := murmur3.New128()
			hasher.Write(nameHashBytes)
			hasher.Write(indexBytes)
			point, _ := hasher.Sum128()
			hashRing.Put(int64(point), entry)
		}
	}

	r := &ring[T]{hashRing: hashRing}
	if _, minEntry := hashRing.Min(); minEntry != nil {
		r.minEntry = minEntry.(T)
	}
	return r
}

// shard returns the entry owning key
func (r *ring[T]) shard(key []byte) T {
	raw, _ := murmur3.Sum128(key)
	_, entry := r.hashRing.Ceiling(int64(raw))
	if entry != nil {
		return entry.(T)
	}
	return r.minEntry
}
