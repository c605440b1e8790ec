package badger

import "encoding/binary"

// Key prefixes for different data types
const (
	chunkRecordPrefix = "chkrec"
	chunkRecordIDSeq  = "chkrecseq"
)

// makeChunkKey generates a key for a chunk by insertion sequence.
// The sequence is written in BigEndian order so lexicographic key order
// matches insertion order.
func makeChunkKey(seq uint64) []byte {
	prefix := chunkRecordPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// chunkKeyPrefix returns the iteration prefix covering all chunk records.
func chunkKeyPrefix() []byte {
	return []byte(chunkRecordPrefix + ":")
}
