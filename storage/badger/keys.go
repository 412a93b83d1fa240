package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/passage/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix  = "chkrec"
	chunkContentPrefix = "chkcnt"
	chunkIDSeq         = "chkseq"
)

// makeChunkRecordKey generates a key for a chunk record by ID.
func makeChunkRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// chunkRecordScanPrefix matches every chunk record key.
func chunkRecordScanPrefix() []byte {
	return []byte(chunkRecordPrefix + ":")
}

// makeContentKey generates a composite key for the content index.
// Format: prefix:contentHash:id
func makeContentKey(content string, id core.ID) []byte {
	buf := makePartialContentKey(content)
	return binary.BigEndian.AppendUint64(buf, uint64(id))
}

// makePartialContentKey generates the prefix shared by every record whose
// content hashes to the same value.
// Format: prefix:contentHash
func makePartialContentKey(content string) []byte {
	prefix := chunkContentPrefix + ":"
	buf := make([]byte, len(prefix)+8, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(content)))
	return buf
}
