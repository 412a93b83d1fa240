// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/passage/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	if len(data) == 0 {
		return 0, ErrTruncatedData
	}
	id, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return core.ID(id), nil
}

// MarshalRecord serializes a Record to bytes.
//
// Layout: id, essay title, url, date, authors, content, content tokens,
// embedding length followed by each float32, insertion time in Unix nanoseconds.
func MarshalRecord(record *core.Record) []byte {
	inserted := unixNano(record.InsertedAt)
	buf := make([]byte, recordSize(record, inserted))

	n := varint.Uint64.Marshal(uint64(record.Id), buf)
	for _, s := range recordStrings(record) {
		n += ord.String.Marshal(s, buf[n:])
	}
	n += varint.Int.Marshal(record.ContentTokens, buf[n:])
	n += varint.Int.Marshal(len(record.Embedding), buf[n:])
	for _, f := range record.Embedding {
		n += raw.Float32.Marshal(f, buf[n:])
	}
	varint.Int64.Marshal(inserted, buf[n:])
	return buf
}

// UnmarshalRecord deserializes a Record from bytes.
func UnmarshalRecord(data []byte) (*core.Record, error) {
	if len(data) == 0 {
		return nil, ErrTruncatedData
	}

	r := recordReader{data: data}
	record := &core.Record{}

	record.Id = core.ID(r.readUint64())
	record.EssayTitle = r.readString()
	record.EssayURL = r.readString()
	record.EssayDate = r.readString()
	record.EssayAuthors = r.readString()
	record.Content = r.readString()
	record.ContentTokens = r.readInt()

	length := r.readInt()
	if r.err == nil && (length < 0 || length > (len(r.data)-r.pos)/4) {
		r.err = ErrTruncatedData
	}
	if r.err == nil && length > 0 {
		record.Embedding = make([]float32, length)
		for i := range record.Embedding {
			record.Embedding[i] = r.readFloat32()
		}
	}

	inserted := r.readInt64()
	if r.err != nil {
		return nil, fmt.Errorf("%w: record: %w", ErrSerializationFailed, r.err)
	}
	if inserted != 0 {
		record.InsertedAt = time.Unix(0, inserted).UTC()
	}
	return record, nil
}

func recordStrings(record *core.Record) []string {
	return []string{record.EssayTitle, record.EssayURL, record.EssayDate, record.EssayAuthors, record.Content}
}

func recordSize(record *core.Record, inserted int64) int {
	size := varint.Uint64.Size(uint64(record.Id))
	for _, s := range recordStrings(record) {
		size += ord.String.Size(s)
	}
	size += varint.Int.Size(record.ContentTokens)
	size += varint.Int.Size(len(record.Embedding))
	for _, f := range record.Embedding {
		size += raw.Float32.Size(f)
	}
	return size + varint.Int64.Size(inserted)
}

// unixNano maps the zero time to 0 so it survives a round trip.
func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

// recordReader decodes fields in sequence, keeping the first error.
type recordReader struct {
	data []byte
	pos  int
	err  error
}

func (r *recordReader) advance(n int, err error) bool {
	if err != nil {
		r.err = err
		return false
	}
	r.pos += n
	return true
}

func (r *recordReader) readUint64() uint64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Uint64.Unmarshal(r.data[r.pos:])
	r.advance(n, err)
	return v
}

func (r *recordReader) readInt64() int64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(r.data[r.pos:])
	r.advance(n, err)
	return v
}

func (r *recordReader) readInt() int {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(r.data[r.pos:])
	r.advance(n, err)
	return v
}

func (r *recordReader) readString() string {
	if r.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.data[r.pos:])
	r.advance(n, err)
	return v
}

func (r *recordReader) readFloat32() float32 {
	if r.err != nil {
		return 0
	}
	v, n, err := raw.Float32.Unmarshal(r.data[r.pos:])
	r.advance(n, err)
	return v
}
