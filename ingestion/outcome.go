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

package ingestion

import (
	"fmt"

	"github.com/poiesic/passage/core"
)

// Status is the resolution of a single chunk.
type Status int

const (
	// StatusSkipped means a record with identical content already existed.
	StatusSkipped Status = iota
	// StatusStored means the chunk was embedded and a new record stored.
	StatusStored
	// StatusFailed means the chunk was not stored; see Outcome.Err.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "SKIPPED"
	case StatusStored:
		return "STORED"
	case StatusFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome reports how one input chunk was resolved.
type Outcome struct {
	Index    int         // Position of the chunk in the input
	Chunk    *core.Chunk // The input chunk
	Status   Status
	RecordID core.ID // Stored or pre-existing record; zero when failed
	Err      error   // Non-nil only when Status is StatusFailed
}

// Summary counts outcomes by status.
type Summary struct {
	Stored  int
	Skipped int
	Failed  int
}

// Total returns the number of outcomes counted.
func (s Summary) Total() int {
	return s.Stored + s.Skipped + s.Failed
}

// Add counts one outcome.
func (s *Summary) Add(o Outcome) {
	switch o.Status {
	case StatusStored:
		s.Stored++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
}

// Summarize counts outcomes by status.
func Summarize(outcomes []Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		s.Add(o)
	}
	return s
}
