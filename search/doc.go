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

// Package search retrieves stored chunks relevant to a question.
//
// The Searcher embeds the query, ranks stored records by cosine similarity
// and boosts records that contain every non-stop-word of the query verbatim.
// It serves the retrieval half of a question-answering application built on
// the ingested corpus.
package search
