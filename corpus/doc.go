// Package corpus reads and writes the JSON corpus file.
//
// The file holds every extracted essay together with its chunks:
//
//	{
//	  "tokens": 1234,
//	  "essays": [
//	    {"title": "...", "url": "...", "date": "...", "authors": "...",
//	     "content": "...", "tokens": 1234, "chunks": [...]}
//	  ]
//	}
//
// Load fills in missing essay token counts and Save recomputes the corpus
// total, so a hand-edited file stays consistent.
package corpus
