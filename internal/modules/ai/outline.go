package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OutlineEntry is one parsed chapter heading from a generated outline.
// It is transient: entries exist only between generation and being folded
// into book chapters.
type OutlineEntry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ParseFailure classifies why generator output could not be parsed.
type ParseFailure string

const (
	// NoArrayFound means the output contained no `[`...`]` span at all.
	NoArrayFound ParseFailure = "no_array_found"
	// InvalidStructure means a span was found but did not decode as an
	// array of outline objects.
	InvalidStructure ParseFailure = "invalid_structure"
)

// ParseError reports a failed outline parse. Raw carries the offending
// text for diagnostics; it is never fed back into the book state.
type ParseError struct {
	Reason ParseFailure
	Raw    string
}

func (e *ParseError) Error() string {
	switch e.Reason {
	case NoArrayFound:
		return "outline parse failed: no JSON array found in generator output"
	case InvalidStructure:
		return "outline parse failed: generator output was not a valid outline array"
	}
	return fmt.Sprintf("outline parse failed: %s", string(e.Reason))
}

// ParseOutline extracts a chapter outline from raw generator output.
//
// The generator is prompted to return only a JSON array but routinely wraps
// it in prose or markdown fences, so parsing is two-phase: a lenient locate
// (first `[` to last `]`) followed by a strict decode of that slice. Either
// the whole slice decodes or the call fails; there is no partial success.
// An entry without a title is dropped, a title-only entry keeps an empty
// description, and an empty array is a valid empty outline.
func ParseOutline(raw string) ([]OutlineEntry, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		return nil, &ParseError{Reason: NoArrayFound, Raw: raw}
	}

	slice := raw[start : end+1]

	var decoded []struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.Unmarshal([]byte(slice), &decoded); err != nil {
		return nil, &ParseError{Reason: InvalidStructure, Raw: slice}
	}

	entries := make([]OutlineEntry, 0, len(decoded))
	for _, item := range decoded {
		if item.Title == nil || strings.TrimSpace(*item.Title) == "" {
			continue
		}
		entry := OutlineEntry{Title: strings.TrimSpace(*item.Title)}
		if item.Description != nil {
			entry.Description = strings.TrimSpace(*item.Description)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
