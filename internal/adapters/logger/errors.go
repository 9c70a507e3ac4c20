package logger

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// maxErrorDepth bounds chain traversal for cyclic or very deep chains.
const maxErrorDepth = 64

// messager describes an error that reports its own message without the chain,
// as zerr.Error does.
type messager interface {
	Message() string
}

type metadataCarrier interface {
	Metadata() map[string]any
}

type multiUnwrapper interface {
	Unwrap() []error
}

// ErrorEntry is one level of an error chain.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// collectErrorEntries flattens err into one entry per message. Joined errors
// contribute their children in order. Metadata attached to an error without a
// message of its own is carried over to the next entry.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	var pending map[string]any

	var walk func(current error, depth int)
	walk = func(current error, depth int) {
		for current != nil && depth < maxErrorDepth {
			depth++

			if joined, ok := current.(multiUnwrapper); ok {
				for _, child := range joined.Unwrap() {
					walk(child, depth)
				}
				return
			}

			m, ok := current.(messager)
			if !ok {
				entries = append(entries, ErrorEntry{Message: current.Error(), Metadata: pending})
				pending = nil
				return
			}

			var meta map[string]any
			if c, ok := current.(metadataCarrier); ok {
				meta = c.Metadata()
			}
			if m.Message() == "" {
				pending = mergeMetadata(pending, meta)
			} else {
				entries = append(entries, ErrorEntry{Message: m.Message(), Metadata: mergeMetadata(pending, meta)})
				pending = nil
			}
			current = errors.Unwrap(current)
		}
	}
	walk(err, 0)

	if len(pending) > 0 && len(entries) > 0 {
		last := &entries[len(entries)-1]
		last.Metadata = mergeMetadata(last.Metadata, pending)
	}
	return entries
}

// liftFailureAttrs removes the first stage, entry and exit_code values from the
// entries' metadata and returns them as log attributes.
func liftFailureAttrs(entries []ErrorEntry) []any {
	var attrs []any
	for _, key := range []string{attrStage, attrEntry, attrExitCode} {
		for i := range entries {
			value, ok := entries[i].Metadata[key]
			if !ok {
				continue
			}
			entries[i].Metadata = maps.Clone(entries[i].Metadata)
			delete(entries[i].Metadata, key)
			attrs = append(attrs, slog.Any(key, value))
			break
		}
	}
	return attrs
}

func mergeMetadata(dst, src map[string]any) map[string]any {
	if dst == nil {
		return src
	}
	maps.Copy(dst, src)
	return dst
}

// formatErrorEntries renders entries as a headline followed by a "Caused by"
// list. Metadata is printed below its message, sorted by key.
func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string

	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")

		first, indent := "Error: ", "       "
		if i > 0 {
			if i == 1 {
				lines = append(lines, "", "  Caused by:")
			}
			first, indent = "    → ", "      "
		}

		lines = append(lines, first+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, indent+line)
		}
		for _, key := range slices.Sorted(maps.Keys(entry.Metadata)) {
			lines = append(lines, fmt.Sprintf("%s%s: %v", indent, key, entry.Metadata[key]))
		}
	}

	return strings.Join(lines, "\n")
}
