package ir

import "time"

// Version constants for produced documents and the emitter.
const (
	// SchemaVersion is the schema version of every produced document.
	SchemaVersion = "1.0"

	// EmitterVersion identifies this emitter in summary tool versions.
	EmitterVersion = "symbolpack-emit@1.0"
)

// TimestampLayout is the UTC second-precision layout of generatedAtUtc.
const TimestampLayout = "2006-01-02T15:04:05Z"

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(TimestampLayout)
}
