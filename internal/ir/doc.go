// Package ir provides the document model for symbol packs and their companion
// artifacts.
//
// This package contains types and serialization only. All other internal
// packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Every emitted sequence has an explicit sort key (anchors by id,
//     capabilities by registry order)
//   - JSON tags use camelCase to match the external artifact schemas
//   - Only buildMetadata.analysisRunId and buildMetadata.generatedAtUtc may
//     differ between two runs over the same input
//   - Content digests are computed over RFC 8785 canonical JSON
package ir
