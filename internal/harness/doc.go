// Package harness runs conformance scenarios against the symbol pack
// pipeline.
//
// A scenario is a YAML file holding a raw symbol export and assertions
// about the pack it must produce. Each scenario is assembled in memory with
// a fixed clock and a fixed run id, once per input permutation (file order,
// reversed, and every rotation). All permutations must yield the same pack
// modulo volatile build metadata; the pack from file order is then checked
// against the assertions and, optionally, a golden snapshot.
//
// # Scenario Format
//
//	name: credits_variants
//	description: spelling variants of one symbol collapse to one anchor
//	module: swfoc.exe
//	binary: "MZ fake binary"
//	symbols:
//	  - {name: g_Credits, address: "0x00401000", kind: data}
//	  - {name: G-CREDITS, address: "0x00401000", kind: data}
//	assertions:
//	  - {type: anchor_present, id: g_credits, address: "0x401000"}
//	  - {type: anchor_count, count: 1}
//	  - {type: capability, feature: set_credits, available: false}
//
// Addresses must be quoted. YAML reads an unquoted 0x literal as an integer,
// which would reach the ingestor as decimal text.
//
// # Golden Files
//
// Snapshots are the canonical JSON of the pack with analysisRunId and
// generatedAtUtc removed. Test code compares them with goldie under
// testdata/golden; the CLI keeps them next to the scenarios in golden/.
package harness
