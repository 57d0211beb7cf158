// Package finding provides the shared result model for MCP server scans.
//
// It defines the canonical Severity scale, the Finding value type emitted
// by analyzers, and the per-tool and per-server scan result records that
// the orchestrator assembles and the aggregator folds. These types are
// immutable values once created; they carry no behavior beyond derived
// accessors and are safe to share across goroutines.
package finding
