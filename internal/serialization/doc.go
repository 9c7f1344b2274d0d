// Package serialization provides the .hgcl container used for variable
// checkpoints and for hexagon-to-square interpolation tables.
//
//	Format Structure:
//	  [4 bytes: Magic "HGCL"]
//	  [4 bytes: Version (uint32 LE)]
//	  [4 bytes: Flags (uint32 LE)]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON metadata]
//	  [Padding to a 64-byte boundary]
//	  [Section data: raw little-endian bytes]
//
// A file holds typed, shaped sections (float32, float64 or int64). The header
// records each section's offset and size in the data region, a free-form
// metadata map, and the SHA-256 checksum of the whole data region, which is
// verified on read.
//
// Example usage:
//
//	sections := []serialization.Section{
//	    serialization.Int64Section("hex_ids", tensor.Shape{3}, []int64{1, 2, 3}),
//	    serialization.Float64Section("weights", tensor.Shape{3}, []float64{0.5, 0.25, 0.25}),
//	}
//	if err := serialization.WriteFile("table.hgcl", serialization.KindCoefficients, sections, nil); err != nil {
//	    log.Fatal(err)
//	}
//
//	f, err := serialization.ReadFile("table.hgcl")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	s, err := f.Section("hex_ids")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ids, err := s.Int64s()
package serialization
