package serialization

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"time"
)

// Format constants.
const (
	MagicBytes      = "HGCL"
	FormatVersion   = 1
	HeaderAlignment = 64 // Section data starts on a 64-byte boundary.
	fixedHeaderSize = 4 + 4 + 4 + 8
)

// File kinds.
const (
	KindCheckpoint   = "checkpoint"
	KindCoefficients = "coefficients"
	KindSquareCells  = "square_cells"
)

// Flags.
const (
	FlagHasMetadata uint32 = 1 << 0 // bit 0: custom metadata included
)

// Header represents the JSON header in a .hgcl file.
type Header struct {
	FormatVersion int               `json:"format_version"` // Version of the format
	Kind          string            `json:"kind"`           // What the sections describe
	CreatedAt     time.Time         `json:"created_at"`     // When the file was created
	RunID         string            `json:"run_id"`         // Unique id of the producing run
	Sections      []SectionMeta     `json:"sections"`       // Section metadata
	Metadata      map[string]string `json:"metadata"`       // Custom metadata
	Checksum      string            `json:"checksum"`       // Hex SHA-256 of the data region
}

// SectionMeta describes a section in the data region.
type SectionMeta struct {
	Name   string `json:"name"`   // Section name (e.g., "weights", "res1/branch_2a/W")
	DType  string `json:"dtype"`  // Data type (e.g., "float32", "int64")
	Shape  []int  `json:"shape"`  // Section shape
	Offset int64  `json:"offset"` // Offset in the data region
	Size   int64  `json:"size"`   // Size in bytes
}

// ComputeChecksum computes SHA-256 checksum of data.
func ComputeChecksum(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// ComputeChecksumReader computes SHA-256 checksum from an io.Reader.
func ComputeChecksumReader(r io.Reader) ([32]byte, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return [32]byte{}, err
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

// ValidateChecksum compares computed checksum against the stored hex digest.
// Returns ErrChecksumMismatch if they don't match.
func ValidateChecksum(computed [32]byte, stored string) error {
	if hex.EncodeToString(computed[:]) != stored {
		return ErrChecksumMismatch
	}
	return nil
}
