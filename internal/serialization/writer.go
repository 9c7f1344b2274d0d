package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
)

// Write encodes sections into w in the order given.
//
// Section names must be unique and pass ValidateSectionName; each section's
// data length must match its shape and dtype.
func Write(w io.Writer, kind string, sections []Section, metadata map[string]string) error {
	header := Header{
		FormatVersion: FormatVersion,
		Kind:          kind,
		CreatedAt:     time.Now().UTC(),
		RunID:         uuid.New().String(),
		Sections:      make([]SectionMeta, 0, len(sections)),
		Metadata:      metadata,
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	// Calculate section offsets
	var currentOffset int64
	seen := make(map[string]bool, len(sections))
	for _, s := range sections {
		if err := ValidateSectionName(s.Name); err != nil {
			return err
		}
		if seen[s.Name] {
			return &ValidationError{Type: "duplicate_name", Section: s.Name, Details: "section written twice"}
		}
		seen[s.Name] = true
		if int64(len(s.Data)) != s.byteSize() {
			return &ValidationError{
				Type:    "size_mismatch",
				Section: s.Name,
				Details: fmt.Sprintf("%d bytes for shape %v of %s", len(s.Data), s.Shape, s.DType),
			}
		}
		size := int64(len(s.Data))
		header.Sections = append(header.Sections, SectionMeta{
			Name:   s.Name,
			DType:  s.DType.String(),
			Shape:  []int(s.Shape.Clone()),
			Offset: currentOffset,
			Size:   size,
		})
		currentOffset += size
	}

	sum := ComputeChecksum(joinData(sections, currentOffset))
	header.Checksum = hex.EncodeToString(sum[:])

	// Marshal header to JSON
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(MagicBytes); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("failed to write version: %w", err)
	}
	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if err := binary.Write(bw, binary.LittleEndian, flags); err != nil {
		return fmt.Errorf("failed to write flags: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := bw.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	if padding := paddingAfter(int64(len(headerJSON))); padding > 0 {
		if _, err := bw.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	for _, s := range sections {
		if _, err := bw.Write(s.Data); err != nil {
			return fmt.Errorf("failed to write section %s: %w", s.Name, err)
		}
	}
	return bw.Flush()
}

// WriteFile writes sections to path, replacing any existing file.
func WriteFile(path, kind string, sections []Section, metadata map[string]string) error {
	//nolint:gosec // G304: File path comes from user input, which is expected for saving
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := Write(f, kind, sections, metadata); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// paddingAfter returns the bytes needed to align the data region.
func paddingAfter(headerSize int64) int64 {
	currentPos := int64(fixedHeaderSize) + headerSize
	return (HeaderAlignment - (currentPos % HeaderAlignment)) % HeaderAlignment
}

func joinData(sections []Section, total int64) []byte {
	buf := make([]byte, 0, total)
	for _, s := range sections {
		buf = append(buf, s.Data...)
	}
	return buf
}
