package serialization

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize     = 100 * 1024 * 1024 // 100MB - maximum header size
	MaxSectionCount   = 100_000           // Maximum number of sections in a file
	MaxSectionNameLen = 4096              // Maximum section name length
)

// ValidateSectionName rejects empty names, traversal patterns, absolute
// paths, backslashes and null bytes. Scope separators ("/") are allowed
// between non-empty components.
func ValidateSectionName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Type: "invalid_name", Details: "empty section name"}
	case len(name) > MaxSectionNameLen:
		return &ValidationError{
			Type:    "name_too_long",
			Section: name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxSectionNameLen),
		}
	case strings.Contains(name, ".."):
		return &ValidationError{Type: "invalid_name", Section: name, Details: "contains '..'"}
	case strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") || strings.Contains(name, "//"):
		return &ValidationError{Type: "invalid_name", Section: name, Details: "empty scope component"}
	case strings.Contains(name, "\\"):
		return &ValidationError{Type: "invalid_name", Section: name, Details: "contains backslash"}
	case strings.Contains(name, "\x00"):
		return &ValidationError{Type: "invalid_name", Section: name, Details: "contains null byte"}
	}
	return nil
}

// ValidateSections checks names, dtypes, shape/size agreement, bounds and
// overlaps of the section table against a data region of dataSize bytes.
func ValidateSections(sections []SectionMeta, dataSize int64) error {
	if len(sections) > MaxSectionCount {
		return &ValidationError{
			Type:    "too_many_sections",
			Details: fmt.Sprintf("got %d, max %d", len(sections), MaxSectionCount),
		}
	}

	seen := make(map[string]bool, len(sections))
	for _, s := range sections {
		if err := ValidateSectionName(s.Name); err != nil {
			return err
		}
		if seen[s.Name] {
			return &ValidationError{Type: "duplicate_name", Section: s.Name, Details: "section listed twice"}
		}
		seen[s.Name] = true

		dt, ok := tensor.ParseDataType(s.DType)
		if !ok {
			return &ValidationError{Type: "unknown_dtype", Section: s.Name, Details: s.DType}
		}
		numel := 1
		for _, d := range s.Shape {
			if d < 0 {
				return &ValidationError{Type: "invalid_shape", Section: s.Name, Details: fmt.Sprint(s.Shape)}
			}
			numel *= d
		}
		if int64(numel*dt.Size()) != s.Size {
			return &ValidationError{
				Type:    "size_mismatch",
				Section: s.Name,
				Details: fmt.Sprintf("shape %v of %s needs %d bytes, header says %d", s.Shape, s.DType, numel*dt.Size(), s.Size),
			}
		}
	}

	sorted := make([]SectionMeta, len(sections))
	copy(sorted, sections)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Offset < sorted[j].Offset
	})

	for i, s := range sorted {
		if s.Offset < 0 || s.Size < 0 {
			return &ValidationError{
				Type:    "negative_offset",
				Section: s.Name,
				Details: fmt.Sprintf("offset=%d, size=%d (negative values not allowed)", s.Offset, s.Size),
			}
		}
		if s.Offset+s.Size > dataSize {
			return &ValidationError{
				Type:    "out_of_bounds",
				Section: s.Name,
				Details: fmt.Sprintf("offset %d + size %d > data_size %d", s.Offset, s.Size, dataSize),
			}
		}
		if i < len(sorted)-1 {
			next := sorted[i+1]
			if s.Offset+s.Size > next.Offset {
				return &ValidationError{
					Type:     "offset_overlap",
					Section:  s.Name,
					Section2: next.Name,
					Details: fmt.Sprintf("regions [%d-%d] and [%d-%d] overlap",
						s.Offset, s.Offset+s.Size, next.Offset, next.Offset+next.Size),
				}
			}
		}
	}
	return nil
}
