package serialization

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateSectionName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"simple", "weights", true},
		{"scoped", "res2a/branch_2a/W", true},
		{"empty", "", false},
		{"traversal", "a/../b", false},
		{"absolute", "/etc/passwd", false},
		{"trailing slash", "a/", false},
		{"double slash", "a//b", false},
		{"backslash", "a\\b", false},
		{"null", "a\x00b", false},
		{"too long", strings.Repeat("x", MaxSectionNameLen+1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSectionName(tt.input)
			if tt.ok && err != nil {
				t.Errorf("expected %q to be valid, got %v", tt.input, err)
			}
			if !tt.ok && err == nil {
				t.Errorf("expected %q to be rejected", tt.input)
			}
		})
	}
}

func TestValidateSections(t *testing.T) {
	tests := []struct {
		name     string
		sections []SectionMeta
		dataSize int64
		errType  string
	}{
		{
			name: "valid contiguous",
			sections: []SectionMeta{
				{Name: "a", DType: "float32", Shape: []int{2}, Offset: 0, Size: 8},
				{Name: "b", DType: "int64", Shape: []int{1}, Offset: 8, Size: 8},
			},
			dataSize: 16,
		},
		{
			name: "overlap",
			sections: []SectionMeta{
				{Name: "a", DType: "float32", Shape: []int{2}, Offset: 0, Size: 8},
				{Name: "b", DType: "float32", Shape: []int{2}, Offset: 4, Size: 8},
			},
			dataSize: 16,
			errType:  "offset_overlap",
		},
		{
			name:     "out of bounds",
			sections: []SectionMeta{{Name: "a", DType: "float64", Shape: []int{2}, Offset: 8, Size: 16}},
			dataSize: 16,
			errType:  "out_of_bounds",
		},
		{
			name:     "negative offset",
			sections: []SectionMeta{{Name: "a", DType: "float32", Shape: []int{1}, Offset: -4, Size: 4}},
			dataSize: 16,
			errType:  "negative_offset",
		},
		{
			name:     "unknown dtype",
			sections: []SectionMeta{{Name: "a", DType: "bfloat16", Shape: []int{1}, Offset: 0, Size: 2}},
			dataSize: 16,
			errType:  "unknown_dtype",
		},
		{
			name:     "size disagrees with shape",
			sections: []SectionMeta{{Name: "a", DType: "float32", Shape: []int{3}, Offset: 0, Size: 8}},
			dataSize: 16,
			errType:  "size_mismatch",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSections(tt.sections, tt.dataSize)
			if tt.errType == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Type != tt.errType {
				t.Errorf("got type %q, want %q", verr.Type, tt.errType)
			}
		})
	}
}
