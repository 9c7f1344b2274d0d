package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hgcal-gsoc/hgcal/internal/tensor"
)

// File is a fully decoded and validated .hgcl file.
type File struct {
	Header   Header
	Flags    uint32
	sections map[string]Section
}

// Read decodes a file from r, verifying the checksum and section table.
func Read(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, 4)
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return nil, ErrInvalidMagic
	}

	var version uint32
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}

	f := &File{}
	if err := binary.Read(br, binary.LittleEndian, &f.Flags); err != nil {
		return nil, fmt.Errorf("failed to read flags: %w", err)
	}

	var headerSize uint64
	if err := binary.Read(br, binary.LittleEndian, &headerSize); err != nil {
		return nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > MaxHeaderSize {
		return nil, ErrHeaderTooLarge
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(br, headerJSON); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := json.Unmarshal(headerJSON, &f.Header); err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	if _, err := io.CopyN(io.Discard, br, paddingAfter(int64(headerSize))); err != nil {
		return nil, fmt.Errorf("failed to skip padding: %w", err)
	}

	data, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("failed to read section data: %w", err)
	}
	if err := ValidateChecksum(ComputeChecksum(data), f.Header.Checksum); err != nil {
		return nil, err
	}
	if err := ValidateSections(f.Header.Sections, int64(len(data))); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	f.sections = make(map[string]Section, len(f.Header.Sections))
	for _, m := range f.Header.Sections {
		dt, _ := tensor.ParseDataType(m.DType)
		f.sections[m.Name] = Section{
			Name:  m.Name,
			DType: dt,
			Shape: tensor.Shape(m.Shape).Clone(),
			Data:  data[m.Offset : m.Offset+m.Size],
		}
	}
	return f, nil
}

// ReadFile opens and decodes path.
func ReadFile(path string) (*File, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for loading
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer fh.Close()

	f, err := Read(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Kind returns the header kind.
func (f *File) Kind() string {
	return f.Header.Kind
}

// ExpectKind fails with ErrKindMismatch unless the file has the given kind.
func (f *File) ExpectKind(kind string) error {
	if f.Header.Kind != kind {
		return fmt.Errorf("%w: got %q, want %q", ErrKindMismatch, f.Header.Kind, kind)
	}
	return nil
}

// Section returns the named section.
func (f *File) Section(name string) (Section, error) {
	s, ok := f.sections[name]
	if !ok {
		return Section{}, fmt.Errorf("%w: %q", ErrSectionNotFound, name)
	}
	return s, nil
}

// Names returns the section names in file order.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Header.Sections))
	for _, m := range f.Header.Sections {
		names = append(names, m.Name)
	}
	return names
}

// Metadata returns the value stored under key.
func (f *File) Metadata(key string) (string, bool) {
	v, ok := f.Header.Metadata[key]
	return v, ok
}
