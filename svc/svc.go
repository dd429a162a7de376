// Package svc reads and writes a small sectioned container: a fixed
// magic, a format version, a table of (kind, offset, size, checksum)
// entries, then the concatenated section payloads. It knows nothing
// about what the payloads mean; callers pick section kinds and contents.
package svc

import (
	"encoding/binary"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

var magic = [4]byte{'S', 'V', 'C', 'f'}

const version uint8 = 1

// Section kinds used by this module's codec. The container itself treats
// kinds as opaque tags.
const (
	// KindMeta holds codec parameters and the original payload size.
	KindMeta uint8 = 1
	// KindStream holds the entropy-coded symbol stream.
	KindStream uint8 = 2
)

var (
	// ErrBadMagic is returned when the input does not start with the
	// container magic.
	ErrBadMagic = errors.New("svc: bad magic")
	// ErrBadVersion is returned when the container's format version is
	// not one this package writes.
	ErrBadVersion = errors.New("svc: unsupported version")
	// ErrChecksum is returned when a section payload does not hash to the
	// sum recorded in the table.
	ErrChecksum = errors.New("svc: section checksum mismatch")
)

// A Section is one payload carried by the container.
type Section struct {
	Kind uint8
	Data []byte
}

// A SectionInfo is one entry of the container's table. Offset is relative
// to the start of the payload area, which follows the table immediately.
type SectionInfo struct {
	Kind   uint8
	Offset uint64
	Size   uint64
	Sum    uint64
}

// Write emits the container: header, table, then every section payload in
// the order given.
func Write(w io.Writer, sections []Section) error {
	if _, err := w.Write(magic[:]); err != nil {
		return errors.Wrap(err, "svc: write magic")
	}
	if err := binary.Write(w, binary.LittleEndian, version); err != nil {
		return errors.Wrap(err, "svc: write version")
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(sections))); err != nil {
		return errors.Wrap(err, "svc: write section count")
	}

	var offset uint64
	for _, s := range sections {
		info := SectionInfo{
			Kind:   s.Kind,
			Offset: offset,
			Size:   uint64(len(s.Data)),
			Sum:    xxhash.Sum64(s.Data),
		}
		if err := binary.Write(w, binary.LittleEndian, info); err != nil {
			return errors.Wrap(err, "svc: write table entry")
		}
		offset += info.Size
	}

	for _, s := range sections {
		if _, err := w.Write(s.Data); err != nil {
			return errors.Wrap(err, "svc: write section payload")
		}
	}
	return nil
}

// ReadIndex reads the container header and table, leaving r positioned at
// the start of the payload area.
func ReadIndex(r io.Reader) ([]SectionInfo, error) {
	var m [4]byte
	if _, err := io.ReadFull(r, m[:]); err != nil {
		return nil, errors.Wrap(err, "svc: read magic")
	}
	if m != magic {
		return nil, ErrBadMagic
	}
	var v uint8
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return nil, errors.Wrap(err, "svc: read version")
	}
	if v != version {
		return nil, ErrBadVersion
	}
	var count uint16
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, errors.Wrap(err, "svc: read section count")
	}

	infos := make([]SectionInfo, count)
	var offset uint64
	for i := range infos {
		if err := binary.Read(r, binary.LittleEndian, &infos[i]); err != nil {
			return nil, errors.Wrap(err, "svc: read table entry")
		}
		if infos[i].Offset != offset {
			return nil, errors.Errorf("svc: section %d offset %d, expected %d", i, infos[i].Offset, offset)
		}
		offset += infos[i].Size
	}
	return infos, nil
}

// Read reads the whole container and returns its sections, verifying
// every payload against the checksum in the table.
func Read(r io.Reader) ([]Section, error) {
	infos, err := ReadIndex(r)
	if err != nil {
		return nil, err
	}
	sections := make([]Section, len(infos))
	for i, info := range infos {
		data := make([]byte, info.Size)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, errors.Wrapf(err, "svc: read section %d payload", i)
		}
		if xxhash.Sum64(data) != info.Sum {
			return nil, ErrChecksum
		}
		sections[i] = Section{Kind: info.Kind, Data: data}
	}
	return sections, nil
}

// Find returns the first section of the given kind, or nil.
func Find(sections []Section, kind uint8) *Section {
	for i := range sections {
		if sections[i].Kind == kind {
			return &sections[i]
		}
	}
	return nil
}
