package gobinary

import (
	"debug/elf"
	"fmt"
	"io"
)

// Section is a named region of the executable with a virtual address.
type Section struct {
	Name string
	Addr uint64
	Data []byte
}

// Segment is a program segment as declared in the ELF program header table.
type Segment struct {
	Type     elf.ProgType
	Vaddr    uint64
	Filesz   uint64
	Writable bool
	Data     []byte
}

// Image holds the parts of an ELF executable the engine reads: raw section
// and program segment contents, addressable by virtual address. It is
// immutable once built.
type Image struct {
	Sections []Section
	Segments []Segment
}

// NewImage loads section and segment contents out of f.
func NewImage(f *elf.File) (*Image, error) {
	img := &Image{}
	for _, s := range f.Sections {
		var data []byte
		if s.Type != elf.SHT_NOBITS {
			d, err := s.Data()
			if err != nil {
				return nil, fmt.Errorf("reading section %s: %w", s.Name, err)
			}
			data = d
		}
		img.Sections = append(img.Sections, Section{Name: s.Name, Addr: s.Addr, Data: data})
	}
	for _, p := range f.Progs {
		data := make([]byte, p.Filesz)
		if _, err := io.ReadFull(p.Open(), data); err != nil {
			return nil, fmt.Errorf("reading segment at %#x: %w", p.Vaddr, err)
		}
		img.Segments = append(img.Segments, Segment{
			Type:     p.Type,
			Vaddr:    p.Vaddr,
			Filesz:   p.Filesz,
			Writable: p.Flags&elf.PF_W != 0,
			Data:     data,
		})
	}
	return img, nil
}

// Section returns the named section, or nil if the image has none.
func (img *Image) Section(name string) *Section {
	for i := range img.Sections {
		if img.Sections[i].Name == name {
			return &img.Sections[i]
		}
	}
	return nil
}

// ReadAddr resolves a virtual address to the bytes stored at it, scanning
// segments in declared order and using the first one covering addr. The
// returned slice may be shorter than size when the segment ends early; it
// is nil when no segment covers addr. Callers needing exactly size bytes
// must check the length.
func (img *Image) ReadAddr(addr, size uint64) []byte {
	for i := range img.Segments {
		seg := &img.Segments[i]
		if addr < seg.Vaddr || addr >= seg.Vaddr+seg.Filesz {
			continue
		}
		n := seg.Vaddr + seg.Filesz - addr
		if n > size {
			n = size
		}
		off := addr - seg.Vaddr
		return seg.Data[off : off+n]
	}
	return nil
}
