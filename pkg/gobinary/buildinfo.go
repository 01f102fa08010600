package gobinary

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"
)

// The linker emits a fixed-layout header into the .go.buildinfo section of
// every module-aware binary. Layout, from cmd/go/internal/version:
//
//	bytes 0-13: magic "\xff Go buildinf:"
//	byte 14:    pointer size (4 or 8)
//	byte 15:    flags (bit 0 endianness, bit 1 inline strings)
//
// In pointer mode two pointer-sized string headers follow at offsets 16 and
// 16+ptrSize; in inline mode (Go 1.18+) the two varint-prefixed strings
// follow the 32-byte header directly.
const (
	buildInfoAlign      = 16
	buildInfoHeaderSize = 32
	buildInfoReadLimit  = 64 * 1024
)

const (
	flagBigEndian     = 1 << 0
	flagInlineStrings = 1 << 1
)

var buildInfoMagic = []byte("\xff Go buildinf:")

// dataStart returns the virtual address where the search for the build-info
// header begins.
func dataStart(img *Image) uint64 {
	if s := img.Section(".go.buildinfo"); s != nil {
		return s.Addr
	}
	for _, seg := range img.Segments {
		if seg.Type == elf.PT_LOAD && seg.Writable {
			return seg.Vaddr
		}
	}
	return 0
}

// findBuildInfo scans the initial data region for the build-info magic,
// which the linker places on a 16-byte boundary. Returns a slice aligned to
// the header, at least buildInfoHeaderSize bytes long.
func findBuildInfo(img *Image) ([]byte, error) {
	data := img.ReadAddr(dataStart(img), buildInfoReadLimit)
	for off := 0; off < len(data); {
		i := bytes.Index(data[off:], buildInfoMagic)
		if i < 0 {
			break
		}
		i += off
		if i%buildInfoAlign != 0 {
			// A mid-block hit cannot be the header; resume at the next
			// aligned boundary strictly past it.
			off = (i + buildInfoAlign) &^ (buildInfoAlign - 1)
			continue
		}
		if len(data)-i < buildInfoHeaderSize {
			break
		}
		return data[i:], nil
	}
	return nil, ErrNotGoExecutable
}

// decodeBuildInfo extracts the Go version and the module-info blob from the
// header found by findBuildInfo. The image is needed in pointer mode to
// chase string headers through the segment table.
func decodeBuildInfo(img *Image, hdr []byte) (vers, mod string, err error) {
	ptrSize := int(hdr[14])
	flags := hdr[15]

	if flags&flagInlineStrings != 0 {
		var rest []byte
		vers, rest = decodeString(hdr[buildInfoHeaderSize:])
		mod, _ = decodeString(rest)
		if vers == "" {
			return "", "", ErrNoVersion
		}
		return vers, mod, nil
	}

	if ptrSize != 4 && ptrSize != 8 {
		return "", "", fmt.Errorf("invalid pointer size %d in build info header", ptrSize)
	}
	var ord binary.ByteOrder = binary.LittleEndian
	if flags&flagBigEndian != 0 {
		ord = binary.BigEndian
	}
	readPtr := func(b []byte) uint64 {
		if ptrSize == 4 {
			return uint64(ord.Uint32(b))
		}
		return ord.Uint64(b)
	}

	vers = readIndirectString(img, readPtr(hdr[16:]), ptrSize, readPtr)
	if vers == "" {
		return "", "", ErrNoVersion
	}
	mod = readIndirectString(img, readPtr(hdr[16+ptrSize:]), ptrSize, readPtr)
	// Pointer-mode module info is wrapped in 16-byte sentinels with a
	// newline just inside the trailing one.
	if len(mod) >= 33 && mod[len(mod)-17] == '\n' {
		mod = mod[16 : len(mod)-16]
	} else {
		return "", "", ErrNoModuleSupport
	}
	return vers, mod, nil
}

// decodeString decodes a uvarint-length-prefixed string, returning the
// string and the remainder of b. A truncated or invalid prefix yields
// ("", nil).
func decodeString(b []byte) (string, []byte) {
	n, w := binary.Uvarint(b)
	if w <= 0 || n > uint64(len(b)-w) {
		return "", nil
	}
	return string(b[w : w+int(n)]), b[w+int(n):]
}

// readIndirectString reads a string addressed by a (data, len) header
// structure at addr. Short reads at any step yield the empty string.
func readIndirectString(img *Image, addr uint64, ptrSize int, readPtr func([]byte) uint64) string {
	hdr := img.ReadAddr(addr, uint64(2*ptrSize))
	if len(hdr) < 2*ptrSize {
		return ""
	}
	dataAddr := readPtr(hdr)
	dataLen := readPtr(hdr[ptrSize:])
	data := img.ReadAddr(dataAddr, dataLen)
	if uint64(len(data)) < dataLen {
		return ""
	}
	return string(data)
}
