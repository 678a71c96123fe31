package dragdrop

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// ClipFormat is a clipboard format identifier (CLIPFORMAT).
type ClipFormat uint16

// CF_HDROP is the standard file-list clipboard format.
const CF_HDROP ClipFormat = 15

// Aspect is a DVASPECT value.
type Aspect uint32

const AspectContent Aspect = 1

// Tymed is a TYMED storage medium bit set.
type Tymed uint32

const (
	TymedNull    Tymed = 0
	TymedHGlobal Tymed = 1
	TymedFile    Tymed = 2
	TymedIStream Tymed = 4
	TymedIStore  Tymed = 8
)

// FormatDescriptor mirrors FORMATETC without the target-device pointer.
type FormatDescriptor struct {
	Format ClipFormat
	Aspect Aspect
	Index  int32
	Tymed  Tymed
}

// HDropFormat is the one format a DataProvider serves.
func HDropFormat() FormatDescriptor {
	return FormatDescriptor{Format: CF_HDROP, Aspect: AspectContent, Index: -1, Tymed: TymedHGlobal}
}

func (f FormatDescriptor) String() string {
	return fmt.Sprintf("{cf=%d aspect=%d index=%d tymed=%#x}", f.Format, f.Aspect, f.Index, uint32(f.Tymed))
}

func matchHDrop(f FormatDescriptor) error {
	if f.Format != CF_HDROP || f.Aspect != AspectContent || f.Index != -1 {
		return fmt.Errorf("%s: %w", f, ErrUnsupportedFormat)
	}
	if f.Tymed&TymedHGlobal == 0 {
		return fmt.Errorf("%s: %w", f, ErrUnsupportedMedium)
	}
	return nil
}

// Medium mirrors STGMEDIUM for the HGLOBAL case. The receiver owns Handle
// and frees it with the allocator's Free (ReleaseStgMedium on Windows).
type Medium struct {
	Tymed  Tymed
	Handle uintptr
	Size   int
}

// dropFilesHeaderSize is sizeof(DROPFILES): pFiles, pt.x, pt.y, fNC, fWide.
const dropFilesHeaderSize = 20

// encodeWide converts a UTF-8 path to UTF-16LE without a terminator.
func encodeWide(path string) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	b, err := enc.Bytes([]byte(path))
	if err != nil {
		return nil, fmt.Errorf("encode %q as UTF-16: %w", path, err)
	}
	return b, nil
}

// dropFiles lays out a CF_HDROP block: a DROPFILES header followed by the
// wide path, its terminator and the list terminator.
func dropFiles(wide []byte) []byte {
	buf := make([]byte, dropFilesHeaderSize+len(wide)+4)
	binary.LittleEndian.PutUint32(buf[0:], dropFilesHeaderSize) // pFiles
	// pt and fNC stay zero
	binary.LittleEndian.PutUint32(buf[16:], 1) // fWide
	copy(buf[dropFilesHeaderSize:], wide)
	return buf
}

// DecodeDropFiles returns the paths stored in a CF_HDROP block.
func DecodeDropFiles(block []byte) ([]string, error) {
	if len(block) < dropFilesHeaderSize {
		return nil, fmt.Errorf("DROPFILES block too short (%d bytes): %w", len(block), ErrInvalidArgument)
	}
	off := binary.LittleEndian.Uint32(block[0:])
	wide := binary.LittleEndian.Uint32(block[16:]) != 0
	if !wide {
		return nil, fmt.Errorf("ANSI DROPFILES: %w", ErrUnsupportedFormat)
	}
	if int(off) > len(block) {
		return nil, fmt.Errorf("DROPFILES offset %d out of range: %w", off, ErrInvalidArgument)
	}

	dec := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	var paths []string
	rest := block[off:]
	for {
		end := -1
		for i := 0; i+1 < len(rest); i += 2 {
			if rest[i] == 0 && rest[i+1] == 0 {
				end = i
				break
			}
		}
		if end < 0 {
			return nil, fmt.Errorf("unterminated DROPFILES list: %w", ErrInvalidArgument)
		}
		if end == 0 {
			return paths, nil
		}
		s, err := dec.Bytes(rest[:end])
		if err != nil {
			return nil, err
		}
		paths = append(paths, string(s))
		rest = rest[end+2:]
	}
}
