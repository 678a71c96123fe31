package dragdrop

import (
	"fmt"

	"github.com/justyntemme/dragexport/internal/debug"
)

// DataProvider is the data object offered to the drag loop. It serves the
// dragged path as CF_HDROP in global memory and nothing else.
//
// Its lifetime is governed only by the reference count: NewDataProvider
// returns it with one reference, and it is destroyed when the last holder,
// which may be the shell, releases.
type DataProvider struct {
	refs  refCount
	path  string
	wide  []byte
	alloc GlobalAllocator
}

// NewDataProvider builds a provider for path with a reference count of one.
func NewDataProvider(path string, alloc GlobalAllocator) (*DataProvider, error) {
	if err := (DragRequest{Path: path}).Validate(); err != nil {
		return nil, err
	}
	if alloc == nil {
		return nil, fmt.Errorf("nil allocator: %w", ErrInvalidArgument)
	}
	wide, err := encodeWide(path)
	if err != nil {
		return nil, err
	}
	p := &DataProvider{path: path, wide: wide, alloc: alloc}
	p.refs.init()
	return p, nil
}

// Path returns the dragged path.
func (p *DataProvider) Path() string { return p.path }

// AcquireReference adds a reference and returns the new count.
func (p *DataProvider) AcquireReference() uint32 { return p.refs.acquire() }

// ReleaseReference drops a reference and returns the new count. The provider
// is destroyed when the count reaches zero.
func (p *DataProvider) ReleaseReference() uint32 { return p.refs.release() }

// References returns the current count.
func (p *DataProvider) References() uint32 { return p.refs.count() }

// Destroyed reports whether the count has reached zero.
func (p *DataProvider) Destroyed() bool { return p.refs.isDestroyed() }

// OnDestroy registers fn to run once when the provider is destroyed. If it
// already was, fn runs immediately.
func (p *DataProvider) OnDestroy(fn func()) { p.refs.addDestroyHook(fn) }

// QueryCapability succeeds for IUnknown and IDataObject. Each success adds a
// reference the caller must release. A destroyed provider answers nothing.
func (p *DataProvider) QueryCapability(c Capability) error {
	switch c {
	case CapUnknown, CapDataObject:
		if p.refs.acquire() == 0 {
			return fmt.Errorf("data object %s: destroyed: %w", c, ErrNoInterface)
		}
		return nil
	}
	return fmt.Errorf("data object %s: %w", c, ErrNoInterface)
}

// FetchData allocates a CF_HDROP block for the path. The caller owns the
// returned medium.
func (p *DataProvider) FetchData(f FormatDescriptor) (Medium, error) {
	if err := matchHDrop(f); err != nil {
		debug.Log(debug.OLE, "GetData rejected %s", f)
		return Medium{}, err
	}
	block := dropFiles(p.wide)
	h, err := p.alloc.Alloc(block)
	if err != nil {
		return Medium{}, err
	}
	if h == 0 {
		return Medium{}, &OSError{Op: "GlobalAlloc", Code: E_OUTOFMEMORY}
	}
	debug.Log(debug.OLE, "GetData served %d bytes for %q", len(block), p.path)
	return Medium{Tymed: TymedHGlobal, Handle: h, Size: len(block)}, nil
}

// SupplyDataInto is GetDataHere. Caller-provided storage is never accepted.
func (p *DataProvider) SupplyDataInto(f FormatDescriptor, m Medium) error {
	return fmt.Errorf("GetDataHere: %w", ErrNotImplemented)
}

// CanProvide is QueryGetData.
func (p *DataProvider) CanProvide(f FormatDescriptor) error {
	return matchHDrop(f)
}

// GetPreferredFormat is GetCanonicalFormatEtc.
func (p *DataProvider) GetPreferredFormat(f FormatDescriptor) (FormatDescriptor, error) {
	return FormatDescriptor{}, fmt.Errorf("GetCanonicalFormatEtc: %w", ErrNotImplemented)
}

// SetData is not supported; the provider is read-only.
func (p *DataProvider) SetData(f FormatDescriptor, m Medium, release bool) error {
	return fmt.Errorf("SetData: %w", ErrNotImplemented)
}

// EnumerateFormats is EnumFormatEtc.
func (p *DataProvider) EnumerateFormats(direction uint32) ([]FormatDescriptor, error) {
	return nil, fmt.Errorf("EnumFormatEtc: %w", ErrNotImplemented)
}

// Advise is DAdvise. Change notifications are not supported.
func (p *DataProvider) Advise(f FormatDescriptor, flags uint32) (uint32, error) {
	return 0, fmt.Errorf("DAdvise: %w", ErrNotImplemented)
}

// Unadvise is DUnadvise.
func (p *DataProvider) Unadvise(connection uint32) error {
	return fmt.Errorf("DUnadvise: %w", ErrNotImplemented)
}

// EnumerateAdvisories is EnumDAdvise.
func (p *DataProvider) EnumerateAdvisories() error {
	return fmt.Errorf("EnumDAdvise: %w", ErrNotImplemented)
}
