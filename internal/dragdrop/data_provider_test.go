package dragdrop

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingAllocator struct{}

func (failingAllocator) Alloc([]byte) (uintptr, error) {
	return 0, &OSError{Op: "GlobalAlloc", Code: E_OUTOFMEMORY}
}
func (failingAllocator) Free(uintptr) error { return nil }

func newProvider(t *testing.T, path string) (*DataProvider, *HeapAllocator) {
	t.Helper()
	alloc := NewHeapAllocator()
	p, err := NewDataProvider(path, alloc)
	require.NoError(t, err)
	return p, alloc
}

func TestNewDataProvider_Rejects(t *testing.T) {
	_, err := NewDataProvider("", NewHeapAllocator())
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewDataProvider("C:\\temp\\a\x00b.png", NewHeapAllocator())
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewDataProvider("C:\\temp\\\xffimg.png", NewHeapAllocator())
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = NewDataProvider("C:\\temp\\img.png", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestDataProvider_FetchData(t *testing.T) {
	p, alloc := newProvider(t, `C:\temp\img.png`)

	m, err := p.FetchData(HDropFormat())
	require.NoError(t, err)
	assert.Equal(t, TymedHGlobal, m.Tymed)
	assert.NotZero(t, m.Handle)

	block, ok := alloc.Bytes(m.Handle)
	require.True(t, ok)
	assert.Equal(t, m.Size, len(block))

	paths, err := DecodeDropFiles(block)
	require.NoError(t, err)
	assert.Equal(t, []string{`C:\temp\img.png`}, paths)
}

func TestDataProvider_FetchDataAcceptsCombinedTymed(t *testing.T) {
	p, _ := newProvider(t, `C:\temp\img.png`)
	f := HDropFormat()
	f.Tymed = TymedHGlobal | TymedIStream

	m, err := p.FetchData(f)
	require.NoError(t, err)
	assert.Equal(t, TymedHGlobal, m.Tymed)
}

func TestDataProvider_FetchDataUnsupported(t *testing.T) {
	p, alloc := newProvider(t, `C:\temp\img.png`)

	testCases := []struct {
		name   string
		format FormatDescriptor
		code   HResult
	}{
		{"CF_UNICODETEXT", FormatDescriptor{Format: 13, Aspect: AspectContent, Index: -1, Tymed: TymedHGlobal}, DV_E_FORMATETC},
		{"registered format", FormatDescriptor{Format: 0xC0F0, Aspect: AspectContent, Index: -1, Tymed: TymedHGlobal}, DV_E_FORMATETC},
		{"thumbnail aspect", FormatDescriptor{Format: CF_HDROP, Aspect: 2, Index: -1, Tymed: TymedHGlobal}, DV_E_FORMATETC},
		{"page index", FormatDescriptor{Format: CF_HDROP, Aspect: AspectContent, Index: 7, Tymed: TymedHGlobal}, DV_E_FORMATETC},
		{"zero index", FormatDescriptor{Format: CF_HDROP, Aspect: AspectContent, Index: 0, Tymed: TymedHGlobal}, DV_E_FORMATETC},
		{"stream medium", FormatDescriptor{Format: CF_HDROP, Aspect: AspectContent, Index: -1, Tymed: TymedIStream}, DV_E_TYMED},
		{"file medium", FormatDescriptor{Format: CF_HDROP, Aspect: AspectContent, Index: -1, Tymed: TymedFile}, DV_E_TYMED},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := p.FetchData(tc.format)
			assert.ErrorIs(t, err, ErrUnsupportedFormat)
			assert.Equal(t, Medium{}, m)
			assert.Equal(t, tc.code, HResultOf(err))
			assert.Error(t, p.CanProvide(tc.format))
		})
	}
	assert.Zero(t, alloc.Live(), "rejected formats must not allocate")
}

func TestDataProvider_FetchDataAllocFailure(t *testing.T) {
	p, err := NewDataProvider(`C:\temp\img.png`, failingAllocator{})
	require.NoError(t, err)

	_, err = p.FetchData(HDropFormat())
	assert.ErrorIs(t, err, ErrOSCall)
	assert.Equal(t, E_OUTOFMEMORY, HResultOf(err))
}

func TestDataProvider_CanProvide(t *testing.T) {
	p, alloc := newProvider(t, `C:\temp\img.png`)
	assert.NoError(t, p.CanProvide(HDropFormat()))
	assert.Zero(t, alloc.Live())
}

func TestDataProvider_NotImplemented(t *testing.T) {
	p, _ := newProvider(t, `C:\temp\img.png`)

	_, err := p.GetPreferredFormat(HDropFormat())
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.ErrorIs(t, p.SupplyDataInto(HDropFormat(), Medium{}), ErrNotImplemented)
	assert.ErrorIs(t, p.SetData(HDropFormat(), Medium{}, true), ErrNotImplemented)
	formats, err := p.EnumerateFormats(1)
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.Empty(t, formats)
	_, err = p.Advise(HDropFormat(), 0)
	assert.ErrorIs(t, err, ErrNotImplemented)
	assert.ErrorIs(t, p.Unadvise(1), ErrNotImplemented)
	assert.ErrorIs(t, p.EnumerateAdvisories(), ErrNotImplemented)
	assert.Equal(t, E_NOTIMPL, HResultOf(p.EnumerateAdvisories()))
}

func TestDataProvider_QueryCapability(t *testing.T) {
	p, _ := newProvider(t, `C:\temp\img.png`)
	require.Equal(t, uint32(1), p.References())

	require.NoError(t, p.QueryCapability(CapUnknown))
	require.NoError(t, p.QueryCapability(CapDataObject))
	assert.Equal(t, uint32(3), p.References())

	err := p.QueryCapability(CapDropSource)
	assert.ErrorIs(t, err, ErrNoInterface)
	assert.Equal(t, E_NOINTERFACE, HResultOf(err))
	assert.Equal(t, uint32(3), p.References(), "failed query must not add a reference")

	p.ReleaseReference()
	p.ReleaseReference()
	assert.False(t, p.Destroyed())
	assert.Equal(t, uint32(0), p.ReleaseReference())
	assert.True(t, p.Destroyed())
}

func TestDataProvider_QueryCapabilityAfterDestroy(t *testing.T) {
	p, _ := newProvider(t, `C:\temp\img.png`)
	require.Equal(t, uint32(0), p.ReleaseReference())

	for _, c := range []Capability{CapUnknown, CapDataObject} {
		err := p.QueryCapability(c)
		assert.ErrorIs(t, err, ErrNoInterface, "%s", c)
		assert.Equal(t, E_NOINTERFACE, HResultOf(err))
	}
	assert.Equal(t, uint32(0), p.References())
	assert.True(t, p.Destroyed())
}

func TestDataProvider_ReferenceCounting(t *testing.T) {
	// Each step is +1 (acquire) or -1 (release) applied after construction.
	sequences := [][]int{
		{-1},
		{+1, -1, -1},
		{+1, +1, -1, -1, -1},
		{+1, -1, +1, -1, -1},
	}

	for _, seq := range sequences {
		p, _ := newProvider(t, `C:\temp\img.png`)
		destroyed := 0
		p.OnDestroy(func() { destroyed++ })

		net := 1
		for i, step := range seq {
			if step > 0 {
				p.AcquireReference()
			} else {
				p.ReleaseReference()
			}
			net += step
			if net > 0 {
				assert.False(t, p.Destroyed(), "seq %v step %d", seq, i)
			}
		}
		assert.True(t, p.Destroyed(), "seq %v", seq)
		assert.Equal(t, 1, destroyed, "destroy hook must run once for %v", seq)

		// A destroyed object cannot be revived.
		assert.Equal(t, uint32(0), p.AcquireReference())
		assert.Equal(t, uint32(0), p.ReleaseReference())
		assert.Equal(t, 1, destroyed)
	}
}

func TestDataProvider_OnDestroyAfterDestroy(t *testing.T) {
	p, _ := newProvider(t, `C:\temp\img.png`)
	p.ReleaseReference()

	ran := false
	p.OnDestroy(func() { ran = true })
	assert.True(t, ran)
}

func TestHResultOf(t *testing.T) {
	assert.Equal(t, S_OK, HResultOf(nil))
	assert.Equal(t, E_FAIL, HResultOf(errors.New("boom")))
	assert.Equal(t, E_INVALIDARG, HResultOf(ErrInvalidArgument))
	assert.Equal(t, DRAGDROP_S_DROP, HResultOf(&OSError{Op: "x", Code: DRAGDROP_S_DROP}))
}
