//go:build windows

package dragdrop

// OLE binding: exposes DataProvider and FeedbackSource to the shell as
// IDataObject and IDropSource. Each COM object is a Go struct whose first
// field points at a vtable of windows.NewCallback trampolines. The structs are
// kept reachable in the live maps until their reference count reaches zero, so
// the GC never frees memory the shell still points at.

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/justyntemme/dragexport/internal/debug"
)

var (
	ole32    = windows.NewLazySystemDLL("ole32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procOleInitialize   = ole32.NewProc("OleInitialize")
	procOleUninitialize = ole32.NewProc("OleUninitialize")
	procDoDragDrop      = ole32.NewProc("DoDragDrop")

	procGlobalAlloc  = kernel32.NewProc("GlobalAlloc")
	procGlobalLock   = kernel32.NewProc("GlobalLock")
	procGlobalUnlock = kernel32.NewProc("GlobalUnlock")
	procGlobalFree   = kernel32.NewProc("GlobalFree")
)

const (
	GHND = 0x0042 // GMEM_MOVEABLE | GMEM_ZEROINIT

	RPC_E_CHANGED_MODE HResult = 0x80010106
)

var (
	iidIUnknown    = windows.GUID{Data1: 0x00000000, Data4: [8]byte{0xC0, 0, 0, 0, 0, 0, 0, 0x46}}
	iidIDataObject = windows.GUID{Data1: 0x0000010E, Data4: [8]byte{0xC0, 0, 0, 0, 0, 0, 0, 0x46}}
	iidIDropSource = windows.GUID{Data1: 0x00000121, Data4: [8]byte{0xC0, 0, 0, 0, 0, 0, 0, 0x46}}
)

func capabilityForIID(iid *windows.GUID) (Capability, bool) {
	switch *iid {
	case iidIUnknown:
		return CapUnknown, true
	case iidIDataObject:
		return CapDataObject, true
	case iidIDropSource:
		return CapDropSource, true
	}
	return 0, false
}

// formatEtc is FORMATETC.
type formatEtc struct {
	cfFormat uint16
	ptd      uintptr
	dwAspect uint32
	lindex   int32
	tymed    uint32
}

func (f *formatEtc) descriptor() FormatDescriptor {
	return FormatDescriptor{
		Format: ClipFormat(f.cfFormat),
		Aspect: Aspect(f.dwAspect),
		Index:  f.lindex,
		Tymed:  Tymed(f.tymed),
	}
}

// stgMedium is STGMEDIUM with the union collapsed to the HGLOBAL member.
type stgMedium struct {
	tymed          uint32
	hGlobal        uintptr
	pUnkForRelease uintptr
}

type dataObjectVtbl struct {
	QueryInterface        uintptr
	AddRef                uintptr
	Release               uintptr
	GetData               uintptr
	GetDataHere           uintptr
	QueryGetData          uintptr
	GetCanonicalFormatEtc uintptr
	SetData               uintptr
	EnumFormatEtc         uintptr
	DAdvise               uintptr
	DUnadvise             uintptr
	EnumDAdvise           uintptr
}

type dropSourceVtbl struct {
	QueryInterface    uintptr
	AddRef            uintptr
	Release           uintptr
	QueryContinueDrag uintptr
	GiveFeedback      uintptr
}

type comDataObject struct {
	vtbl     *dataObjectVtbl
	provider *DataProvider
}

type comDropSource struct {
	vtbl   *dropSourceVtbl
	source *FeedbackSource
}

var (
	vtblOnce       sync.Once
	dataVtbl       *dataObjectVtbl
	sourceVtbl     *dropSourceVtbl
	liveMu         sync.Mutex
	liveDataObject = make(map[uintptr]*comDataObject)
	liveDropSource = make(map[uintptr]*comDropSource)
)

// initVtables creates the callbacks once; windows.NewCallback slots are a
// limited, never-freed resource.
func initVtables() {
	vtblOnce.Do(func() {
		dataVtbl = &dataObjectVtbl{
			QueryInterface:        windows.NewCallback(dataQueryInterface),
			AddRef:                windows.NewCallback(dataAddRef),
			Release:               windows.NewCallback(dataRelease),
			GetData:               windows.NewCallback(dataGetData),
			GetDataHere:           windows.NewCallback(dataGetDataHere),
			QueryGetData:          windows.NewCallback(dataQueryGetData),
			GetCanonicalFormatEtc: windows.NewCallback(dataGetCanonicalFormatEtc),
			SetData:               windows.NewCallback(dataSetData),
			EnumFormatEtc:         windows.NewCallback(dataEnumFormatEtc),
			DAdvise:               windows.NewCallback(dataDAdvise),
			DUnadvise:             windows.NewCallback(dataDUnadvise),
			EnumDAdvise:           windows.NewCallback(dataEnumDAdvise),
		}
		sourceVtbl = &dropSourceVtbl{
			QueryInterface:    windows.NewCallback(sourceQueryInterface),
			AddRef:            windows.NewCallback(sourceAddRef),
			Release:           windows.NewCallback(sourceRelease),
			QueryContinueDrag: windows.NewCallback(sourceQueryContinueDrag),
			GiveFeedback:      windows.NewCallback(sourceGiveFeedback),
		}
	})
}

// wrapDataObject returns the IDataObject pointer for p. It borrows the
// caller's reference rather than adding one.
func wrapDataObject(p *DataProvider) uintptr {
	obj := &comDataObject{vtbl: dataVtbl, provider: p}
	ptr := uintptr(unsafe.Pointer(obj))
	liveMu.Lock()
	liveDataObject[ptr] = obj
	liveMu.Unlock()
	p.OnDestroy(func() {
		liveMu.Lock()
		delete(liveDataObject, ptr)
		liveMu.Unlock()
		debug.Log(debug.OLE, "data object %#x destroyed", ptr)
	})
	return ptr
}

func wrapDropSource(s *FeedbackSource) uintptr {
	obj := &comDropSource{vtbl: sourceVtbl, source: s}
	ptr := uintptr(unsafe.Pointer(obj))
	liveMu.Lock()
	liveDropSource[ptr] = obj
	liveMu.Unlock()
	s.OnDestroy(func() {
		liveMu.Lock()
		delete(liveDropSource, ptr)
		liveMu.Unlock()
		debug.Log(debug.OLE, "drop source %#x destroyed", ptr)
	})
	return ptr
}

func lookupDataObject(this uintptr) *comDataObject {
	liveMu.Lock()
	defer liveMu.Unlock()
	return liveDataObject[this]
}

func lookupDropSource(this uintptr) *comDropSource {
	liveMu.Lock()
	defer liveMu.Unlock()
	return liveDropSource[this]
}

func hr(h HResult) uintptr { return uintptr(h) }

// queryInterface answers for either object type; query is the Go object's
// QueryCapability.
func queryInterface(this, riid, ppv uintptr, query func(Capability) error) uintptr {
	if ppv == 0 {
		return hr(E_POINTER)
	}
	out := (*uintptr)(unsafe.Pointer(ppv))
	*out = 0
	if riid == 0 {
		return hr(E_POINTER)
	}
	c, ok := capabilityForIID((*windows.GUID)(unsafe.Pointer(riid)))
	if !ok {
		return hr(E_NOINTERFACE)
	}
	if err := query(c); err != nil {
		return hr(HResultOf(err))
	}
	*out = this
	return hr(S_OK)
}

// IDataObject

func dataQueryInterface(this, riid, ppv uintptr) uintptr {
	obj := lookupDataObject(this)
	if obj == nil {
		return hr(E_UNEXPECTED)
	}
	return queryInterface(this, riid, ppv, obj.provider.QueryCapability)
}

func dataAddRef(this uintptr) uintptr {
	if obj := lookupDataObject(this); obj != nil {
		return uintptr(obj.provider.AcquireReference())
	}
	return 0
}

func dataRelease(this uintptr) uintptr {
	if obj := lookupDataObject(this); obj != nil {
		return uintptr(obj.provider.ReleaseReference())
	}
	return 0
}

func dataGetData(this, pformatetc, pmedium uintptr) uintptr {
	obj := lookupDataObject(this)
	if obj == nil {
		return hr(E_UNEXPECTED)
	}
	if pformatetc == 0 || pmedium == 0 {
		return hr(E_INVALIDARG)
	}
	fe := (*formatEtc)(unsafe.Pointer(pformatetc))
	m, err := obj.provider.FetchData(fe.descriptor())
	if err != nil {
		return hr(HResultOf(err))
	}
	med := (*stgMedium)(unsafe.Pointer(pmedium))
	med.tymed = uint32(m.Tymed)
	med.hGlobal = m.Handle
	med.pUnkForRelease = 0
	return hr(S_OK)
}

func dataGetDataHere(this, pformatetc, pmedium uintptr) uintptr {
	obj := lookupDataObject(this)
	if obj == nil {
		return hr(E_UNEXPECTED)
	}
	return hr(HResultOf(obj.provider.SupplyDataInto(FormatDescriptor{}, Medium{})))
}

func dataQueryGetData(this, pformatetc uintptr) uintptr {
	obj := lookupDataObject(this)
	if obj == nil {
		return hr(E_UNEXPECTED)
	}
	if pformatetc == 0 {
		return hr(E_INVALIDARG)
	}
	fe := (*formatEtc)(unsafe.Pointer(pformatetc))
	return hr(HResultOf(obj.provider.CanProvide(fe.descriptor())))
}

func dataGetCanonicalFormatEtc(this, pformatetcIn, pformatetcOut uintptr) uintptr {
	obj := lookupDataObject(this)
	if obj == nil {
		return hr(E_UNEXPECTED)
	}
	if pformatetcOut != 0 {
		(*formatEtc)(unsafe.Pointer(pformatetcOut)).ptd = 0
	}
	_, err := obj.provider.GetPreferredFormat(FormatDescriptor{})
	return hr(HResultOf(err))
}

func dataSetData(this, pformatetc, pmedium, fRelease uintptr) uintptr {
	obj := lookupDataObject(this)
	if obj == nil {
		return hr(E_UNEXPECTED)
	}
	return hr(HResultOf(obj.provider.SetData(FormatDescriptor{}, Medium{}, fRelease != 0)))
}

func dataEnumFormatEtc(this, direction, ppenum uintptr) uintptr {
	obj := lookupDataObject(this)
	if obj == nil {
		return hr(E_UNEXPECTED)
	}
	if ppenum != 0 {
		*(*uintptr)(unsafe.Pointer(ppenum)) = 0
	}
	_, err := obj.provider.EnumerateFormats(uint32(direction))
	return hr(HResultOf(err))
}

func dataDAdvise(this, pformatetc, advf, sink, pconn uintptr) uintptr {
	obj := lookupDataObject(this)
	if obj == nil {
		return hr(E_UNEXPECTED)
	}
	if pconn != 0 {
		*(*uint32)(unsafe.Pointer(pconn)) = 0
	}
	_, err := obj.provider.Advise(FormatDescriptor{}, uint32(advf))
	return hr(HResultOf(err))
}

func dataDUnadvise(this, conn uintptr) uintptr {
	obj := lookupDataObject(this)
	if obj == nil {
		return hr(E_UNEXPECTED)
	}
	return hr(HResultOf(obj.provider.Unadvise(uint32(conn))))
}

func dataEnumDAdvise(this, ppenum uintptr) uintptr {
	obj := lookupDataObject(this)
	if obj == nil {
		return hr(E_UNEXPECTED)
	}
	if ppenum != 0 {
		*(*uintptr)(unsafe.Pointer(ppenum)) = 0
	}
	return hr(HResultOf(obj.provider.EnumerateAdvisories()))
}

// IDropSource

func sourceQueryInterface(this, riid, ppv uintptr) uintptr {
	obj := lookupDropSource(this)
	if obj == nil {
		return hr(E_UNEXPECTED)
	}
	return queryInterface(this, riid, ppv, obj.source.QueryCapability)
}

func sourceAddRef(this uintptr) uintptr {
	if obj := lookupDropSource(this); obj != nil {
		return uintptr(obj.source.AcquireReference())
	}
	return 0
}

func sourceRelease(this uintptr) uintptr {
	if obj := lookupDropSource(this); obj != nil {
		return uintptr(obj.source.ReleaseReference())
	}
	return 0
}

func sourceQueryContinueDrag(this, fEscapePressed, grfKeyState uintptr) uintptr {
	obj := lookupDropSource(this)
	if obj == nil {
		return hr(DRAGDROP_S_CANCEL)
	}
	return hr(obj.source.ShouldContinueDrag(fEscapePressed != 0, KeyState(grfKeyState)).HResult())
}

func sourceGiveFeedback(this, dwEffect uintptr) uintptr {
	obj := lookupDropSource(this)
	if obj == nil {
		return hr(DRAGDROP_S_USEDEFAULTCURSORS)
	}
	return hr(obj.source.ProvideFeedback(Effect(dwEffect)))
}

// globalMemory allocates HGLOBAL blocks. The drop target frees them through
// ReleaseStgMedium.
type globalMemory struct{}

// NewNativeAllocator returns the allocator matching NewNativeLoop.
func NewNativeAllocator() GlobalAllocator { return globalMemory{} }

func (globalMemory) Alloc(data []byte) (uintptr, error) {
	h, _, _ := procGlobalAlloc.Call(GHND, uintptr(len(data)))
	if h == 0 {
		return 0, &OSError{Op: "GlobalAlloc", Code: E_OUTOFMEMORY}
	}
	p, _, _ := procGlobalLock.Call(h)
	if p == 0 {
		procGlobalFree.Call(h)
		return 0, &OSError{Op: "GlobalLock", Code: E_FAIL}
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(p)), len(data)), data)
	procGlobalUnlock.Call(h)
	return h, nil
}

func (globalMemory) Free(h uintptr) error {
	if r, _, _ := procGlobalFree.Call(h); r != 0 {
		return &OSError{Op: "GlobalFree", Code: E_FAIL}
	}
	return nil
}

type oleLoop struct{}

// NewNativeLoop returns the OLE DoDragDrop loop.
func NewNativeLoop() DragLoop {
	cgoEnabled()
	initVtables()
	return oleLoop{}
}

// Run must own its OS thread for the whole call: OLE is initialized per
// thread and DoDragDrop pumps that thread's messages until the drop.
func (oleLoop) Run(data *DataProvider, source *FeedbackSource, allowed Effect) LoopResult {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	r, _, _ := procOleInitialize.Call(0)
	if init := HResult(uint32(r)); init.Failed() {
		if init == RPC_E_CHANGED_MODE {
			debug.Warn(debug.OLE, "OleInitialize: thread already joined the multithreaded apartment")
		} else {
			debug.Warn(debug.OLE, "OleInitialize failed: %s", init)
		}
		return LoopResult{Code: init, Err: fmt.Errorf("OleInitialize: %w", ErrOSCall)}
	}
	defer procOleUninitialize.Call()

	dataPtr := wrapDataObject(data)
	sourcePtr := wrapDropSource(source)
	debug.Log(debug.OLE, "DoDragDrop data=%#x source=%#x allowed=%s", dataPtr, sourcePtr, allowed)

	var effect uint32
	r, _, _ = procDoDragDrop.Call(dataPtr, sourcePtr, uintptr(allowed), uintptr(unsafe.Pointer(&effect)))
	res := LoopResult{Code: HResult(uint32(r)), Effect: Effect(effect)}
	debug.Log(debug.OLE, "DoDragDrop returned %s effect=%s", res.Code, res.Effect)
	return res
}
