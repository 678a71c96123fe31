package dragdrop

import "fmt"

// HResult is a COM result code. Negative values (high bit set) are failures.
type HResult uint32

const (
	S_OK                         HResult = 0x00000000
	S_FALSE                      HResult = 0x00000001
	E_NOTIMPL                    HResult = 0x80004001
	E_NOINTERFACE                HResult = 0x80004002
	E_POINTER                    HResult = 0x80004003
	E_FAIL                       HResult = 0x80004005
	E_UNEXPECTED                 HResult = 0x8000FFFF
	E_OUTOFMEMORY                HResult = 0x8007000E
	E_INVALIDARG                 HResult = 0x80070057
	DV_E_FORMATETC               HResult = 0x80040064
	DV_E_TYMED                   HResult = 0x80040069
	DRAGDROP_S_DROP              HResult = 0x00040100
	DRAGDROP_S_CANCEL            HResult = 0x00040101
	DRAGDROP_S_USEDEFAULTCURSORS HResult = 0x00040102
)

// Failed reports whether the code is a failure code.
func (h HResult) Failed() bool {
	return h&0x80000000 != 0
}

func (h HResult) String() string {
	return fmt.Sprintf("0x%08X", uint32(h))
}
