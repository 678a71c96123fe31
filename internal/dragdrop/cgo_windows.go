//go:build windows

package dragdrop

// OLE calls the data object and drop source back on threads Go did not
// create. Without cgo linked in, windows.NewCallback cannot service those
// callbacks reliably. See: https://github.com/golang/go/issues/20823

/*
#include <windows.h>
*/
import "C"

// cgoEnabled forces cgo linking. NewNativeLoop calls it.
func cgoEnabled() bool {
	return C.int(1) == 1
}
