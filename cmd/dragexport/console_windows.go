//go:build windows

package main

import "golang.org/x/sys/windows"

// manageConsole handles the console window visibility on Windows.
// Unless keep is set, it detaches the process from its console so a window
// launched from Explorer does not leave a console behind.
func manageConsole(keep bool) {
	if keep {
		return
	}
	windows.NewLazySystemDLL("kernel32.dll").NewProc("FreeConsole").Call()
}
