//go:build windows

package app

import "os/exec"

// platformOpen hands the file to its registered viewer without going through
// cmd.exe.
func platformOpen(path string) error {
	return exec.Command("rundll32", "url.dll,FileProtocolHandler", path).Start()
}
