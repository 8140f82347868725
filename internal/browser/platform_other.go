//go:build !linux && !darwin && !windows

package browser

import "os/exec"

// platformOpen falls back to xdg-open on the BSDs and friends.
func platformOpen(path string) error {
	return exec.Command("xdg-open", path).Start()
}
