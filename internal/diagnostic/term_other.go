//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package diagnostic

func isTerminal(fd uintptr) bool {
	return false
}
