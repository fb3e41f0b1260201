//go:build !(darwin || dragonfly || freebsd || netbsd || openbsd)

package tty

// FlushStdin is a no-op on platforms without TIOCFLUSH.
func FlushStdin() {}
