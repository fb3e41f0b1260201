//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package tty

import (
	"os"

	"golang.org/x/sys/unix"
)

// FlushStdin reads and discards whatever is pending on stdin, such as the
// reply to the background-color query made before the program starts.
func FlushStdin() {
	//nolint:gosec // stdin fd fits in an int
	fd := int(os.Stdin.Fd())

	saved, err := unix.IoctlGetTermios(fd, unix.TIOCGETA)
	if err != nil {
		return
	}

	polling := *saved
	polling.Lflag &^= unix.ECHO | unix.ICANON
	polling.Cc[unix.VMIN] = 0
	polling.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TIOCSETA, &polling); err != nil {
		return
	}
	defer func() { _ = unix.IoctlSetTermios(fd, unix.TIOCSETA, saved) }()

	buf := make([]byte, 256)
	for {
		if n, err := unix.Read(fd, buf); n <= 0 || err != nil {
			return
		}
	}
}
