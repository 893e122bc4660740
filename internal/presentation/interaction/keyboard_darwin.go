//go:build darwin

package interaction

import (
	"os"

	"golang.org/x/sys/unix"
)

const (
	ioctlGetTermios = unix.TIOCGETA
	ioctlSetTermios = unix.TIOCSETA
)

func (kr *KeyboardReader) enableRawMode() error {
	return kr.setRaw(int(os.Stdin.Fd()))
}

func (kr *KeyboardReader) disableRawMode() error {
	return kr.restore(int(os.Stdin.Fd()))
}
