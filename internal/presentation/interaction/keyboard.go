// Package interaction turns raw terminal input into chart actions.
package interaction

import (
	"os"

	"golang.org/x/sys/unix"
)

// KeyboardReader handles keyboard input in raw mode
type KeyboardReader struct {
	oldState *unix.Termios
	input    chan KeyEvent
	stop     chan struct{}
}

// KeyEvent represents a keyboard event
type KeyEvent struct {
	Key  rune
	Type KeyType
}

// KeyType represents the type of key pressed
type KeyType int

const (
	KeyChar KeyType = iota
	KeyEscape
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
)

// NewKeyboardReader puts stdin into raw mode and starts reading keys.
func NewKeyboardReader() (*KeyboardReader, error) {
	kr := &KeyboardReader{
		input: make(chan KeyEvent, 10),
		stop:  make(chan struct{}),
	}

	if err := kr.enableRawMode(); err != nil {
		return nil, err
	}

	go kr.readInput()
	return kr, nil
}

// readInput reads keyboard input in a goroutine
func (kr *KeyboardReader) readInput() {
	buf := make([]byte, 8)

	for {
		select {
		case <-kr.stop:
			return
		default:
			n, err := os.Stdin.Read(buf)
			if err != nil || n == 0 {
				continue
			}

			event := parseInput(buf[:n])
			if event != nil {
				select {
				case kr.input <- *event:
				case <-kr.stop:
					return
				}
			}
		}
	}
}

// parseInput decodes one read from the terminal: a plain character, a bare
// escape, or a CSI/SS3 sequence for the arrow, Home and End keys.
func parseInput(buf []byte) *KeyEvent {
	if len(buf) == 0 {
		return nil
	}

	// Handle Ctrl+C
	if buf[0] == 3 {
		return &KeyEvent{Key: 3, Type: KeyChar}
	}

	if buf[0] != 27 {
		return &KeyEvent{Key: rune(buf[0]), Type: KeyChar}
	}
	if len(buf) == 1 {
		return &KeyEvent{Key: 27, Type: KeyEscape}
	}
	if len(buf) < 3 || (buf[1] != '[' && buf[1] != 'O') {
		return nil
	}

	switch buf[2] {
	case 'D':
		return &KeyEvent{Type: KeyLeft}
	case 'C':
		return &KeyEvent{Type: KeyRight}
	case 'A':
		return &KeyEvent{Type: KeyUp}
	case 'B':
		return &KeyEvent{Type: KeyDown}
	case 'H':
		return &KeyEvent{Type: KeyHome}
	case 'F':
		return &KeyEvent{Type: KeyEnd}
	case '1', '7':
		if len(buf) >= 4 && buf[3] == '~' {
			return &KeyEvent{Type: KeyHome}
		}
	case '4', '8':
		if len(buf) >= 4 && buf[3] == '~' {
			return &KeyEvent{Type: KeyEnd}
		}
	}
	return nil
}

// Events returns the keyboard event channel
func (kr *KeyboardReader) Events() <-chan KeyEvent {
	return kr.input
}

// Close stops the keyboard reader and restores terminal
func (kr *KeyboardReader) Close() error {
	close(kr.stop)
	return kr.disableRawMode()
}
