package browse

import (
	"bufio"
	"unicode"
)

// Key is a decoded keystroke.
type Key int

// Keys understood by the browser.
const (
	KeyUnknown Key = iota
	KeyRune
	KeyUp
	KeyDown
	KeyPageUp
	KeyPageDown
	KeyEnter
	KeyBackspace
	KeyEscape
	KeyInterrupt
)

// Raw terminal bytes.
const (
	byteCtrlC     = 3
	byteBackspace = 8
	byteEscape    = 27
	byteDelete    = 127
)

// ReadKey decodes one keystroke from a terminal in raw mode.
// Arrow and paging keys arrive as ANSI CSI sequences (ESC [ A). A lone ESC
// with nothing buffered behind it is the Escape key.
func ReadKey(r *bufio.Reader) (Key, rune, error) {
	c, _, err := r.ReadRune()
	if err != nil {
		return KeyUnknown, 0, err
	}

	switch c {
	case '\r', '\n':
		return KeyEnter, 0, nil
	case byteBackspace, byteDelete:
		return KeyBackspace, 0, nil
	case byteCtrlC:
		return KeyInterrupt, 0, nil
	case byteEscape:
		return readEscape(r)
	}
	if unicode.IsPrint(c) {
		return KeyRune, c, nil
	}
	return KeyUnknown, c, nil
}

func readEscape(r *bufio.Reader) (Key, rune, error) {
	if r.Buffered() == 0 {
		return KeyEscape, 0, nil
	}
	// Anything but '[' is the next keystroke, typed right after Escape.
	if next, err := r.Peek(1); err != nil || next[0] != '[' {
		return KeyEscape, 0, nil //nolint:nilerr // nothing to decode behind Escape
	}
	_, _ = r.ReadByte()
	if r.Buffered() == 0 {
		return KeyUnknown, 0, nil
	}
	code, err := r.ReadByte()
	if err != nil {
		return KeyUnknown, 0, nil //nolint:nilerr // same as above
	}
	switch code {
	case 'A':
		return KeyUp, 0, nil
	case 'B':
		return KeyDown, 0, nil
	case '5', '6':
		// Page Up / Page Down end with '~'.
		if next, err := r.ReadByte(); err != nil || next != '~' {
			return KeyUnknown, 0, nil //nolint:nilerr // unknown sequence
		}
		if code == '5' {
			return KeyPageUp, 0, nil
		}
		return KeyPageDown, 0, nil
	}
	return KeyUnknown, 0, nil
}
