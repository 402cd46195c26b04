package session

// KeyKind identifies the kind of keystroke fed to a session.
type KeyKind uint8

const (
	// KeyChar types a printable character.
	KeyChar KeyKind = iota
	// KeyBackspace erases the character before the caret.
	KeyBackspace
	// KeyEnter consumes a line break.
	KeyEnter
)

// Key is a single keystroke.
type Key struct {
	Kind KeyKind
	Rune rune
}

// Char returns a KeyChar keystroke for r.
func Char(r rune) Key {
	return Key{Kind: KeyChar, Rune: r}
}

// Backspace returns a KeyBackspace keystroke.
func Backspace() Key {
	return Key{Kind: KeyBackspace}
}

// Enter returns a KeyEnter keystroke.
func Enter() Key {
	return Key{Kind: KeyEnter}
}
