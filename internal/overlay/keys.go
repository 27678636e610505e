// Package overlay draws the touch zones onto the mirrored camera image and
// turns window keystrokes into operator commands.
package overlay

// Command is an operator request from the keyboard.
type Command int

const (
	None Command = iota
	IncreaseRadii
	DecreaseRadii
	ToggleSkeleton
	Quit
)

const keyEscape = 27

func (c Command) String() string {
	switch c {
	case IncreaseRadii:
		return "increase"
	case DecreaseRadii:
		return "decrease"
	case ToggleSkeleton:
		return "skeleton"
	case Quit:
		return "quit"
	default:
		return "none"
	}
}

// CommandForKey maps a key code from the window to a command. Only the
// low byte is significant.
func CommandForKey(key int) Command {
	if key < 0 {
		return None
	}
	switch key & 0xFF {
	case '+', '=':
		return IncreaseRadii
	case '-':
		return DecreaseRadii
	case 's', 'S':
		return ToggleSkeleton
	case keyEscape:
		return Quit
	default:
		return None
	}
}
