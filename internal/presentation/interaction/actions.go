package interaction

// Action is what a key asks the live chart to do.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionPanLeft
	ActionPanRight
	ActionPageLeft
	ActionPageRight
	ActionHome
	ActionEnd
	ActionRefresh
	ActionTogglePause
	ActionToggleHelp
	ActionClearStore
)

func (a Action) String() string {
	switch a {
	case ActionQuit:
		return "quit"
	case ActionPanLeft:
		return "pan left"
	case ActionPanRight:
		return "pan right"
	case ActionPageLeft:
		return "page left"
	case ActionPageRight:
		return "page right"
	case ActionHome:
		return "home"
	case ActionEnd:
		return "end"
	case ActionRefresh:
		return "refresh"
	case ActionTogglePause:
		return "pause"
	case ActionToggleHelp:
		return "help"
	case ActionClearStore:
		return "clear store"
	}
	return "none"
}

// KeyHelp lists the bindings shown on the help screen, in display order.
var KeyHelp = [][2]string{
	{"←/h", "pan left"},
	{"→/l", "pan right"},
	{"H/L", "pan one screen"},
	{"0/Home", "jump to start"},
	{"$/End", "jump to end"},
	{"r", "reload files"},
	{"p", "pause updates"},
	{"x", "clear stored rows"},
	{"?", "toggle help"},
	{"q/Esc", "quit"},
}

// ActionFor maps a key event to an action.
func ActionFor(ev KeyEvent) Action {
	switch ev.Type {
	case KeyLeft:
		return ActionPanLeft
	case KeyRight:
		return ActionPanRight
	case KeyHome:
		return ActionHome
	case KeyEnd:
		return ActionEnd
	case KeyEscape:
		return ActionQuit
	case KeyChar:
		switch ev.Key {
		case 'q', 'Q', 3:
			return ActionQuit
		case 'h':
			return ActionPanLeft
		case 'l':
			return ActionPanRight
		case 'H':
			return ActionPageLeft
		case 'L':
			return ActionPageRight
		case '0':
			return ActionHome
		case '$':
			return ActionEnd
		case 'r', 'R':
			return ActionRefresh
		case 'p', 'P':
			return ActionTogglePause
		case '?':
			return ActionToggleHelp
		case 'x', 'X':
			return ActionClearStore
		}
	}
	return ActionNone
}
