package safety

// Level is the urgency tier of a goal, most urgent first.
type Level string

const (
	LevelOverdue  Level = "overdue"
	LevelCritical Level = "critical"
	LevelUrgent   Level = "urgent"
	LevelSoon     Level = "soon"
	LevelSafe     Level = "safe"
	LevelBuffer   Level = "buffer"
)

// Levels lists every level from most to least urgent.
var Levels = []Level{LevelOverdue, LevelCritical, LevelUrgent, LevelSoon, LevelSafe, LevelBuffer}

// Color is the text color token the presentation layer renders the level with.
func (l Level) Color() string {
	switch l {
	case LevelOverdue:
		return "text-black"
	case LevelCritical:
		return "text-red-600"
	case LevelUrgent:
		return "text-orange-600"
	case LevelSoon:
		return "text-blue-600"
	case LevelSafe:
		return "text-green-600"
	default:
		return "text-green-700"
	}
}

// Background is the matching background color token.
func (l Level) Background() string {
	switch l {
	case LevelOverdue:
		return "bg-black"
	case LevelCritical:
		return "bg-red-500"
	case LevelUrgent:
		return "bg-orange-500"
	case LevelSoon:
		return "bg-blue-500"
	case LevelSafe:
		return "bg-green-500"
	default:
		return "bg-green-400"
	}
}
