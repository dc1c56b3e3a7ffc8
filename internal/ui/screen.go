// internal/ui/screen.go
// Screen enum, navigation hierarchy and the go-to-top chord.
package ui

// Screen identifies which list (or view) owns the display.
type Screen int

const (
	ScreenConnections Screen = iota
	ScreenDatabases
	ScreenCollections
	ScreenDocuments
	ScreenDocumentView
	ScreenSavedQueries
	ScreenSavedAggregations
	ScreenSaveQueryScope
	ScreenSaveAggregationScope
	ScreenAddConnectionScope
	numScreens
)

func (s Screen) String() string {
	switch s {
	case ScreenConnections:
		return "connections"
	case ScreenDatabases:
		return "databases"
	case ScreenCollections:
		return "collections"
	case ScreenDocuments:
		return "documents"
	case ScreenDocumentView:
		return "document"
	case ScreenSavedQueries:
		return "saved queries"
	case ScreenSavedAggregations:
		return "saved aggregations"
	case ScreenSaveQueryScope:
		return "save query"
	case ScreenSaveAggregationScope:
		return "save aggregation"
	case ScreenAddConnectionScope:
		return "add connection"
	default:
		return "unknown"
	}
}

// parent returns the screen backward navigation pops to. Connections has
// no parent and returns itself.
func (s Screen) parent() Screen {
	switch s {
	case ScreenDatabases:
		return ScreenConnections
	case ScreenCollections:
		return ScreenDatabases
	case ScreenDocuments:
		return ScreenCollections
	case ScreenDocumentView:
		return ScreenDocuments
	case ScreenSavedQueries, ScreenSavedAggregations,
		ScreenSaveQueryScope, ScreenSaveAggregationScope:
		return ScreenDocuments
	case ScreenAddConnectionScope:
		return ScreenConnections
	default:
		return ScreenConnections
	}
}

// sideScreen reports whether s branches off the hierarchy; side screens
// have their selection reset to the first row when left.
func (s Screen) sideScreen() bool {
	switch s {
	case ScreenSavedQueries, ScreenSavedAggregations,
		ScreenSaveQueryScope, ScreenSaveAggregationScope,
		ScreenAddConnectionScope:
		return true
	}
	return false
}

// chordState is the tiny state machine behind the gg chord. Pressing g
// while idle arms it without navigating; a second g jumps to the top;
// any other key disarms it without side effect.
type chordState int

const (
	chordIdle chordState = iota
	chordAwaitingSecondPress
)
