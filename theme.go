package diffcard

// Color is a hex color code such as "#61afef".
type Color string

// Palette is the set of colors a theme draws with.
type Palette struct {
	// Diff colors
	Added   Color
	Deleted Color
	Context Color
	Muted   Color
	Header  Color

	// Surfaces
	Background Color
	Foreground Color

	// Action tones and receipt statuses
	Primary Color
	Danger  Color
	Success Color
	Warning Color

	// Syntax colors
	Keyword  Color
	Comment  Color
	String   Color
	Number   Color
	Operator Color
	Builtin  Color
	Function Color
	Name     Color
}
