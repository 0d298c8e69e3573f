package colors

type Color int

// The ANSI codes used to colorize log output
// Source: https://github.com/rs/zerolog/blob/4fff5db29c3403bc26dee9895e12a108aacc0203/console.go
const (
	// RED is the ANSI code for red
	RED Color = 31
	// GREEN is the ANSI code for green
	GREEN Color = 32
	// YELLOW is the ANSI code for yellow
	YELLOW Color = 33
	// BLUE is the ANSI code for blue
	BLUE Color = 34
	// CYAN is the ANSI code for cyan
	CYAN Color = 36
	// BOLD is the ANSI code for bold text
	BOLD Color = 1
)

// This enum is to identify special unicode characters that will be used for pretty console output
const (
	// LEFT_ARROW is the unicode string for a left arrow glyph
	LEFT_ARROW = "⇾"
)
