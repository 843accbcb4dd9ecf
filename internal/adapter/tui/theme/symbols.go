package theme

import (
	"os"
	"strings"
)

// ASCIIEnv forces ASCII symbols when set to "1" or "true".
const ASCIIEnv = "INFERDESK_ASCII_SYMBOLS"

// symbol binds one Symbol* variable to its two renderings.
type symbol struct {
	target       *string
	glyph, ascii string
}

var symbols = []symbol{
	{&SymbolSuccess, "\u2713", "[OK]"},  // ✓
	{&SymbolError, "\u2717", "[ERR]"},   // ✗
	{&SymbolSpinner, "\u23F3", "[...]"}, // ⏳
	{&SymbolArrowR, "\u2192", "->"},     // →
	{&SymbolBullet, "\u2022", "*"},      // •
}

// ASCIIRequested reports whether ASCIIEnv asks for plain symbols.
func ASCIIRequested() bool {
	v := strings.TrimSpace(os.Getenv(ASCIIEnv))
	return v == "1" || strings.EqualFold(v, "true")
}

// InitSymbols assigns every Symbol* variable from the environment.
// Tests call it again after changing ASCIIEnv.
func InitSymbols() {
	ascii := ASCIIRequested()
	for _, s := range symbols {
		if ascii {
			*s.target = s.ascii
		} else {
			*s.target = s.glyph
		}
	}
}

func init() {
	InitSymbols()
}
