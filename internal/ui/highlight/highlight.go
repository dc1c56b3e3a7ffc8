// internal/ui/highlight/highlight.go
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// JSON returns src with terminal syntax highlighting. On any lexer or
// formatter error the input comes back unstyled.
func JSON(src string) string {
	var b strings.Builder
	if err := quick.Highlight(&b, src, "json", "terminal256", "nord"); err != nil {
		return src
	}
	return b.String()
}
