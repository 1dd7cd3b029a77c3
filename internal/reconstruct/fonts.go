package reconstruct

import (
	"os"
	"path/filepath"
	"unicode"

	"github.com/ibatulanandjp/procrai/internal/logger"
)

// Font is a loadable TTF font resource
type Font struct {
	Family string
	Path   string
}

// scriptFont binds a writing script to its detection ranges and the font
// file expected under the font directory. Detection walks the table in
// order, so Japanese kana outranks plain Han and a mixed ja/zh text gets
// the Japanese font.
type scriptFont struct {
	script string
	ranges []*unicode.RangeTable
	family string
	file   string
}

var scriptFonts = []scriptFont{
	{"japanese", []*unicode.RangeTable{unicode.Hiragana, unicode.Katakana}, "NotoSansJP", "NotoSansJP-Regular.ttf"},
	{"korean", []*unicode.RangeTable{unicode.Hangul}, "NotoSansKR", "NotoSansKR-Regular.ttf"},
	{"chinese", []*unicode.RangeTable{unicode.Han}, "NotoSansSC", "NotoSansSC-Regular.ttf"},
	{"cyrillic", []*unicode.RangeTable{unicode.Cyrillic}, "NotoSans", "NotoSans-Regular.ttf"},
	{"arabic", []*unicode.RangeTable{unicode.Arabic}, "NotoSansArabic", "NotoSansArabic-Regular.ttf"},
	{"greek", []*unicode.RangeTable{unicode.Greek}, "NotoSans", "NotoSans-Regular.ttf"},
}

const defaultScript = "latin"

// DetectScript returns the script key for the text, or the default script
// when no table entry matches any code point.
func DetectScript(text string) string {
	for _, sf := range scriptFonts {
		for _, r := range text {
			if unicode.In(r, sf.ranges...) {
				return sf.script
			}
		}
	}
	return defaultScript
}

// FontRegistry resolves text scripts to font resources rooted in one font
// directory. The default font must exist; scripts with no font on disk
// fall back to it with degraded glyph coverage.
type FontRegistry struct {
	dir      string
	fallback Font
}

// defaultFontFile is the font serving the default (Latin) script
const defaultFontFile = "NotoSans-Regular.ttf"

// NewFontRegistry creates a registry over the given directory. It fails
// with FONT_MISSING when the default font is absent.
func NewFontRegistry(dir string) (*FontRegistry, error) {
	path := filepath.Join(dir, defaultFontFile)
	if _, err := os.Stat(path); err != nil {
		return nil, NewFontMissingError(path, err)
	}
	return &FontRegistry{
		dir:      dir,
		fallback: Font{Family: "NotoSans", Path: path},
	}, nil
}

// ForText returns the font covering the text's detected script
func (r *FontRegistry) ForText(text string) Font {
	script := DetectScript(text)
	if script == defaultScript {
		return r.fallback
	}

	for _, sf := range scriptFonts {
		if sf.script != script {
			continue
		}
		path := filepath.Join(r.dir, sf.file)
		if _, err := os.Stat(path); err != nil {
			logger.Warn("no font file for script, using default font",
				logger.String("script", script),
				logger.String("missing", path),
			)
			return r.fallback
		}
		return Font{Family: sf.family, Path: path}
	}
	return r.fallback
}
