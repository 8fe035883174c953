package fetchcache

import (
	"fmt"
	"strings"
)

// the escaped form of "__" is escaped first so literal text can never
// produce a token, which keeps Escape injective and Unescape exact.
var tokens = []struct {
	raw     string
	escaped string
}{
	{raw: "__", escaped: "__US__"},
	{raw: "://", escaped: "__SCHEME__/"},
	{raw: "?", escaped: "__QM__"},
	{raw: "&", escaped: "__AMP__"},
	{raw: "=", escaped: "__EQ__"},
	{raw: ":", escaped: "__COLON__"},
	{raw: "*", escaped: "__STAR__"},
	{raw: "|", escaped: "__PIPE__"},
	{raw: "<", escaped: "__LT__"},
	{raw: ">", escaped: "__GT__"},
	{raw: `"`, escaped: "__QUOTE__"},
	{raw: `\`, escaped: "__BSLASH__"},
}

// a key ending in "/" would name a directory on disk
const indexToken = "__INDEX__"

var escaper, unescaper = func() (*strings.Replacer, *strings.Replacer) {
	var forward, backward []string
	for _, t := range tokens {
		forward = append(forward, t.raw, t.escaped)
	}
	for _, t := range tokens {
		if t.raw == "://" {
			// the trailing "/" of the escaped scheme stays in the key
			backward = append(backward, "__SCHEME__", ":/")
			continue
		}
		backward = append(backward, t.escaped, t.raw)
	}
	backward = append(backward, indexToken, "")
	return strings.NewReplacer(forward...), strings.NewReplacer(backward...)
}()

// Escape turns a URL into a storage key that is safe to use as a relative
// filesystem path, "/" is kept as the directory separator.
func Escape(url string) string {
	key := escaper.Replace(url)
	if key == "" || strings.HasSuffix(key, "/") {
		key += indexToken
	}
	return key
}

// Unescape is the inverse of Escape.
func Unescape(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty cache key")
	}
	return unescaper.Replace(key), nil
}
