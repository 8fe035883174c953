package textutil

import (
	"regexp"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

func MatchName(name string, matchers []string) bool {
	name = NormalizeName(name)
	for _, m := range matchers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

type suggestion struct {
	name       string
	similarity float64
}

// Suggest returns up to `limit` candidates that look like `name`,
// most similar first. candidates below `threshold` are dropped.
func Suggest(name string, candidates []string, threshold float64, limit int) []string {
	target := NormalizeName(name)

	var found []suggestion
	for _, c := range candidates {
		similarity := matchr.JaroWinkler(target, NormalizeName(c), false)
		if similarity < threshold {
			continue
		}
		found = append(found, suggestion{name: c, similarity: similarity})
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].similarity == found[j].similarity {
			return found[i].name < found[j].name
		}
		return found[i].similarity > found[j].similarity
	})

	if len(found) > limit {
		found = found[:limit]
	}
	out := make([]string, len(found))
	for i, s := range found {
		out[i] = s.name
	}
	return out
}
