// Package globutil translates glob query strings into POSIX-style matchers
// over the virtual path namespace. No glob-to-regex library is carried by
// the example corpus this module was grounded on, so this is a small
// regexp-based translator written in the teacher's terse style rather than
// an imported dependency.
package globutil

import (
	"regexp"
	"strings"
)

const metaChars = "*?[{"

// IsDynamic reports whether q contains glob metacharacters.
func IsDynamic(q string) bool {
	return strings.ContainsAny(q, metaChars)
}

// StaticPrefix returns the longest literal prefix of q before its first
// metacharacter, trimmed back to the last complete path segment.
func StaticPrefix(q string) string {
	idx := strings.IndexAny(q, metaChars)
	if idx < 0 {
		return q
	}

	prefix := q[:idx]
	if slash := strings.LastIndex(prefix, "/"); slash >= 0 {
		prefix = prefix[:slash]
	} else {
		prefix = ""
	}

	if prefix == "" {
		return "/"
	}
	return prefix
}

// ToRegex compiles q into a regular expression matching full virtual paths.
// "**" matches any number of path segments (including zero); "*" matches
// within a single segment; "?" matches a single non-slash character; "[...]"
// is a character class; "{a,b}" is a brace alternation.
func ToRegex(q string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")

	runes := []rune(q)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				b.WriteString(".*")
				i++
				// consume an immediately following slash so /**/ doesn't
				// require a literal double segment.
				if i+1 < len(runes) && runes[i+1] == '/' {
					i++
				}
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		case '[':
			j := i + 1
			for j < len(runes) && runes[j] != ']' {
				j++
			}
			if j < len(runes) {
				b.WriteString(string(runes[i : j+1]))
				i = j
			} else {
				b.WriteString(regexp.QuoteMeta(string(r)))
			}
		case '{':
			j := i + 1
			for j < len(runes) && runes[j] != '}' {
				j++
			}
			if j < len(runes) {
				alts := strings.Split(string(runes[i+1:j]), ",")
				for k, alt := range alts {
					alts[k] = regexp.QuoteMeta(alt)
				}
				b.WriteString("(" + strings.Join(alts, "|") + ")")
				i = j
			} else {
				b.WriteString(regexp.QuoteMeta(string(r)))
			}
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}

	b.WriteString("$")
	return regexp.Compile(b.String())
}

// Match reports whether path satisfies glob query q.
func Match(path, q string) bool {
	re, err := ToRegex(q)
	if err != nil {
		return false
	}
	return re.MatchString(path)
}
