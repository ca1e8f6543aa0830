// Package registry parses Windows registry export files and computes
// the differences between two exports.
package registry

import (
	"regexp"
	"strings"

	"github.com/termlens/termlens/internal/textenc"
)

var (
	sectionRe = regexp.MustCompile(`^\s*\[(.+?)\]\s*$`)
	kvRe      = regexp.MustCompile(`^\s*(@|".+?"|[^=]+?)\s*=\s*(.+?)\s*$`)
)

// Entry is one registry relation row. An empty Key marks a section
// that closed without any key/value pairs.
type Entry struct {
	Section string
	Key     string
	Value   string
}

// Parse decodes export bytes and parses them into entries. Registry
// exports arrive in a wider spread of encodings than journals, so the
// BOM-aware chain is used.
func Parse(data []byte) []Entry {
	text, _ := textenc.DecodeChain(data, textenc.RegistryChain)
	return ParseLines(strings.Split(text, "\n"))
}

// ParseLines parses decoded export lines. Values continue onto the
// following physical line while the current one ends in a backslash;
// keys lose their surrounding quotes, values keep theirs verbatim.
func ParseLines(lines []string) []Entry {
	var rows []Entry
	section := ""
	seenKV := false

	for i := 0; i < len(lines); {
		line := strings.TrimSpace(lines[i])
		i++
		if line == "" {
			continue
		}

		if m := sectionRe.FindStringSubmatch(line); m != nil {
			if section != "" && !seenKV {
				rows = append(rows, Entry{Section: section})
			}
			section = strings.TrimSpace(m[1])
			seenKV = false
			continue
		}
		if section == "" {
			continue
		}

		m := kvRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := m[2]
		for strings.HasSuffix(value, `\`) && i < len(lines) {
			value = value[:len(value)-1] + strings.TrimSpace(lines[i])
			i++
		}
		rows = append(rows, Entry{
			Section: section,
			Key:     normalizeKey(m[1]),
			Value:   strings.TrimSpace(value),
		})
		seenKV = true
	}

	if section != "" && !seenKV {
		rows = append(rows, Entry{Section: section})
	}
	return rows
}

// normalizeKey trims whitespace and surrounding quotes. The @ default
// value marker is preserved as is.
func normalizeKey(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "@" {
		return s
	}
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
