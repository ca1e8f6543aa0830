package archive

import (
	"path"
	"strings"
)

// skipTokens mark system junk that is never worth extracting.
var skipTokens = []string{
	"__macosx",
	".ds_store",
	"thumbs.db",
	"desktop.ini",
	".git",
	".svn",
}

// relevantTokens name the diagnostic file families the pipeline understands.
// Matching is substring on the lowercased path.
var relevantTokens = []string{
	"customerjournal",
	"customer_journal",
	"uijournal",
	"ui_journal",
	".trc",
	"trace",
	"error",
	".reg",
	"reg.txt",
	"registry",
	"acu",
	".jrn",
	".prn",
	"jdd",
	"x3",
	".zip", // nested archives must survive the filter
}

// Relevant reports whether an entry name is worth extracting. It is a pure
// function over the name; no file content is read.
func Relevant(name string) bool {
	lower := strings.ToLower(name)
	for _, skip := range skipTokens {
		if strings.Contains(lower, skip) {
			return false
		}
	}
	if strings.HasPrefix(path.Base(lower), ".") {
		return false
	}
	for _, token := range relevantTokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
