package report

import "strings"

var languageExtensions = []struct {
	exts []string
	lang string
}{
	{[]string{"f90", "f95", "f03", "f08", "f", "for", "f77"}, "fortran"},
	{[]string{"hpp", "hh", "hxx", "cpp", "cc", "cxx", "cuh", "cu"}, "cpp"},
	{[]string{"h", "c"}, "c"},
	{[]string{"py"}, "python"},
	{[]string{"sh", "bash"}, "bash"},
	{[]string{"js"}, "javascript"},
	{[]string{"ts"}, "typescript"},
	{[]string{"java"}, "java"},
	{[]string{"go"}, "go"},
	{[]string{"rs"}, "rust"},
}

// GuessLanguage maps a source path to a highlighter language name using its
// extension. It returns "" when the extension is unknown.
func GuessLanguage(source string) string {
	s := strings.ToLower(source)
	for _, entry := range languageExtensions {
		for _, ext := range entry.exts {
			if strings.HasSuffix(s, "."+ext) {
				return entry.lang
			}
		}
	}
	return ""
}

// IsBlank reports whether a source line holds only whitespace.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

var commentPrefixes = []string{"!", "//", "#", "/*", "*/"}

// IsComment is a language-agnostic guess at comment-only lines. Preprocessor
// lines also start with '#', so it is only applied to non-executable lines.
func IsComment(text string) bool {
	s := strings.TrimLeft(text, " \t\r\n\v\f")
	if s == "" {
		return false
	}
	for _, p := range commentPrefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
