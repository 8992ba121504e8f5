package coverage

import (
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Header keys that may open a gcov file. Only Source affects the model.
const (
	HeaderSource = "Source"
	HeaderGraph  = "Graph"
	HeaderData   = "Data"
	HeaderRuns   = "Runs"
)

var (
	// count:lineno:text, whitespace around the first two fields is ignored.
	recordRegex = regexp.MustCompile(`^\s*([^:\s]+)\s*:\s*(\d+)\s*:(.*)$`)
	headerRegex = regexp.MustCompile(`^\s*(Source|Graph|Data|Runs):\s*(.*)$`)
)

// minMarkerRun is the shortest run of '#' or '=' gcov uses as a marker.
const minMarkerRun = 5

// ClassifyToken maps a gcov count token to a line state and execution count.
// ok is false for tokens that are not recognised; such records are dropped.
func ClassifyToken(tok string) (state LineState, count int, ok bool) {
	switch {
	case tok == "-":
		return StateNonExec, 0, true
	case isMarkerRun(tok, '='):
		return StateNoData, 0, true
	case isMarkerRun(tok, '#'):
		return StateUncovered, 0, true
	}

	n, err := strconv.Atoi(tok)
	if err != nil {
		return "", 0, false
	}
	if n > 0 {
		return StateCovered, n, true
	}
	return StateUncovered, n, true
}

func isMarkerRun(tok string, c byte) bool {
	if len(tok) < minMarkerRun {
		return false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] != c {
			return false
		}
	}
	return true
}

// ParseHeader recognises a "Key: value" header line. The value is trimmed but
// not normalised.
func ParseHeader(raw string) (key, value string, ok bool) {
	m := headerRegex.FindStringSubmatch(strings.TrimRight(raw, "\r\n"))
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// ParseLine classifies one data record. ok is false when the line is not a
// record or its count token is malformed.
//
// Line-number 0 records are never returned; gcov uses them for headers, see
// ParseHeader and parseRecordHeader.
func ParseLine(raw string) (LineRecord, bool) {
	m := recordRegex.FindStringSubmatch(strings.TrimRight(raw, "\r\n"))
	if m == nil {
		return LineRecord{}, false
	}

	number, err := strconv.Atoi(m[2])
	if err != nil || number <= 0 {
		return LineRecord{}, false
	}

	state, count, ok := ClassifyToken(m[1])
	if !ok {
		return LineRecord{}, false
	}

	return LineRecord{
		Number: number,
		Count:  count,
		Text:   m[3],
		State:  state,
	}, true
}

// parseRecordHeader recognises the header form real gcov output uses:
// "        -:    0:Source:src/foo.c".
func parseRecordHeader(raw string) (key, value string, ok bool) {
	m := recordRegex.FindStringSubmatch(strings.TrimRight(raw, "\r\n"))
	if m == nil || m[1] != "-" {
		return "", "", false
	}
	if n, err := strconv.Atoi(m[2]); err != nil || n != 0 {
		return "", "", false
	}
	return ParseHeader(m[3])
}

// NormalizeSource turns a Source header value into the OS-neutral key used to
// join runs. It never touches the disk. An empty result means the value
// should be ignored.
func NormalizeSource(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	value = strings.ReplaceAll(value, `\`, "/")
	return path.Clean(value)
}
