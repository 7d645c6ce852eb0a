package answer

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// section is one [scope] block of an answer file, in file order.
type section struct {
	scope string
	entry Entry
}

// parseAnswerFile reads the answer-file dialect:
//
//	[scope] headers, key = value pairs, bare keys (a key with no value),
//	full-line # comments and blank lines.
//
// Scope names, keys and values keep their case; keys and values are trimmed
// of surrounding whitespace only. Duplicate sections merge in file order and
// a repeated key keeps its last value. A bare key stores nil. A missing file
// yields no sections; anything unrecognized fails with ErrParse carrying the
// offending line number.
func parseAnswerFile(fsys afero.Fs, path string) ([]*section, error) {
	f, err := fsys.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening answer file: %w", err)
	}
	defer f.Close()

	var (
		ordered []*section
		index   = make(map[string]*section)
		current *section
	)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case strings.HasPrefix(line, "["):
			if !strings.HasSuffix(line, "]") {
				return nil, NewParseError(path, lineNo, "unterminated section header")
			}
			name := line[1 : len(line)-1]
			if name == "" {
				return nil, NewParseError(path, lineNo, "empty section name")
			}
			if existing, ok := index[name]; ok {
				current = existing
				continue
			}
			current = &section{scope: name, entry: Entry{}}
			index[name] = current
			ordered = append(ordered, current)
		default:
			if current == nil {
				return nil, NewParseError(path, lineNo, "answer before any [section] header")
			}
			key, value, found := strings.Cut(line, "=")
			if !found {
				// A key may be declared without any value.
				current.entry[line] = nil
				continue
			}
			key = strings.TrimSpace(key)
			if key == "" {
				return nil, NewParseError(path, lineNo, "empty key")
			}
			current.entry[key] = strings.TrimSpace(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading answer file: %w", err)
	}
	return ordered, nil
}
