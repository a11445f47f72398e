// Package editor implements the interactive note-entry flow: it renders the
// note fields into a marked-up template in a temporary file, hands that file
// to an externally configured editor program, and re-parses whatever comes
// back.
package editor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/unowned-ai/nota/pkg/notes"
)

// Fields carries the editable parts of a note through an editor session.
// Book is the book name as typed; resolution to an id is the caller's job.
type Fields struct {
	Title       string
	Keywords    []string
	Attachments []string
	Book        string
	Due         string
	Content     string
}

const templateHeader = `Instructions: fill in material following the ">" symbol. The title,
keywords, attachments, book and due entries must each fit on one line;
use commas to separate keywords and attachment paths. The content must
start *below* the line with the dots.
`

// Render produces the template written to the temporary file before the
// editor runs.
func Render(f Fields) string {
	return fmt.Sprintf(`%s
TITLE > %s

KEYWORDS > %s

ATTACHMENTS > %s

BOOK > %s

DUE (e.g. 'tomorrow' or '3 days') > %s

CONTENT...
%s
`, templateHeader, f.Title, strings.Join(f.Keywords, ","), strings.Join(f.Attachments, ","),
		f.Book, f.Due, f.Content)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// afterMarker strips everything up to and including the last ">" on the
// line, mirroring how the markers are matched: by substring containment on
// the keyword, not exact equality.
func afterMarker(line string) string {
	if i := strings.LastIndex(line, ">"); i >= 0 {
		line = line[i+1:]
	}
	return strings.TrimSpace(line)
}

// Parse reads an edited template back into Fields. Lines before the CONTENT
// marker are matched against the other markers, first match per line
// winning; every line after the CONTENT marker is appended verbatim to
// content, blank lines included, with only trailing newlines trimmed.
func Parse(r io.Reader) (Fields, error) {
	var f Fields
	var content strings.Builder
	inContent := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case inContent:
			content.WriteString(line)
			content.WriteByte('\n')
		case strings.Contains(line, "TITLE"):
			f.Title = afterMarker(line)
		case strings.Contains(line, "KEYWORDS"):
			f.Keywords = splitList(afterMarker(line))
		case strings.Contains(line, "ATTACHMENTS"):
			f.Attachments = splitList(afterMarker(line))
		case strings.Contains(line, "BOOK"):
			f.Book = afterMarker(line)
		case strings.Contains(line, "DUE"):
			f.Due = afterMarker(line)
		case strings.Contains(line, "CONTENT"):
			inContent = true
		}
	}
	if err := scanner.Err(); err != nil {
		return Fields{}, fmt.Errorf("failed to parse editor output: %w", err)
	}

	f.Content = strings.TrimRight(content.String(), "\n")
	return f, nil
}

// resolveEditor picks the editor program: $EDITOR when set, vi otherwise.
func resolveEditor() string {
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	return "vi"
}

// EditNote runs one interactive session: template out, editor, template back
// in. The temporary file is removed on all exit paths. A session that yields
// no title, no content and no keywords reports notes.ErrEmptyNote.
func EditNote(f Fields) (Fields, error) {
	tmp, err := os.CreateTemp("", "nota-*.txt")
	if err != nil {
		return Fields{}, fmt.Errorf("cannot create temporary file for editing: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.WriteString(Render(f)); err != nil {
		tmp.Close()
		return Fields{}, fmt.Errorf("cannot write editing template: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Fields{}, err
	}

	cmd := exec.Command(resolveEditor(), path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return Fields{}, fmt.Errorf("cannot spawn an editor: %w", err)
	}

	edited, err := os.Open(path)
	if err != nil {
		return Fields{}, fmt.Errorf("cannot reread edited file: %w", err)
	}
	defer edited.Close()

	result, err := Parse(edited)
	if err != nil {
		return Fields{}, err
	}
	if result.Title == "" && result.Content == "" && len(result.Keywords) == 0 {
		return Fields{}, notes.ErrEmptyNote
	}
	return result, nil
}
