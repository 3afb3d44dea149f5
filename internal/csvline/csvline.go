// Package csvline encodes tasks as lines of delimited text.
//
// A record has the shape
//
//	id,"title","description",status
//
// where title and description are always quoted and any quote inside them is
// doubled. id and status are written bare unless they contain a delimiter, a
// quote or a line break, in which case they are quoted the same way. Every
// encoded record therefore has an even number of quotes.
//
// Decoding is lenient: it never fails. Input with unbalanced quotes produces
// whatever fields the scan ends up with.
package csvline

import (
	"bufio"
	"io"
	"strings"
	"taskboard/internal/task"
)

const (
	Delimiter = ','
	Quote     = '"'

	Header = "id,title,description,status"

	fieldCount = 4
)

func Encode(t task.Task) string {
	var sb strings.Builder
	writeField(&sb, t.ID)
	sb.WriteByte(Delimiter)
	writeQuoted(&sb, t.Title)
	sb.WriteByte(Delimiter)
	writeQuoted(&sb, t.Description)
	sb.WriteByte(Delimiter)
	writeField(&sb, string(t.Status))
	return sb.String()
}

func writeField(sb *strings.Builder, s string) {
	if strings.ContainsAny(s, "\",\r\n") {
		writeQuoted(sb, s)
		return
	}
	sb.WriteString(s)
}

func writeQuoted(sb *strings.Builder, s string) {
	sb.WriteByte(Quote)
	sb.WriteString(strings.ReplaceAll(s, `"`, `""`))
	sb.WriteByte(Quote)
}

// Decode splits one record into fields. A quote toggles the quoted state,
// except that a doubled quote inside a quoted field yields one literal quote.
// Delimiters only separate fields outside quotes.
func Decode(line string) []string {
	fields := make([]string, 0, fieldCount)
	var current strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == Quote:
			if inQuotes && i+1 < len(line) && line[i+1] == Quote {
				current.WriteByte(Quote)
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == Delimiter && !inQuotes:
			fields = append(fields, current.String())
			current.Reset()
		default:
			current.WriteByte(c)
		}
	}
	return append(fields, current.String())
}

// Parse maps decoded fields onto a task. Missing trailing fields are left
// empty and extra fields are ignored.
func Parse(fields []string) task.Task {
	get := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	return task.Task{
		ID:          get(0),
		Title:       get(1),
		Description: get(2),
		Status:      task.Status(get(3)),
	}
}

// ReadRecords returns the logical records of r. Physical lines are joined with
// "\n" while the record has an odd number of quotes, so quoted fields may span
// lines. Blank lines and trailing carriage returns are dropped.
func ReadRecords(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		records []string
		pending strings.Builder
		quotes  int
	)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if pending.Len() == 0 && quotes == 0 && strings.TrimSpace(line) == "" {
			continue
		}
		if quotes%2 == 1 {
			pending.WriteByte('\n')
		}
		pending.WriteString(line)
		quotes += strings.Count(line, `"`)
		if quotes%2 == 0 {
			records = append(records, pending.String())
			pending.Reset()
			quotes = 0
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if pending.Len() > 0 {
		records = append(records, pending.String())
	}
	return records, nil
}
