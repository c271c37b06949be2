// Package dump streams page records out of a MediaWiki XML dump without
// ever materializing the whole input. The scanner is deliberately
// line-oriented rather than a strict XML parse: multi-gigabyte dumps
// routinely contain tool-generated damage, and a broken record must cost
// one skipped page, not the run.
package dump

import (
	"bufio"
	"compress/bzip2"
	"html"
	"io"
	"os"
	"strings"
)

// PageRecord is one page of the dump: its title, the raw wikitext body,
// and the target of the dump's <redirect/> element when one was present.
// Records are immutable after creation and are not retained by the reader.
type PageRecord struct {
	Title        string
	Body         string
	RedirectHint string
}

// Reader produces a lazy, finite, non-restartable sequence of PageRecords.
// At most one record's raw body is held in memory at a time.
type Reader struct {
	br     *bufio.Reader
	closer io.Closer

	seen      int
	malformed int
}

// Open opens a dump file for streaming. Files ending in .bz2 are
// decompressed incrementally.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var r io.Reader = f
	if strings.HasSuffix(path, ".bz2") {
		r = bzip2.NewReader(f)
	}

	reader := NewReader(r)
	reader.closer = f
	return reader, nil
}

// NewReader wraps an already-decompressed dump stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		br: bufio.NewReaderSize(r, 256*1024),
	}
}

// Close releases the underlying file, if the reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Seen returns the number of records emitted so far.
func (r *Reader) Seen() int { return r.seen }

// Malformed returns the number of records skipped so far because of
// broken record boundaries or a missing title.
func (r *Reader) Malformed() int { return r.malformed }

// Next returns the next page record, or io.EOF at the end of the stream.
// Malformed records are skipped and counted, never returned as errors.
func (r *Reader) Next() (*PageRecord, error) {
	var (
		inPage   bool
		inText   bool
		title    string
		redirect string
		body     strings.Builder
	)

	reset := func() {
		inPage = false
		inText = false
		title = ""
		redirect = ""
		body.Reset()
	}

	for {
		line, err := r.br.ReadString('\n')
		if len(line) == 0 && err != nil {
			if err == io.EOF {
				if inPage {
					// Dump ended mid-record.
					r.malformed++
				}
				return nil, io.EOF
			}
			return nil, err
		}

		if inText {
			if idx := strings.Index(line, "</text>"); idx >= 0 {
				body.WriteString(line[:idx])
				inText = false
			} else {
				body.WriteString(line)
			}
			continue
		}

		switch {
		case strings.Contains(line, "<page>"):
			if inPage {
				// New open marker before the previous record closed.
				r.malformed++
				reset()
			}
			inPage = true

		case strings.Contains(line, "</page>"):
			if !inPage {
				// Close marker without a preceding open marker.
				r.malformed++
				continue
			}
			if title == "" {
				r.malformed++
				reset()
				continue
			}
			r.seen++
			rec := &PageRecord{
				Title:        title,
				Body:         html.UnescapeString(body.String()),
				RedirectHint: redirect,
			}
			reset()
			return rec, nil

		case inPage && strings.Contains(line, "<title>"):
			title = html.UnescapeString(tagContent(line, "<title>", "</title>"))

		case inPage && strings.Contains(line, "<redirect"):
			redirect = html.UnescapeString(attrValue(line, "title"))

		case inPage && strings.Contains(line, "<text"):
			rest, selfClosing, ok := openTextTag(line)
			if !ok {
				continue
			}
			if selfClosing {
				continue
			}
			if idx := strings.Index(rest, "</text>"); idx >= 0 {
				body.WriteString(rest[:idx])
			} else {
				body.WriteString(rest)
				inText = true
			}
		}
	}
}

// tagContent extracts the text between an open and close tag on one line.
// Returns "" when either marker is missing.
func tagContent(line, open, closing string) string {
	start := strings.Index(line, open)
	if start < 0 {
		return ""
	}
	start += len(open)
	end := strings.Index(line[start:], closing)
	if end < 0 {
		return ""
	}
	return line[start : start+end]
}

// attrValue extracts a double-quoted attribute value from a one-line tag.
func attrValue(line, attr string) string {
	marker := attr + `="`
	start := strings.Index(line, marker)
	if start < 0 {
		return ""
	}
	start += len(marker)
	end := strings.Index(line[start:], `"`)
	if end < 0 {
		return ""
	}
	return line[start : start+end]
}

// openTextTag locates the <text ...> element on a line and returns the
// payload following its closing bracket. The element may carry attributes
// (xml:space, bytes, ...) and may be self-closing for empty pages.
func openTextTag(line string) (rest string, selfClosing bool, ok bool) {
	start := strings.Index(line, "<text")
	if start < 0 {
		return "", false, false
	}
	end := strings.Index(line[start:], ">")
	if end < 0 {
		return "", false, false
	}
	end += start
	if strings.HasSuffix(line[:end], "/") {
		return "", true, true
	}
	return line[end+1:], false, true
}
