package dump

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func readAll(t *testing.T, input string) ([]*PageRecord, *Reader) {
	t.Helper()
	r := NewReader(strings.NewReader(input))
	var records []*PageRecord
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		records = append(records, rec)
	}
	return records, r
}

func TestReader_SinglePage(t *testing.T) {
	input := `<mediawiki>
  <page>
    <title>Physics</title>
    <revision>
      <text xml:space="preserve">Physics is a [[science]].</text>
    </revision>
  </page>
</mediawiki>
`
	records, r := readAll(t, input)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Title != "Physics" {
		t.Fatalf("unexpected title %q", records[0].Title)
	}
	if records[0].Body != "Physics is a [[science]]." {
		t.Fatalf("unexpected body %q", records[0].Body)
	}
	if r.Seen() != 1 || r.Malformed() != 0 {
		t.Fatalf("unexpected counters: seen=%d malformed=%d", r.Seen(), r.Malformed())
	}
}

func TestReader_MultiLineText(t *testing.T) {
	input := `<page>
  <title>Alpha</title>
  <text xml:space="preserve">first line
second line
third line</text>
</page>
`
	records, _ := readAll(t, input)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	want := "first line\nsecond line\nthird line"
	if records[0].Body != want {
		t.Fatalf("unexpected body %q, want %q", records[0].Body, want)
	}
}

func TestReader_SelfClosingText(t *testing.T) {
	input := `<page>
  <title>Empty</title>
  <text bytes="0" />
</page>
`
	records, _ := readAll(t, input)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Body != "" {
		t.Fatalf("expected empty body, got %q", records[0].Body)
	}
}

func TestReader_RedirectElement(t *testing.T) {
	input := `<page>
  <title>NYC</title>
  <redirect title="New York City" />
  <text xml:space="preserve">#REDIRECT [[New York City]]</text>
</page>
`
	records, _ := readAll(t, input)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].RedirectHint != "New York City" {
		t.Fatalf("unexpected redirect hint %q", records[0].RedirectHint)
	}
}

func TestReader_EntityUnescaping(t *testing.T) {
	input := `<page>
  <title>AT&amp;T</title>
  <text xml:space="preserve">AT&amp;T links to [[Bell System]] &lt;sub&gt;notes&lt;/sub&gt;.</text>
</page>
`
	records, _ := readAll(t, input)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Title != "AT&T" {
		t.Fatalf("unexpected title %q", records[0].Title)
	}
	if !strings.Contains(records[0].Body, "AT&T links") {
		t.Fatalf("body not unescaped: %q", records[0].Body)
	}
	if !strings.Contains(records[0].Body, "<sub>notes</sub>") {
		t.Fatalf("escaped markup not unescaped: %q", records[0].Body)
	}
}

func TestReader_MalformedRecordsSkipped(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantTitles    []string
		wantMalformed int
	}{
		{
			name: "open within open",
			input: `<page>
  <title>Broken</title>
<page>
  <title>Kept</title>
  <text>ok</text>
</page>
`,
			wantTitles:    []string{"Kept"},
			wantMalformed: 1,
		},
		{
			name: "close without open",
			input: `</page>
<page>
  <title>Kept</title>
  <text>ok</text>
</page>
`,
			wantTitles:    []string{"Kept"},
			wantMalformed: 1,
		},
		{
			name: "missing title",
			input: `<page>
  <text>no title here</text>
</page>
<page>
  <title>Kept</title>
  <text>ok</text>
</page>
`,
			wantTitles:    []string{"Kept"},
			wantMalformed: 1,
		},
		{
			name: "eof mid record",
			input: `<page>
  <title>Kept</title>
  <text>ok</text>
</page>
<page>
  <title>Truncated</title>
`,
			wantTitles:    []string{"Kept"},
			wantMalformed: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, r := readAll(t, tt.input)
			var titles []string
			for _, rec := range records {
				titles = append(titles, rec.Title)
			}
			if len(titles) != len(tt.wantTitles) {
				t.Fatalf("expected titles %v, got %v", tt.wantTitles, titles)
			}
			for i := range titles {
				if titles[i] != tt.wantTitles[i] {
					t.Fatalf("expected titles %v, got %v", tt.wantTitles, titles)
				}
			}
			if r.Malformed() != tt.wantMalformed {
				t.Fatalf("expected %d malformed, got %d", tt.wantMalformed, r.Malformed())
			}
			if r.Seen() != len(tt.wantTitles) {
				t.Fatalf("expected %d seen, got %d", len(tt.wantTitles), r.Seen())
			}
		})
	}
}

func TestReader_TextAndCloseOnOneLine(t *testing.T) {
	input := `<page>
  <title>Inline</title>
  <text xml:space="preserve">all on one line</text>
</page>
`
	records, _ := readAll(t, input)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Body != "all on one line" {
		t.Fatalf("unexpected body %q", records[0].Body)
	}
}

func TestReader_MultiplePages(t *testing.T) {
	input := `<page>
  <title>One</title>
  <text>a</text>
</page>
<page>
  <title>Two</title>
  <text>b</text>
</page>
<page>
  <title>Three</title>
  <text>c</text>
</page>
`
	records, r := readAll(t, input)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if r.Seen() != 3 {
		t.Fatalf("expected 3 seen, got %d", r.Seen())
	}
	if records[2].Title != "Three" || records[2].Body != "c" {
		t.Fatalf("unexpected last record %+v", records[2])
	}
}
