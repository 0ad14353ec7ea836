package crawler

import (
	"bytes"
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// FileLink is a downloadable document linked from a page.
type FileLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Row is one table row keyed by column header, in column order.
type Row struct {
	*orderedmap.OrderedMap[string, string]
}

// NewRow returns an empty Row.
func NewRow() Row {
	return Row{orderedmap.New[string, string]()}
}

// MarshalJSON writes the cells as an object in column order. Cell text is
// not HTML-escaped, so "&" and "<" survive as written on the page.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	if r.OrderedMap != nil {
		for pair := r.Oldest(); pair != nil; pair = pair.Next() {
			if pair != r.Oldest() {
				buf.WriteByte(',')
			}
			if err := enc.Encode(pair.Key); err != nil {
				return nil, err
			}
			buf.Truncate(buf.Len() - 1) // Encode appends a newline.
			buf.WriteByte(':')
			if err := enc.Encode(pair.Value); err != nil {
				return nil, err
			}
			buf.Truncate(buf.Len() - 1)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Table is the list of data rows of one HTML table.
type Table []Row

// Record is the unit of scraped output: one non-empty paragraph of a page,
// together with every file link and table found on that page.
type Record struct {
	Topic  string     `json:"topic"`
	Path   string     `json:"path"`
	Text   string     `json:"text"`
	Files  []FileLink `json:"files"`
	Tables []Table    `json:"tables"`
}
