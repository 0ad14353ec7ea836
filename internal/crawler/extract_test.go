package crawler

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func parseDoc(t *testing.T, body string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestExtractTableWithHeader(t *testing.T) {
	doc := parseDoc(t, `<table>
		<tr><th>Name</th><th>Code</th></tr>
		<tr><td>Math</td><td>101</td></tr>
	</table>`)

	pg := extract(doc, mustURL(t, "https://ihec.rnu.tn/fr"), nil)
	if len(pg.Tables) != 1 {
		t.Fatalf("tables = %d, want 1", len(pg.Tables))
	}

	got, err := json.Marshal(pg.Tables[0])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(got) != `[{"Name":"Math","Code":"101"}]` {
		t.Errorf("table = %s", got)
	}
}

func TestExtractTableWithoutHeader(t *testing.T) {
	doc := parseDoc(t, `<table>
		<tr><td>skipped</td></tr>
		<tr><td>a</td><td>b</td></tr>
	</table>
	<table>
		<tr><th>Jour</th></tr>
		<tr><td>Lundi</td><td>8h</td></tr>
	</table>`)

	pg := extract(doc, mustURL(t, "https://ihec.rnu.tn/fr"), nil)
	if len(pg.Tables) != 2 {
		t.Fatalf("tables = %d, want 2", len(pg.Tables))
	}

	got, _ := json.Marshal(pg.Tables[0])
	if string(got) != `[{"column_0":"a","column_1":"b"}]` {
		t.Errorf("headerless table = %s", got)
	}
	got, _ = json.Marshal(pg.Tables[1])
	if string(got) != `[{"Jour":"Lundi","column_1":"8h"}]` {
		t.Errorf("short header table = %s", got)
	}
}

func TestExtractEmptyTable(t *testing.T) {
	pg := extract(parseDoc(t, `<table></table>`), mustURL(t, "https://ihec.rnu.tn/fr"), nil)

	got, _ := json.Marshal(pg.Tables)
	if string(got) != `[[]]` {
		t.Errorf("tables = %s, want [[]]", got)
	}
}

func TestExtractParagraphIndices(t *testing.T) {
	doc := parseDoc(t, `<p>one</p><p> </p><p><span>three</span>
		<em>parts</em></p>`)

	pg := extract(doc, mustURL(t, "https://ihec.rnu.tn/fr"), nil)
	if len(pg.Paragraphs) != 2 {
		t.Fatalf("paragraphs = %d, want 2", len(pg.Paragraphs))
	}
	if pg.Paragraphs[0].Index != 0 || pg.Paragraphs[1].Index != 2 {
		t.Errorf("indices = %d,%d, want 0,2", pg.Paragraphs[0].Index, pg.Paragraphs[1].Index)
	}
	if pg.Paragraphs[1].Text != "threeparts" {
		t.Errorf("text = %q, want %q", pg.Paragraphs[1].Text, "threeparts")
	}
}

func TestExtractFilesAndLinks(t *testing.T) {
	doc := parseDoc(t, `
		<a href="docs/calendrier.pdf">calendar</a>
		<a href="/img/Logo.PNG">logo</a>
		<a href="https://cdn.example.com/x/plan.docx">plan</a>
		<a href="scolarite">scolarite</a>
		<a>no href</a>`)

	exts := []string{".pdf", ".png", ".docx"}
	pg := extract(doc, mustURL(t, "https://ihec.rnu.tn/fr/"), exts)

	if len(pg.Files) != 2 {
		t.Fatalf("files = %+v, want 2 (suffix match is case-sensitive)", pg.Files)
	}
	if pg.Files[0] != (FileLink{Name: "calendrier.pdf", URL: "https://ihec.rnu.tn/fr/docs/calendrier.pdf"}) {
		t.Errorf("files[0] = %+v", pg.Files[0])
	}
	if pg.Files[1].Name != "plan.docx" {
		t.Errorf("files[1] = %+v", pg.Files[1])
	}

	wantLinks := []string{
		"https://ihec.rnu.tn/fr/docs/calendrier.pdf",
		"https://ihec.rnu.tn/img/Logo.PNG",
		"https://cdn.example.com/x/plan.docx",
		"https://ihec.rnu.tn/fr/scolarite",
	}
	if strings.Join(pg.Links, " ") != strings.Join(wantLinks, " ") {
		t.Errorf("links = %v, want %v", pg.Links, wantLinks)
	}
}

func TestExtractNoFilesMarshalsEmptyList(t *testing.T) {
	pg := extract(parseDoc(t, `<p>x</p>`), mustURL(t, "https://ihec.rnu.tn/fr"), nil)
	rec := Record{Topic: "fr", Path: "fr", Text: "x", Files: pg.Files, Tables: pg.Tables}

	got, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"topic":"fr","path":"fr","text":"x","files":[],"tables":[]}`
	if string(got) != want {
		t.Errorf("record = %s, want %s", got, want)
	}
}

func TestTopicAndPath(t *testing.T) {
	tests := []struct {
		raw         string
		topic, path string
	}{
		{"https://ihec.rnu.tn/fr", "fr", "fr"},
		{"https://ihec.rnu.tn/fr/scolarite/inscription/", "inscription", "fr/scolarite/inscription"},
		{"https://ihec.rnu.tn/", "", ""},
	}
	for _, tt := range tests {
		topic, path := topicAndPath(mustURL(t, tt.raw))
		if topic != tt.topic || path != tt.path {
			t.Errorf("topicAndPath(%s) = %q, %q, want %q, %q", tt.raw, topic, path, tt.topic, tt.path)
		}
	}
}

func TestRowMarshalKeepsAmpersand(t *testing.T) {
	doc := parseDoc(t, `<table>
		<tr><th>Étape</th><th>Détail</th></tr>
		<tr><td>Modalités &amp; x</td><td>&lt;en ligne&gt;</td></tr>
	</table>`)
	pg := extract(doc, mustURL(t, "https://ihec.rnu.tn/fr"), nil)

	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(pg.Tables); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := `[[{"Étape":"Modalités & x","Détail":"<en ligne>"}]]` + "\n"
	if buf.String() != want {
		t.Errorf("tables = %s, want %s", buf.String(), want)
	}
}

func TestRowMarshalEmpty(t *testing.T) {
	got, err := json.Marshal(Row{})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(got) != `{}` {
		t.Errorf("zero row = %s, want {}", got)
	}
}
