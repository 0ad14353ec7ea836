package sink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/ziadkadry99/campusbot/internal/crawler"
)

// recordingSink remembers written names and can be told to fail.
type recordingSink struct {
	names  []string
	err    error
	closed bool
}

func (r *recordingSink) Write(_ context.Context, name string, _ crawler.Record) error {
	if r.err != nil {
		return r.err
	}
	r.names = append(r.names, name)
	return nil
}

func (r *recordingSink) Close(context.Context) error {
	r.closed = true
	return nil
}

func sampleRecord() crawler.Record {
	row := crawler.NewRow()
	row.Set("Name", "Math & Stats")
	row.Set("Code", "101")
	return crawler.Record{
		Topic:  "scolarite",
		Path:   "fr/scolarite",
		Text:   "Les inscriptions sont ouvertes <en ligne> & sur place.",
		Files:  []crawler.FileLink{{Name: "guide.pdf", URL: "https://ihec.rnu.tn/files/guide.pdf"}},
		Tables: []crawler.Table{{row}},
	}
}

func TestFileSinkWritesIndentedJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scraped_data")
	fs := NewFileSink(dir)

	if err := fs.Write(context.Background(), "scolarite_4_2.json", sampleRecord()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "scolarite_4_2.json"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	got := string(data)

	want := `{
    "topic": "scolarite",
    "path": "fr/scolarite",
    "text": "Les inscriptions sont ouvertes <en ligne> & sur place.",
    "files": [
        {
            "name": "guide.pdf",
            "url": "https://ihec.rnu.tn/files/guide.pdf"
        }
    ],
    "tables": [
        [
            {
                "Name": "Math & Stats",
                "Code": "101"
            }
        ]
    ]
}`
	if got != want {
		t.Errorf("file content =\n%s\nwant\n%s", got, want)
	}
}

func TestFileSinkOverwrites(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileSink(dir)
	rec := sampleRecord()

	if err := fs.Write(context.Background(), "fr_1_0.json", rec); err != nil {
		t.Fatalf("Write: %v", err)
	}
	rec.Text = "remplacé"
	if err := fs.Write(context.Background(), "fr_1_0.json", rec); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "fr_1_0.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"text": "remplacé"`) {
		t.Errorf("file was not replaced:\n%s", data)
	}
}

func TestFileSinkReportsWriteFailure(t *testing.T) {
	// A regular file where the output directory should be.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := NewFileSink(blocker).Write(context.Background(), "a.json", sampleRecord()); err == nil {
		t.Error("expected error when the output directory cannot be created")
	}
}

func TestPersisterStoreErrorIsLogged(t *testing.T) {
	primary := &recordingSink{}
	store := &recordingSink{err: errors.New("connection refused")}
	p := NewPersister(primary, store, nil)

	if err := p.Write(context.Background(), "fr_1_0.json", sampleRecord()); err != nil {
		t.Errorf("store failure must not fail the write: %v", err)
	}
	if len(primary.names) != 1 {
		t.Errorf("primary writes = %d, want 1", len(primary.names))
	}
}

func TestPersisterPrimaryErrorPropagates(t *testing.T) {
	primary := &recordingSink{err: errors.New("disk full")}
	store := &recordingSink{}
	p := NewPersister(primary, store, nil)

	if err := p.Write(context.Background(), "fr_1_0.json", sampleRecord()); err == nil {
		t.Error("expected primary error")
	}
	if len(store.names) != 0 {
		t.Error("store must not be written when the file write fails")
	}
}

func TestPersisterWithoutStore(t *testing.T) {
	primary := &recordingSink{}
	p := NewPersister(primary, nil, nil)

	if err := p.Write(context.Background(), "fr_1_0.json", sampleRecord()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := p.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !primary.closed {
		t.Error("primary sink was not closed")
	}
}

func TestRecordDocumentKeepsOrder(t *testing.T) {
	doc := recordDocument(sampleRecord())

	var keys []string
	for _, e := range doc {
		keys = append(keys, e.Key)
	}
	if strings.Join(keys, ",") != "topic,path,text,files,tables" {
		t.Errorf("keys = %v", keys)
	}

	tables := doc[4].Value.(bson.A)
	row := tables[0].(bson.A)[0].(bson.D)
	if len(row) != 2 || row[0].Key != "Name" || row[1].Key != "Code" || row[1].Value != "101" {
		t.Errorf("row = %v", row)
	}

	files := doc[3].Value.(bson.A)
	if files[0].(bson.D)[0].Value != "guide.pdf" {
		t.Errorf("files = %v", files)
	}
}

func TestRecordDocumentEmptyLists(t *testing.T) {
	doc := recordDocument(crawler.Record{Topic: "fr"})

	if files, ok := doc[3].Value.(bson.A); !ok || len(files) != 0 {
		t.Errorf("files = %#v, want empty array", doc[3].Value)
	}
	if tables, ok := doc[4].Value.(bson.A); !ok || len(tables) != 0 {
		t.Errorf("tables = %#v, want empty array", doc[4].Value)
	}
}

func TestNewMongoSinkRejectsBadURI(t *testing.T) {
	_, err := NewMongoSink(context.Background(), MongoConfig{URI: "http://not-mongo", Database: "ihec", Collection: "web"})
	if err == nil {
		t.Error("expected error for a non-mongodb URI")
	}
}
