package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestCIReporterKnownTotal(t *testing.T) {
	var buf bytes.Buffer
	r := NewCIReporter("Indexing documents", &buf)

	r.Start(2)
	r.Update(1, "a.txt")
	r.Update(2, "b.txt")
	r.Finish()

	out := buf.String()
	for _, want := range []string{"Indexing documents: 2 items", "[1/2] a.txt", "[2/2] b.txt", "Indexing documents complete"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCIReporterUnknownTotal(t *testing.T) {
	var buf bytes.Buffer
	r := NewCIReporter("Crawling", &buf)

	r.Start(-1)
	r.Update(3, "https://ihec.rnu.tn/fr/scolarite")

	if !strings.Contains(buf.String(), "[3] https://ihec.rnu.tn/fr/scolarite") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestNewReporterUnderCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter("x").(*CIReporter); !ok {
		t.Error("expected CIReporter when CI is set")
	}
}

func TestDiscard(t *testing.T) {
	Discard.Start(10)
	Discard.Update(1, "ignored")
	Discard.Finish()
}
