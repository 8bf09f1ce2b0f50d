package cli

import (
	"bytes"
	"encoding/json"
	"testing"
)

type decision struct {
	Exceeds bool `json:"exceeds_budget"`
}

func (d decision) Text() string {
	if d.Exceeds {
		return "exceeds budget"
	}
	return "within budget"
}

func TestParseOutputFormat(t *testing.T) {
	for in, want := range map[string]OutputFormat{"": FormatText, "text": FormatText, "json": FormatJSON} {
		got, err := ParseOutputFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseOutputFormat("csv"); err == nil {
		t.Error("expected error for csv")
	}
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatText).FormatTo(&buf, decision{Exceeds: true}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "exceeds budget\n" {
		t.Errorf("got %q", buf.String())
	}

	buf.Reset()
	if err := NewFormatter(FormatText).FormatTo(&buf, 42); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "42\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewFormatter(FormatJSON).FormatTo(&buf, decision{Exceeds: true}); err != nil {
		t.Fatal(err)
	}

	var got decision
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if !got.Exceeds {
		t.Error("expected exceeds_budget true")
	}
}
