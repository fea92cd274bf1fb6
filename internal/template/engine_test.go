package template

import (
	"reflect"
	"testing"
)

func TestExtractPlaceholders_DedupAndOrder(t *testing.T) {
	got := ExtractPlaceholders("Hi {{first_name}}, thanks {{first_name}}! Ref {{ad_name}} / {{ID2}}")
	want := []string{"first_name", "ad_name", "ID2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestExtractPlaceholders_Empty(t *testing.T) {
	if got := ExtractPlaceholders(""); len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
	if got := ExtractPlaceholders("no tokens here"); len(got) != 0 {
		t.Fatalf("expected empty slice, got %v", got)
	}
}

func TestExtractPlaceholders_IgnoresMalformedTokens(t *testing.T) {
	got := ExtractPlaceholders("{{ spaced }} {{semi-colon}} {{ok_1}} {single}")
	want := []string{"ok_1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestFill_LeadDataWinsOverVariables(t *testing.T) {
	out := Fill("Hello {{name}} from {{city}}",
		map[string]string{"name": "Ada"},
		map[string]string{"name": "ignored", "city": "London"})
	if out != "Hello Ada from London" {
		t.Fatalf("got %q", out)
	}
}

func TestFill_MissingPlaceholderBecomesEmpty(t *testing.T) {
	out := Fill("Hi {{name}}!", nil, nil)
	if out != "Hi !" {
		t.Fatalf("got %q", out)
	}
}

func TestFill_NoRecursiveExpansion(t *testing.T) {
	out := Fill("{{a}}", map[string]string{"a": "{{b}}", "b": "nope"}, nil)
	if out != "{{b}}" {
		t.Fatalf("substitution must be single-pass, got %q", out)
	}
}

func TestFill_EmptyTemplate(t *testing.T) {
	if out := Fill("", map[string]string{"a": "x"}, nil); out != "" {
		t.Fatalf("got %q", out)
	}
}
