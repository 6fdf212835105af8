package privacy

import "testing"

func TestStripPrivateTags(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"no tags", "hello there", "hello there"},
		{"inline", "my pin is <private>1234</private> ok", "my pin is  ok"},
		{"multiline", "a <PRIVATE>line1\nline2</Private> b", "a  b"},
		{"two blocks", "<private>x</private>keep<private>y</private>", "keep"},
		{"only private", "  <private>secret</private>  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripPrivateTags(tt.in); got != tt.want {
				t.Errorf("StripPrivateTags(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestHasOnlyPrivateContent(t *testing.T) {
	if !HasOnlyPrivateContent("<private>all of it</private>\n") {
		t.Error("expected fully private content")
	}
	if HasOnlyPrivateContent("   ") {
		t.Error("blank content is not private content")
	}
	if HasOnlyPrivateContent("<private>a</private> b") {
		t.Error("mixed content reported as only private")
	}
}

func TestRedact(t *testing.T) {
	got := Redact("call me at <private>555-0100</private> tonight")
	if got != "call me at [private] tonight" {
		t.Errorf("Redact = %q", got)
	}
	if HasPrivateContent(got) {
		t.Error("redacted text still private")
	}
}
