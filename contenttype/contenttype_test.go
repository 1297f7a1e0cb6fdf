package contenttype

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  Params
	}{
		{
			name:  "plain",
			value: "text/plain",
			want:  Params{"mime-type": "text/plain"},
		},
		{
			name:  "lowercases media type",
			value: "Multipart/Related; boundary=abc",
			want:  Params{"mime-type": "multipart/related", "boundary": "abc"},
		},
		{
			name:  "quoted boundary is unquoted",
			value: `multipart/related; boundary="uuid:0ca0e16e-feb1-426c-97d8-c4508ada5e82"`,
			want:  Params{"mime-type": "multipart/related", "boundary": "uuid:0ca0e16e-feb1-426c-97d8-c4508ada5e82"},
		},
		{
			name:  "lowercases keys but not values",
			value: `multipart/related; Type="application/xop+xml"; BOUNDARY=MixedCase; start="<root@x>"`,
			want: Params{
				"mime-type": "multipart/related",
				"type":      "application/xop+xml",
				"boundary":  "MixedCase",
				"start":     "<root@x>",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.value)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.value, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Parse(%q) = %v, want %v", tt.value, got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("Params[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestParse_UnquotedSpecials(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  Params
	}{
		{
			name:  "unquoted type with slash",
			value: "multipart/related; type=application/xop+xml; boundary=B",
			want:  Params{"mime-type": "multipart/related", "type": "application/xop+xml", "boundary": "B"},
		},
		{
			name:  "unquoted start with angle brackets",
			value: `Multipart/Related; Start=<root@x>; boundary="uuid:1;2"; start-info="text/xml"`,
			want: Params{
				"mime-type":  "multipart/related",
				"start":      "<root@x>",
				"boundary":   "uuid:1;2",
				"start-info": "text/xml",
			},
		},
		{
			name:  "escaped quote and trailing semicolon",
			value: `multipart/related; type=application/xop+xml; x="a\"b";`,
			want:  Params{"mime-type": "multipart/related", "type": "application/xop+xml", "x": `a"b`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.value)
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.value, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Parse(%q) = %v, want %v", tt.value, got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("Params[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, value := range []string{
		"",
		"multipart/",
		"multipart/related; boundary=\"unterminated",
		"multipart/related; type=application/xop+xml; novalue",
	} {
		t.Run(value, func(t *testing.T) {
			_, err := Parse(value)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse(%q) err = %v, want *ParseError", value, err)
			}
			if pe.Value != value {
				t.Errorf("ParseError.Value = %q, want %q", pe.Value, value)
			}
		})
	}
}

func TestParams_Require(t *testing.T) {
	p := Params{"mime-type": "multipart/mixed", "boundary": "b1"}
	if v, err := p.Require(KeyBoundary); err != nil || v != "b1" {
		t.Errorf("Require(boundary) = %q, %v", v, err)
	}
	if _, err := p.Require(KeyType); !errors.Is(err, ErrMissingParam) {
		t.Errorf("Require(type) err = %v, want ErrMissingParam", err)
	}
	if p.MimeType() != "multipart/mixed" {
		t.Errorf("MimeType = %q", p.MimeType())
	}
}

func TestIsMultipart(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"multipart/related; boundary=x", true},
		{"MULTIPART/mixed", true},
		{"  multipart/form-data", true},
		{"application/json", false},
		{"multi", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsMultipart(tt.value); got != tt.want {
			t.Errorf("IsMultipart(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestHasPrefixFold(t *testing.T) {
	if !HasPrefixFold("Application/XOP+XML; charset=utf-8", "application/xop+xml") {
		t.Error("HasPrefixFold should match regardless of case")
	}
	if HasPrefixFold("application/xml", "application/xop+xml") {
		t.Error("HasPrefixFold matched a shorter string")
	}
}
