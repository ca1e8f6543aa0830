package registry

import (
	"strings"
	"testing"
	"unicode/utf16"
)

func TestParseLines(t *testing.T) {
	lines := []string{
		"Windows Registry Editor Version 5.00",
		"",
		`[HKEY_LOCAL_MACHINE\SOFTWARE\Vendor\CCDM]`,
		`"CassetteCount"=dword:00000004`,
		`@="default payload"`,
		`"LongValue"=hex:00,01,\`,
		"  02,03,\\",
		"  04,05",
		"",
		`[HKEY_LOCAL_MACHINE\SOFTWARE\Vendor\Empty]`,
		"",
		`[HKEY_LOCAL_MACHINE\SOFTWARE\Vendor\IDCU]`,
		`"Firmware"="1.2.3"`,
	}

	entries := ParseLines(lines)
	if len(entries) != 5 {
		t.Fatalf("len(entries) = %d, want 5: %+v", len(entries), entries)
	}

	if entries[0].Section != `HKEY_LOCAL_MACHINE\SOFTWARE\Vendor\CCDM` {
		t.Errorf("Section = %q", entries[0].Section)
	}
	if entries[0].Key != "CassetteCount" || entries[0].Value != "dword:00000004" {
		t.Errorf("entries[0] = %+v", entries[0])
	}
	if entries[1].Key != "@" || entries[1].Value != `"default payload"` {
		t.Errorf("default key entry = %+v", entries[1])
	}
	if entries[2].Key != "LongValue" || entries[2].Value != "hex:00,01,02,03,04,05" {
		t.Errorf("continued value = %+v", entries[2])
	}

	marker := entries[3]
	if marker.Section != `HKEY_LOCAL_MACHINE\SOFTWARE\Vendor\Empty` || marker.Key != "" || marker.Value != "" {
		t.Errorf("empty section marker = %+v", marker)
	}

	if entries[4].Key != "Firmware" || entries[4].Value != `"1.2.3"` {
		t.Errorf("entries[4] = %+v", entries[4])
	}
}

func TestParseTrailingEmptySection(t *testing.T) {
	entries := ParseLines([]string{
		"[S1]",
		`"K"="V"`,
		"[S2]",
	})
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[1].Section != "S2" || entries[1].Key != "" {
		t.Errorf("trailing marker = %+v", entries[1])
	}
}

func TestParseUTF16Export(t *testing.T) {
	text := "[S]\r\n\"K\"=\"V\"\r\n"
	units := utf16.Encode([]rune(text))
	blob := []byte{0xFF, 0xFE}
	for _, u := range units {
		blob = append(blob, byte(u), byte(u>>8))
	}

	entries := Parse(blob)
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].Section != "S" || entries[0].Key != "K" || entries[0].Value != `"V"` {
		t.Errorf("entries[0] = %+v", entries[0])
	}
}

func TestCompareChangedValue(t *testing.T) {
	a := Parse([]byte("[S]\n\"K\"=\"A\"\n"))
	b := Parse([]byte("[S]\n\"K\"=\"B\"\n"))

	d := Compare(a, b)
	if len(d.Changed) != 1 || len(d.Added) != 0 || len(d.Removed) != 0 {
		t.Fatalf("diff = %+v", d)
	}
	c := d.Changed[0]
	if c.Section != "S" || c.Key != "K" {
		t.Errorf("changed identity = %+v", c)
	}
	if c.ValueA != `"A"` || c.ValueB != `"B"` {
		t.Errorf("changed values = %q -> %q, quotes must survive", c.ValueA, c.ValueB)
	}
	if d.Identical != 0 {
		t.Errorf("Identical = %d, want 0", d.Identical)
	}
}

func TestCompareAddedRemovedIdentical(t *testing.T) {
	a := ParseLines([]string{
		"[S]",
		`"Same"="X"`,
		`"Gone"="1"`,
	})
	b := ParseLines([]string{
		"[S]",
		`"Same"="X"`,
		`"New"="2"`,
	})

	d := Compare(a, b)
	if d.Identical != 1 {
		t.Errorf("Identical = %d, want 1", d.Identical)
	}
	if len(d.Removed) != 1 || d.Removed[0].Key != "Gone" || d.Removed[0].Value != `"1"` {
		t.Errorf("Removed = %+v", d.Removed)
	}
	if len(d.Added) != 1 || d.Added[0].Key != "New" || d.Added[0].Value != `"2"` {
		t.Errorf("Added = %+v", d.Added)
	}
	if len(d.Changed) != 0 {
		t.Errorf("Changed = %+v", d.Changed)
	}
}

func TestCompareEmptySectionMarkers(t *testing.T) {
	a := Parse([]byte("[S]\n"))
	b := Parse([]byte("[S]\n\"K\"=\"V\"\n"))

	d := Compare(a, b)
	// the key-less marker row only exists on the A side
	if len(d.Removed) != 1 || d.Removed[0].Key != "" {
		t.Errorf("Removed = %+v", d.Removed)
	}
	if len(d.Added) != 1 || d.Added[0].Key != "K" {
		t.Errorf("Added = %+v", d.Added)
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"Quoted"`, "Quoted"},
		{"@", "@"},
		{"  bare  ", "bare"},
		{`"`, `"`},
	}
	for _, tt := range tests {
		if got := normalizeKey(tt.in); got != tt.want {
			t.Errorf("normalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseIgnoresPreamble(t *testing.T) {
	entries := ParseLines(strings.Split("stray=pair before any section\n[S]\n\"K\"=\"V\"", "\n"))
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1; preamble pairs must be ignored", len(entries))
	}
}
