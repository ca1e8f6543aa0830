package archive

import "testing"

func TestRelevant(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"logs/CustomerJournal20240101.jrn", true},
		{"UI_Journal_20240101.txt", true},
		{"traces/morning.trc", true},
		{"TRC_ERROR.PRN", true},
		{"config/reg.txt", true},
		{"registry_export.dat", true},
		{"acu/JDD_config.xml", true},
		{"X3Config.xsd", true},
		{"nested/bundle.zip", true},
		{"photos/holiday.jpg", false},
		{"docs/readme.md", false},
		{"__MACOSX/logs/journal.jrn", false},
		{"logs/.DS_Store", false},
		{"Thumbs.db", false},
		{"logs/.hidden.jrn", false},
		{"desktop.ini", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Relevant(tt.name); got != tt.want {
				t.Errorf("Relevant(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
