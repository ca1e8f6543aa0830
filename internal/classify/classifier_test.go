package classify

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

var customerLines = []string{
	"10:00:01 3201 Transaction no. 'T100' started",
	"10:00:02 3217 Function 'COUT' selected",
	"10:00:03 3207 Card inserted",
	"10:00:04 3220 Amount entered 200",
	"10:00:05 3207 Notes presented",
	"10:00:06 3202 Transaction end-state'N'",
}

var uiLines = []string{
	`10:00:01 312 GUIAPP > [1001] - WelcomeScreen action:{"lang":"en"}`,
	`10:00:02 313 GUIAPP < [1001] - WelcomeScreen result:{"ok":1}`,
	`10:00:03 314 GUIAPP > [1002] - PinEntry action:{"masked":true}`,
	`10:00:04 315 GUIAPP < [1002] - PinEntry result:{"ok":1}`,
	`10:00:05 316 GUIAPP * [1003] - AmountSelect action:{"amount":200}`,
	`10:00:06 317 GUIAPP > [1004] - Dispense action:{"notes":4}`,
}

var traceLines = []string{
	"10:00:00.11 CCDM PID:cdm.core Data: 01 02 03",
	"10:00:00.32 CCDM PID:cdm.core Data: 04 05 06",
	"10:00:00.54 IDCU PID:idcu.core Data: 0A 0B",
	"10:00:01.02 CCDM PID:cdm.core Data: 07",
	"10:00:01.40 SIUT PID:siu.core Data: FF",
	"10:00:02.17 CCDM PID:cdm.core Data: 08 09",
}

var errorHeaderLines = []string{
	"01/15 123456 10:00:01.123 CCDM HOST PID:proc.mod Data:17 motor stalled",
	"01/15 123456 10:00:02.456 CCDM HOST PID:proc.mod Data:18 retry",
	"01/15 123457 10:00:03.789 IDCU HOST PID:proc.mod Data:19 card jam",
	"01/15 123458 10:00:04.111 CCDM HOST PID:proc.mod Data:20 shutter",
	"01/15 123459 10:00:05.222 SIUT HOST PID:proc.mod Data:21 sensor",
}

func doc(groups ...[]string) []byte {
	var all []string
	for _, g := range groups {
		all = append(all, g...)
	}
	return []byte(strings.Join(all, "\n"))
}

func newClassifier() *Classifier {
	return New(zerolog.Nop(), DefaultConfig())
}

func TestDetectorScores(t *testing.T) {
	ui := uiDetector{need: 4}
	if got := ui.Score(uiLines[0]); got != 5 {
		t.Errorf("ui score = %d, want 5", got)
	}
	if got := ui.Score(customerLines[0]); got != 0 {
		t.Errorf("ui score on customer line = %d, want 0", got)
	}

	cust := customerDetector{need: 4}
	if got := cust.Score(customerLines[0]); got != 5 {
		t.Errorf("customer score = %d, want 5", got)
	}
	if got := cust.Score(uiLines[0]); got != 0 {
		t.Errorf("customer score on ui line = %d, want 0", got)
	}
	if got := cust.Score("********"); got != 0 {
		t.Errorf("customer score on separator line = %d, want 0", got)
	}

	var trace traceDetector
	if got := trace.Score(traceLines[0]); got != 3 {
		t.Errorf("trace score = %d, want 3", got)
	}

	var errs errorDetector
	if got := errs.Score(errorHeaderLines[0]); got != 1 {
		t.Errorf("error score = %d, want 1", got)
	}
	if !errs.Header(errorHeaderLines[0]) {
		t.Error("strict header should match")
	}
	if got := errs.Score("*** Running diagnostics pass 2"); got != 1 {
		t.Errorf("banner score = %d, want 1", got)
	}
	if errs.Header("*** Running diagnostics pass 2") {
		t.Error("banner is not a strict header")
	}
}

func TestClassifyStructural(t *testing.T) {
	tests := []struct {
		name string
		mode Mode
		want Category
	}{
		{"logs/reg.txt", ModeFull, Registry},
		{"REGISTRY_Dump.TXT", ModeFull, Registry},
		{"export.reg", ModeFull, Registry},
		{"settings/Registry/device.txt", ModeFull, Registry},
		{"JDDConfig.xml", ModeFull, ACU},
		{"schemas/X3Types.xsd", ModeFull, ACU},
		{"logs/CustomerJournal/20240101.jrn", ModeFull, CustomerJournal},
		{"logs/UI_Journal/20240101.jrn", ModeFull, UIJournal},
		{"Trace/device.trc", ModeFull, TRCTrace},
		{"Error/dump.prn", ModeFull, TRCError},
		{"logs/reg.txt", ModeRegistry, Registry},
		{"logs/CustomerJournal/20240101.jrn", ModeRegistry, Unidentified},
		{"JDDConfig.xml", ModeRegistry, Unidentified},
	}

	c := newClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.name, nil, tt.mode); got != tt.want {
				t.Errorf("Classify(%q, mode=%q) = %v, want %v", tt.name, tt.mode, got, tt.want)
			}
		})
	}
}

func TestClassifyContent(t *testing.T) {
	tests := []struct {
		name string
		file string
		data []byte
		want Category
	}{
		{"customer jrn", "cj.jrn", doc(customerLines), CustomerJournal},
		{"ui jrn", "ui.jrn", doc(uiLines), UIJournal},
		{"ui outranks customer", "mixed.jrn", doc(uiLines, customerLines[:5]), UIJournal},
		{"trace prn", "t.prn", doc(traceLines), TRCTrace},
		{"error prn", "e.prn", doc(errorHeaderLines), TRCError},
		{"too short", "short.jrn", doc(customerLines[:3]), Insufficient},
		{"low confidence", "weak.jrn", doc(customerLines[:4], []string{"noise line one", "noise line two"}), Unidentified},
		{"passive extension", "data.json", doc(customerLines), Unidentified},
		{"generic floor met", "journal.log", doc(customerLines, customerLines), CustomerJournal},
		{"generic floor missed", "journal.log", doc(customerLines, customerLines[:2]), Unidentified},
	}

	c := newClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.file, tt.data, ModeFull); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}

// A .prn file carrying enough strict error headers is an error log even
// when the looser trace pattern accumulates a higher total, because the
// headers themselves satisfy the trace indicators too.
func TestClassifyHeaderDominatesTrace(t *testing.T) {
	data := doc(errorHeaderLines, traceLines, traceLines)

	c := newClassifier()
	if got := c.Classify("dump.prn", data, ModeFull); got != TRCError {
		t.Fatalf("Classify = %v, want %v", got, TRCError)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	data := doc(uiLines)
	c := newClassifier()

	first := c.Classify("ui.jrn", data, ModeFull)
	for i := 0; i < 3; i++ {
		if got := c.Classify("ui.jrn", data, ModeFull); got != first {
			t.Fatalf("run %d: Classify = %v, want %v", i, got, first)
		}
	}
}

func TestCategoryString(t *testing.T) {
	if got := CustomerJournal.String(); got != "customer_journal" {
		t.Errorf("String = %q", got)
	}
	if got := Category(200).String(); got != "unidentified" {
		t.Errorf("out of range String = %q", got)
	}
}
