package classify

// Category is the semantic bucket a diagnostic file lands in.
type Category uint8

const (
	Unidentified Category = iota
	CustomerJournal
	UIJournal
	TRCTrace
	TRCError
	Registry
	ACU
	Insufficient
)

var categoryNames = [...]string{
	Unidentified:    "unidentified",
	CustomerJournal: "customer_journal",
	UIJournal:       "ui_journal",
	TRCTrace:        "trc_trace",
	TRCError:        "trc_error",
	Registry:        "registry",
	ACU:             "acu",
	Insufficient:    "insufficient_data",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unidentified"
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
