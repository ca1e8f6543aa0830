package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/termlens/termlens/internal/journal"
)

// mappingXML mirrors the configuration file terminals ship alongside
// their journals. The element names are fixed by the vendor format.
type mappingXML struct {
	XMLName      xml.Name `xml:"configuration"`
	Transactions []struct {
		Key   string `xml:"key"`
		Value string `xml:"value"`
	} `xml:"transactionList>transaction"`
	Journal struct {
		Start string `xml:"starttransaction"`
		End   string `xml:"endtransaction"`
		Chain string `xml:"chainingtransaction"`
	} `xml:"customerJournalParsing"`
}

// LoadMapping reads a vendor transaction-mapping XML file and returns
// the segmentation rules it defines.
func LoadMapping(path string) (journal.Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return journal.Rules{}, fmt.Errorf("read mapping: %w", err)
	}
	return ParseMapping(data)
}

// ParseMapping decodes vendor mapping XML. The chaining list is
// optional; start and end lists must name at least one identifier each.
func ParseMapping(data []byte) (journal.Rules, error) {
	var m mappingXML
	if err := xml.Unmarshal(data, &m); err != nil {
		return journal.Rules{}, fmt.Errorf("parse mapping: %w", err)
	}

	rules := journal.Rules{
		StartIDs:  splitIDs(m.Journal.Start),
		EndIDs:    splitIDs(m.Journal.End),
		ChainIDs:  splitIDs(m.Journal.Chain),
		TypeNames: make(map[string]string, len(m.Transactions)),
	}
	for _, t := range m.Transactions {
		key := strings.TrimSpace(t.Key)
		if key == "" {
			continue
		}
		rules.TypeNames[key] = strings.TrimSpace(t.Value)
	}

	if len(rules.StartIDs) == 0 {
		return journal.Rules{}, fmt.Errorf("mapping defines no start transaction IDs")
	}
	if len(rules.EndIDs) == 0 {
		return journal.Rules{}, fmt.Errorf("mapping defines no end transaction IDs")
	}
	return rules, nil
}

// splitIDs breaks a comma-separated ID list, trimming whitespace and
// dropping empty items.
func splitIDs(s string) []string {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}
