// Package pipeline orchestrates a full analysis run: extract the
// archive, classify everything into buckets, then fan the bucket files
// out to the matching parsers and assemble the run bundle.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/termlens/termlens/internal/archive"
	"github.com/termlens/termlens/internal/classify"
	"github.com/termlens/termlens/internal/config"
	"github.com/termlens/termlens/internal/counters"
	"github.com/termlens/termlens/internal/journal"
	"github.com/termlens/termlens/internal/registry"
	"github.com/termlens/termlens/internal/report"
	"github.com/termlens/termlens/internal/textenc"
	"github.com/termlens/termlens/internal/uiflow"
)

// Analyzer wires the parsers together for one configuration. It is
// safe for concurrent use; per-run state lives in the bundle.
type Analyzer struct {
	log        zerolog.Logger
	reader     *archive.Reader
	classifier *classify.Classifier
	segmenter  *journal.Segmenter
	uiParser   *uiflow.Parser
	extractor  *counters.Extractor
	workers    int
}

// NewAnalyzer builds an Analyzer from tool settings and segmentation
// rules.
func NewAnalyzer(log zerolog.Logger, tool config.Tool, rules journal.Rules) *Analyzer {
	workers := tool.Workers
	if workers <= 0 {
		workers = 1
	}
	return &Analyzer{
		log:        log,
		reader:     archive.NewReader(log, tool.MaxDepth),
		classifier: classify.New(log, tool.Classifier()),
		segmenter:  journal.NewSegmenter(log, rules),
		uiParser:   uiflow.NewParser(log),
		extractor:  counters.NewExtractor(log, tool.CounterMarker),
		workers:    workers,
	}
}

// AnalyzeArchive runs the full pipeline over raw archive bytes and
// returns the assembled bundle. Files that fail to parse degrade to
// empty results; only an unreadable archive or cancellation aborts.
func (a *Analyzer) AnalyzeArchive(ctx context.Context, name string, data []byte) (*report.Bundle, error) {
	files, err := a.reader.Extract(data, archive.Relevant)
	if err != nil {
		return nil, err
	}

	buckets := a.classifyBytes(ctx, files, classify.ModeFull)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := &report.Bundle{
		RunID:        uuid.NewString(),
		Archive:      name,
		CreatedAt:    time.Now().UTC(),
		Buckets:      buckets,
		Transactions: make(map[string][]report.TransactionRecord),
		Flows:        make(map[string][]report.ScreenFlowRecord),
		Counters:     make(map[string][]report.CounterBlockRecord),
	}

	var all []report.TransactionRecord
	for _, fname := range buckets[classify.CustomerJournal.String()] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, _ := textenc.DecodeChain(files[fname], textenc.JournalChain)
		txns := a.segmenter.Segment(journal.ParseLines(text), stem(fname))
		recs := report.TransactionRecords(txns)
		b.Transactions[fname] = recs
		all = append(all, recs...)
	}

	for _, fname := range buckets[classify.UIJournal.String()] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		events := a.uiParser.Parse(fname, files[fname])
		if len(events) == 0 {
			continue
		}
		start, end := eventWindow(events)
		b.Flows[fname] = report.FlowRecords(uiflow.ScreenFlow(events, start, end))
	}

	traceFiles := append([]string{}, buckets[classify.TRCTrace.String()]...)
	traceFiles = append(traceFiles, buckets[classify.TRCError.String()]...)
	sort.Strings(traceFiles)
	for _, fname := range traceFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, _ := textenc.DecodeChain(files[fname], textenc.JournalChain)
		if blocks := a.extractor.Extract(text); len(blocks) > 0 {
			b.Counters[fname] = report.CounterRecords(blocks)
		}
	}

	if regs := buckets[classify.Registry.String()]; len(regs) >= 2 {
		if len(regs) > 2 {
			a.log.Info().Int("count", len(regs)).Msg("more than two registry exports, diffing the first pair")
		}
		d := registry.Compare(registry.Parse(files[regs[0]]), registry.Parse(files[regs[1]]))
		b.RegistryDiffs = append(b.RegistryDiffs, report.NewRegistryDiffRecord(regs[0], regs[1], d))
	}

	b.Stats = report.ComputeDurationStats(all)
	b.Discarded = a.segmenter.Discarded()
	return b, nil
}

// ClassifyDir classifies the files under dir that match the glob
// pattern. An empty pattern means every file. Returned paths are
// relative to dir.
func (a *Analyzer) ClassifyDir(ctx context.Context, dir, pattern string, mode classify.Mode) (map[string][]string, error) {
	if pattern == "" {
		pattern = "**/*"
	}
	matches, err := doublestar.FilepathGlob(filepath.Join(dir, pattern), doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("expand pattern: %w", err)
	}
	sort.Strings(matches)

	buckets := a.pool(ctx, matches, func(path string) classify.Category {
		return a.classifier.ClassifyFile(path, mode)
	})

	for cat, paths := range buckets {
		for i, p := range paths {
			if rel, err := filepath.Rel(dir, p); err == nil {
				paths[i] = rel
			}
		}
		sort.Strings(paths)
		buckets[cat] = paths
	}
	return buckets, ctx.Err()
}

// classifyBytes fans in-memory files out to the classifier pool.
func (a *Analyzer) classifyBytes(ctx context.Context, files map[string][]byte, mode classify.Mode) map[string][]string {
	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)

	return a.pool(ctx, names, func(name string) classify.Category {
		return a.classifier.Classify(name, files[name], mode)
	})
}

// pool runs fn over names with a bounded worker pool, observing
// cancellation between files, and groups the results by category.
func (a *Analyzer) pool(ctx context.Context, names []string, fn func(string) classify.Category) map[string][]string {
	type result struct {
		name string
		cat  classify.Category
	}
	jobs := make(chan string)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < a.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				results <- result{name: name, cat: fn(name)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, name := range names {
			select {
			case jobs <- name:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	buckets := make(map[string][]string)
	for r := range results {
		key := r.cat.String()
		buckets[key] = append(buckets[key], r.name)
	}
	for _, bucket := range buckets {
		sort.Strings(bucket)
	}
	return buckets
}

// eventWindow finds the earliest and latest event clocks, bounding the
// full-file screen flow.
func eventWindow(events []uiflow.Event) (time.Time, time.Time) {
	start, end := events[0].Time, events[0].Time
	for _, ev := range events[1:] {
		if ev.Time.Before(start) {
			start = ev.Time
		}
		if ev.Time.After(end) {
			end = ev.Time
		}
	}
	return start, end
}

func stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
