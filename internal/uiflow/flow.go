package uiflow

import (
	"sort"
	"time"
)

// FlowEntry is one step of a screen flow: a screen, the clock of its
// first occurrence in the window, and the seconds until the next
// distinct screen first appears. The final step's Duration is 0.
type FlowEntry struct {
	Screen   string
	Time     time.Time
	Duration float64
}

// ScreenFlow reduces events to the ordered distinct-screen path inside
// the closed interval [start, end]. Consecutive repeats of the same
// screen collapse into the run's first occurrence.
func ScreenFlow(events []Event, start, end time.Time) []FlowEntry {
	var window []Event
	for _, ev := range events {
		if ev.Time.Before(start) || ev.Time.After(end) {
			continue
		}
		window = append(window, ev)
	}
	sort.SliceStable(window, func(i, j int) bool {
		return window[i].Time.Before(window[j].Time)
	})

	var flow []FlowEntry
	prev := ""
	for _, ev := range window {
		if ev.Screen != prev {
			flow = append(flow, FlowEntry{Screen: ev.Screen, Time: ev.Time})
			prev = ev.Screen
		}
	}

	for i := 0; i+1 < len(flow); i++ {
		flow[i].Duration = flow[i+1].Time.Sub(flow[i].Time).Seconds()
	}
	return flow
}

// Screens projects a flow onto its screen names.
func Screens(flow []FlowEntry) []string {
	names := make([]string, len(flow))
	for i, f := range flow {
		names[i] = f.Screen
	}
	return names
}
