package registry

// Change records a key present in both exports with different values.
type Change struct {
	Section string
	Key     string
	ValueA  string
	ValueB  string
}

// Diff is the outcome of comparing two exports. Removed entries carry
// the first export's value, Added entries the second's.
type Diff struct {
	Added     []Entry
	Removed   []Entry
	Changed   []Change
	Identical int
}

type entryKey struct {
	section string
	key     string
}

// Compare joins two entry lists on (section, key). Output order follows
// the first export for removed/changed and the second for added, so
// repeated comparisons of the same files render identically.
func Compare(a, b []Entry) Diff {
	amap := index(a)
	bmap := index(b)

	var d Diff
	seen := make(map[entryKey]struct{}, len(a))
	for _, e := range a {
		k := entryKey{e.Section, e.Key}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		be, ok := bmap[k]
		switch {
		case !ok:
			d.Removed = append(d.Removed, amap[k])
		case amap[k].Value == be.Value:
			d.Identical++
		default:
			d.Changed = append(d.Changed, Change{
				Section: e.Section,
				Key:     e.Key,
				ValueA:  amap[k].Value,
				ValueB:  be.Value,
			})
		}
	}

	seen = make(map[entryKey]struct{}, len(b))
	for _, e := range b {
		k := entryKey{e.Section, e.Key}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		if _, ok := amap[k]; !ok {
			d.Added = append(d.Added, bmap[k])
		}
	}
	return d
}

func index(entries []Entry) map[entryKey]Entry {
	m := make(map[entryKey]Entry, len(entries))
	for _, e := range entries {
		m[entryKey{e.Section, e.Key}] = e
	}
	return m
}
