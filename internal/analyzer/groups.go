package analyzer

import "github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"

// eventGroups partitions events by a string key while remembering first-seen
// key order, so detector output is deterministic for a fixed input.
type eventGroups struct {
	order []string
	byKey map[string][]contracts.Event
}

func newEventGroups() *eventGroups {
	return &eventGroups{byKey: make(map[string][]contracts.Event)}
}

func (g *eventGroups) add(key string, e contracts.Event) {
	if _, seen := g.byKey[key]; !seen {
		g.order = append(g.order, key)
	}
	g.byKey[key] = append(g.byKey[key], e)
}

// each calls fn for every partition in first-seen order.
func (g *eventGroups) each(fn func(key string, evts []contracts.Event)) {
	for _, key := range g.order {
		fn(key, g.byKey[key])
	}
}
