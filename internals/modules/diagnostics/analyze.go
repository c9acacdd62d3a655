package diagnostics

import (
	"connwatch/internals/modules/probe"
)

// Analyze derives the reachable set, the timing breakdown and the
// suggestions from one result per endpoint. results[i] belongs to
// endpoints[i]. Timing comes from the first non-beacon result that has one,
// whether or not that probe succeeded.
func Analyze(endpoints []probe.Endpoint, results []probe.Result, th Thresholds) Result {
	out := Result{
		Reachable:   []string{},
		Suggestions: []string{},
	}
	seen := make(map[string]struct{})
	suggest := func(s ...string) {
		for _, v := range s {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out.Suggestions = append(out.Suggestions, v)
		}
	}

	for i, ep := range endpoints {
		if i >= len(results) {
			break
		}
		res := results[i]

		// a failed fetch still carries the phases it got through
		if out.Timing == nil && ep.Mode != probe.ModeBeacon && res.Timing != nil {
			t := *res.Timing
			out.Timing = &t
		}

		if res.Succeeded {
			out.Reachable = appendUnique(out.Reachable, ep.Name)
		}
	}

	switch n := len(out.Reachable); {
	case n == 0:
		suggest(SuggestPowerCycle, SuggestOtherDevices, SuggestContactISP)
	case n < countDistinct(endpoints):
		suggest(SuggestServiceDown, SuggestRetryLater)
	}

	if out.Timing != nil {
		if out.Timing.DNSMs >= th.DNSSlowMs {
			suggest(SuggestChangeDNS)
		}
		if out.Timing.ConnectMs >= th.ConnectSlowMs {
			suggest(SuggestFirewall)
		}
	}

	return out
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}

func countDistinct(endpoints []probe.Endpoint) int {
	names := make(map[string]struct{}, len(endpoints))
	for _, ep := range endpoints {
		names[ep.Name] = struct{}{}
	}
	return len(names)
}
