package feed

import "github.com/feedpulse/feedpulse/pkg/domain"

// RedirectConfirmThreshold is the number of consecutive fetches that must
// each start with a permanent redirect to the same target before the stored
// feed URL is promoted
const RedirectConfirmThreshold = 3

// RedirectDecision is the tracker's output for one fetch attempt
type RedirectDecision struct {
	// PromoteURL is the new canonical URL when confirmation completed, else ""
	PromoteURL string
	// PendingURL/ConfirmCount are the confirmation state to persist
	PendingURL   string
	ConfirmCount int
}

// ResolveRedirect applies the promotion rules to the redirect chain of one
// attempt. Only a permanent (301/308) first hop counts toward promotion; a
// temporary first hop, an empty chain, or a target change resets the
// confirmation state. A single observation can be transient, so promotion
// requires RedirectConfirmThreshold independent confirmations.
func ResolveRedirect(f *domain.Feed, hops []RedirectHop) RedirectDecision {
	if len(hops) == 0 || !hops[0].Permanent() {
		return RedirectDecision{}
	}

	target := hops[0].To
	count := 1
	if f.PendingRedirectURL == target {
		count = f.RedirectConfirmCount + 1
	}

	if count >= RedirectConfirmThreshold {
		return RedirectDecision{PromoteURL: target}
	}
	return RedirectDecision{PendingURL: target, ConfirmCount: count}
}
