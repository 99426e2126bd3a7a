package chat

import (
	"regexp"
	"strings"
)

// Decision is the outcome of scanning input for approval/rejection phrases
type Decision int

const (
	DecisionNone Decision = iota
	DecisionApprove
	DecisionReject
)

// Approval/rejection phrases checked against lower-cased, trimmed input.
// Matching is substring containment; approval wins when both sets match.
var (
	approvalKeywords  = []string{"send it", "approve", "yes", "confirm", "execute", "do it", "go ahead"}
	rejectionKeywords = []string{"cancel", "no", "reject", "don't send", "abort", "stop"}
)

// DetectDecision classifies input as an approval reply, a rejection reply,
// or neither
func DetectDecision(input string) Decision {
	msg := strings.ToLower(strings.TrimSpace(input))
	if containsAny(msg, approvalKeywords) {
		return DecisionApprove
	}
	if containsAny(msg, rejectionKeywords) {
		return DecisionReject
	}
	return DecisionNone
}

// IsApprovalPhrase reports whether input contains an approval phrase,
// regardless of rejection phrases
func IsApprovalPhrase(input string) bool {
	return containsAny(strings.ToLower(strings.TrimSpace(input)), approvalKeywords)
}

func containsAny(msg string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}

// automationPattern pairs a request pattern with the status line shown while
// the automation runs
type automationPattern struct {
	re     *regexp.Regexp
	status string
}

// Direct-automation request table. Ordered; first match wins. Patterns are
// applied to lower-cased input.
var automationPatterns = []automationPattern{
	{regexp.MustCompile(`check.*linkedin.*notification`), "🔔 Checking LinkedIn notifications..."},
	{regexp.MustCompile(`scrape.*product|product.*listing|find.*product`), "🛒 Scraping product listings..."},
	{regexp.MustCompile(`job.*alert|linkedin.*job|check.*job`), "💼 Checking LinkedIn job alerts..."},
	{regexp.MustCompile(`website.*update|check.*website`), "🔍 Monitoring website updates..."},
	{regexp.MustCompile(`competitor.*monitor|monitor.*competitor`), "📊 Analyzing competitor data..."},
	{regexp.MustCompile(`news.*article|scrape.*news|latest.*news`), "📰 Gathering latest news..."},
}

// AutomationStatusMessage returns the waiting status line for a
// direct-automation request, or ok=false when the input matches no pattern
// and is not direct automation.
func AutomationStatusMessage(input string) (status string, ok bool) {
	msg := strings.ToLower(input)
	for _, p := range automationPatterns {
		if p.re.MatchString(msg) {
			return p.status, true
		}
	}
	return "", false
}

// IsDirectAutomation reports whether the input triggers an automation that
// executes without an approval step
func IsDirectAutomation(input string) bool {
	_, ok := AutomationStatusMessage(input)
	return ok
}
