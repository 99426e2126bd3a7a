package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDecision(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Decision
	}{
		{
			name:     "plain approval",
			input:    "Send it",
			expected: DecisionApprove,
		},
		{
			name:     "approval embedded in sentence",
			input:    "ok go ahead please",
			expected: DecisionApprove,
		},
		{
			name:     "uppercase approval",
			input:    "  APPROVE  ",
			expected: DecisionApprove,
		},
		{
			name:     "plain rejection",
			input:    "cancel",
			expected: DecisionReject,
		},
		{
			name:     "rejection embedded in sentence",
			input:    "please don't send that",
			expected: DecisionReject,
		},
		{
			name:     "approval wins over rejection",
			input:    "yes, do not cancel it",
			expected: DecisionApprove,
		},
		{
			name:     "ordinary chat",
			input:    "what's the weather like",
			expected: DecisionNone,
		},
		{
			name:     "empty input",
			input:    "",
			expected: DecisionNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectDecision(tt.input))
		})
	}
}

func TestAutomationStatusMessage(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		expectedStatus string
		expectedOK     bool
	}{
		{
			name:           "linkedin notifications",
			input:          "Check my LinkedIn notifications",
			expectedStatus: "🔔 Checking LinkedIn notifications...",
			expectedOK:     true,
		},
		{
			name:           "product scraping",
			input:          "scrape the product listings from that store",
			expectedStatus: "🛒 Scraping product listings...",
			expectedOK:     true,
		},
		{
			name:           "job alerts",
			input:          "any linkedin job alerts today?",
			expectedStatus: "💼 Checking LinkedIn job alerts...",
			expectedOK:     true,
		},
		{
			name:           "website monitoring",
			input:          "check website updates for example.com",
			expectedStatus: "🔍 Monitoring website updates...",
			expectedOK:     true,
		},
		{
			name:           "competitor analysis",
			input:          "monitor competitor pricing",
			expectedStatus: "📊 Analyzing competitor data...",
			expectedOK:     true,
		},
		{
			name:           "news gathering",
			input:          "get me the latest news",
			expectedStatus: "📰 Gathering latest news...",
			expectedOK:     true,
		},
		{
			name:       "plain chat is not automation",
			input:      "tell me a joke",
			expectedOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, ok := AutomationStatusMessage(tt.input)
			assert.Equal(t, tt.expectedOK, ok)
			assert.Equal(t, tt.expectedStatus, status)
		})
	}
}

func TestAutomationPatternOrder(t *testing.T) {
	// "check my linkedin notification jobs" matches both the notification
	// and job patterns; the notification pattern comes first in the table
	status, ok := AutomationStatusMessage("check linkedin notification about jobs")
	assert.True(t, ok)
	assert.Equal(t, "🔔 Checking LinkedIn notifications...", status)
}
