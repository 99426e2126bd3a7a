package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionString(t *testing.T) {
	s := GetVersionString()
	assert.True(t, strings.HasPrefix(s, "Elva "))
	assert.Contains(t, s, Version)
}

func TestGetDetailedVersionString(t *testing.T) {
	s := GetDetailedVersionString()
	assert.Contains(t, s, Version)
	assert.Contains(t, s, GitCommit)
}
