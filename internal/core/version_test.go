package core

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRevision(t *testing.T) {
	revision, err := ResolveRevision([]byte(sampleChangelog), "ossec-hids")
	require.NoError(t, err)
	assert.Equal(t, uint(3), revision)
}

func TestResolveRevisionMissingPackage(t *testing.T) {
	_, err := ResolveRevision([]byte(sampleChangelog), "ossec-wui")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestCompareVersions(t *testing.T) {
	assert.Negative(t, CompareVersions("2.8-2", "2.8-3"))
	assert.Positive(t, CompareVersions("2.8.1-1", "2.8-3"))
	assert.Zero(t, CompareVersions("2.8-3", "2.8-3"))

	// Epochs order ahead of plain versions.
	assert.Positive(t, CompareVersions("1:1.0-1", "2.0-1"))
}

func TestCompareVersionsLexicalFallback(t *testing.T) {
	assert.Negative(t, CompareVersions("abc", "abd"))
	assert.Zero(t, CompareVersions("!!", "!!"))
}
