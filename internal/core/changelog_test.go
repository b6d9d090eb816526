package core

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleChangelog = `ossec-hids (2.8-3) unstable; urgency=low

  * Fix init script ordering.

 -- Release Bot <releases@example.com>  Tue, 01 Jul 2014 14:35:54 +0000

ossec-hids (2.8-2) unstable; urgency=low

  * Rebuild against new openssl.

 -- Release Bot <releases@example.com>  Mon, 30 Jun 2014 09:12:00 +0000
`

func TestParseLatestEntry(t *testing.T) {
	cl, err := Parse([]byte(sampleChangelog), "ossec-hids")
	require.NoError(t, err)

	assert.Equal(t, "ossec-hids", cl.Source)
	assert.Equal(t, "2.8", cl.Upstream)
	assert.Equal(t, uint(3), cl.Revision)
	assert.Equal(t, []string{"unstable"}, cl.Distributions)
	assert.Equal(t, "low", cl.Urgency)
	assert.Empty(t, cl.Preamble)
}

func TestParseStopsBeforeNextEntry(t *testing.T) {
	cl, err := Parse([]byte(sampleChangelog), "ossec-hids")
	require.NoError(t, err)

	for _, line := range cl.Body {
		assert.NotContains(t, line, "2.8-2")
	}
	require.NotEmpty(t, cl.Rest)
	assert.Equal(t, "ossec-hids (2.8-2) unstable; urgency=low", cl.Rest[0])
}

func TestParseMultipleDistributions(t *testing.T) {
	content := "ossec-hids (2.8-3) trusty xenial; urgency=medium\n\n -- X <x@y>  Tue, 01 Jul 2014 14:35:54 +0000\n"
	cl, err := Parse([]byte(content), "ossec-hids")
	require.NoError(t, err)

	assert.Equal(t, []string{"trusty", "xenial"}, cl.Distributions)
	assert.Equal(t, "medium", cl.Urgency)
}

func TestParseSkipsOtherPackages(t *testing.T) {
	content := "ossec-wui (0.9-1) unstable; urgency=low\n\n" + sampleChangelog
	cl, err := Parse([]byte(content), "ossec-hids")
	require.NoError(t, err)

	assert.Equal(t, "ossec-hids", cl.Source)
	assert.Equal(t, uint(3), cl.Revision)
	require.Len(t, cl.Preamble, 2)
	assert.Equal(t, "ossec-wui (0.9-1) unstable; urgency=low", cl.Preamble[0])
}

func TestParseSkipsNativeVersionEntry(t *testing.T) {
	// An entry without a debian revision separator does not count as the
	// latest entry; the scan keeps going.
	content := "ossec-hids (2.9) unstable; urgency=low\n\n" + sampleChangelog
	cl, err := Parse([]byte(content), "ossec-hids")
	require.NoError(t, err)
	assert.Equal(t, uint(3), cl.Revision)
}

func TestParseMissingEntry(t *testing.T) {
	_, err := Parse([]byte(sampleChangelog), "no-such-package")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestParseMalformedRevision(t *testing.T) {
	for _, version := range []string{"2.8-3ubuntu1", "2.8-", "2.8-beta"} {
		content := "ossec-hids (" + version + ") unstable; urgency=low\n"
		_, err := Parse([]byte(content), "ossec-hids")
		require.Error(t, err, version)
		assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err), version)
	}
}

func TestParseRevisionUsesLastSeparator(t *testing.T) {
	content := "my-pkg (1.0-rc1-4) unstable; urgency=low\n"
	cl, err := Parse([]byte(content), "my-pkg")
	require.NoError(t, err)

	assert.Equal(t, "1.0-rc1", cl.Upstream)
	assert.Equal(t, uint(4), cl.Revision)
}

func TestSerializeRoundTrip(t *testing.T) {
	cl, err := Parse([]byte(sampleChangelog), "ossec-hids")
	require.NoError(t, err)

	out := string(cl.Serialize())
	if diff := cmp.Diff(sampleChangelog, out); diff != "" {
		t.Fatalf("serialized changelog mismatch (-want +got):\n%s", diff)
	}
}

func TestSerializeRebuildsHeader(t *testing.T) {
	cl, err := Parse([]byte(sampleChangelog), "ossec-hids")
	require.NoError(t, err)

	cl.Distributions = []string{"trusty"}
	out := string(cl.Serialize())
	assert.Contains(t, out, "ossec-hids (2.8-3) trusty; urgency=low")
	assert.Contains(t, out, "ossec-hids (2.8-2) unstable; urgency=low")
}
