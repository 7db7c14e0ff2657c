package explore

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftsec/tenantscan/internal/graph"
	"github.com/driftsec/tenantscan/internal/scan"
)

func twoContainers() []scan.Container {
	return []scan.Container{
		{Drive: graph.Drive{ID: "b!a", Name: "OneDrive", QuotaUsed: 1 << 30, QuotaTotal: 1 << 40}, Kind: scan.KindPersonal},
		{Drive: graph.Drive{ID: "b!b", Name: "Shared Library"}, Kind: scan.KindShared},
	}
}

func TestChooseContainer_Empty(t *testing.T) {
	_, err := ChooseContainer(nil, strings.NewReader(""), &bytes.Buffer{})
	assert.ErrorIs(t, err, scan.ErrNoDrives)
}

func TestChooseContainer_SingleSkipsPrompt(t *testing.T) {
	var out bytes.Buffer

	c, err := ChooseContainer(twoContainers()[:1], strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Equal(t, "b!a", c.Drive.ID)
	assert.Empty(t, out.String())
}

func TestChooseContainer_NumberedSelection(t *testing.T) {
	var out bytes.Buffer

	c, err := ChooseContainer(twoContainers(), strings.NewReader("2\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "b!b", c.Drive.ID)

	assert.Contains(t, out.String(), "[1] OneDrive")
	assert.Contains(t, out.String(), "[2] Shared Library")
	assert.Contains(t, out.String(), "no quota limit")
}

func TestChooseContainer_EmptyInputDefaultsToFirst(t *testing.T) {
	c, err := ChooseContainer(twoContainers(), strings.NewReader("\n"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "b!a", c.Drive.ID)
}

func TestChooseContainer_InvalidSelection(t *testing.T) {
	_, err := ChooseContainer(twoContainers(), strings.NewReader("9\n"), &bytes.Buffer{})
	assert.Error(t, err)

	_, err = ChooseContainer(twoContainers(), strings.NewReader("first\n"), &bytes.Buffer{})
	assert.Error(t, err)
}
