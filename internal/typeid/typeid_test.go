package typeid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDsCarryPrefix(t *testing.T) {
	cases := []struct {
		id     string
		prefix string
	}{
		{NewRenderID(), PrefixRender},
		{NewAssetID(), PrefixAsset},
		{NewSessionID(), PrefixSession},
	}
	for _, tc := range cases {
		assert.True(t, strings.HasPrefix(tc.id, tc.prefix+"_"), "got %q", tc.id)
		require.NoError(t, Validate(tc.id, tc.prefix))
	}
}

func TestValidateRejectsWrongPrefix(t *testing.T) {
	id := NewRenderID()
	err := Validate(id, PrefixAsset)
	require.Error(t, err)
	assert.Contains(t, err.Error(), PrefixAsset)
}

func TestValidateRejectsGarbage(t *testing.T) {
	assert.Error(t, Validate("not!an!id", PrefixRender))
	assert.Error(t, Validate("", PrefixRender))
}

func TestIDsAreUnique(t *testing.T) {
	assert.NotEqual(t, NewRenderID(), NewRenderID())
}
