package capabilities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestComposeDefaults(t *testing.T) {
	t.Parallel()

	d := Compose(Flags{})
	assert.Equal(t, Descriptor{Completions: true}, d)
}

func TestComposeAllExplicit(t *testing.T) {
	t.Parallel()

	t.Run("all true", func(t *testing.T) {
		t.Parallel()
		f := Flags{
			Tools:                boolPtr(true),
			ToolsListChanged:     boolPtr(true),
			Resources:            boolPtr(true),
			ResourcesSubscribe:   boolPtr(true),
			ResourcesListChanged: boolPtr(true),
			Prompts:              boolPtr(true),
			PromptsListChanged:   boolPtr(true),
			Logging:              boolPtr(true),
			Completions:          boolPtr(true),
		}
		assert.Equal(t, Descriptor{
			Tools:                true,
			ToolsListChanged:     true,
			Resources:            true,
			ResourcesSubscribe:   true,
			ResourcesListChanged: true,
			Prompts:              true,
			PromptsListChanged:   true,
			Logging:              true,
			Completions:          true,
		}, Compose(f))
	})

	t.Run("all false including completions", func(t *testing.T) {
		t.Parallel()
		f := Flags{
			Tools:                boolPtr(false),
			ToolsListChanged:     boolPtr(false),
			Resources:            boolPtr(false),
			ResourcesSubscribe:   boolPtr(false),
			ResourcesListChanged: boolPtr(false),
			Prompts:              boolPtr(false),
			PromptsListChanged:   boolPtr(false),
			Logging:              boolPtr(false),
			Completions:          boolPtr(false),
		}
		assert.Equal(t, Descriptor{}, Compose(f))
	})
}

func TestComposePassesSubFlagsThrough(t *testing.T) {
	t.Parallel()

	d := Compose(Flags{
		Resources:          boolPtr(false),
		ResourcesSubscribe: boolPtr(true),
		ToolsListChanged:   boolPtr(true),
	})

	assert.False(t, d.Resources)
	assert.True(t, d.ResourcesSubscribe)
	assert.False(t, d.Tools)
	assert.True(t, d.ToolsListChanged)
}

func TestServerCapabilities(t *testing.T) {
	t.Parallel()

	t.Run("defaults advertise completions only", func(t *testing.T) {
		t.Parallel()
		caps := Compose(Flags{}).ServerCapabilities()

		data, err := json.Marshal(caps)
		require.NoError(t, err)
		assert.JSONEq(t, `{"completions":{}}`, string(data))
	})

	t.Run("enabled capabilities carry their sub-flags", func(t *testing.T) {
		t.Parallel()
		caps := Descriptor{
			Tools:                true,
			ToolsListChanged:     true,
			Resources:            true,
			ResourcesSubscribe:   true,
			ResourcesListChanged: false,
			Prompts:              true,
			Logging:              true,
		}.ServerCapabilities()

		require.NotNil(t, caps.Tools)
		assert.True(t, caps.Tools.ListChanged)
		require.NotNil(t, caps.Resources)
		assert.True(t, caps.Resources.Subscribe)
		assert.False(t, caps.Resources.ListChanged)
		require.NotNil(t, caps.Prompts)
		assert.False(t, caps.Prompts.ListChanged)
		assert.NotNil(t, caps.Logging)
		assert.Nil(t, caps.Completions)
	})

	t.Run("orphaned sub-flag has no wire effect", func(t *testing.T) {
		t.Parallel()
		caps := Descriptor{ResourcesSubscribe: true}.ServerCapabilities()
		assert.Nil(t, caps.Resources)
	})
}

func TestEnabled(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"completions"}, Compose(Flags{}).Enabled())
	assert.Equal(t,
		[]string{"tools", "prompts", "logging"},
		Descriptor{Tools: true, Prompts: true, Logging: true}.Enabled(),
	)
	assert.Empty(t, Descriptor{}.Enabled())
}
