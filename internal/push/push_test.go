package push

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/leanfront/internal/asset"
	"github.com/vk/leanfront/internal/registry"
)

// recordingBase captures delegated calls so tests can tell whether the
// adapter passed through or short-circuited.
type recordingBase struct {
	*registry.Registry
	browserCallsHits int
}

func (b *recordingBase) BrowserCalls(scene asset.Scene) (string, error) {
	b.browserCallsHits++
	return b.Registry.BrowserCalls(scene)
}

func newAdapter() (*Adapter, *recordingBase) {
	base := &recordingBase{Registry: registry.New(registry.DefaultPaths)}
	return New(base), base
}

func whenPtr(w asset.When) *asset.When { return &w }

func TestSetDefaultWhen(t *testing.T) {
	absent := SetDefaultWhen(asset.Item{Name: "a"}, asset.WhenLean)
	require.NotNil(t, absent.When)
	assert.Equal(t, asset.WhenLean, *absent.When)

	explicit := SetDefaultWhen(asset.Item{Name: "b", When: whenPtr(asset.WhenUser)}, asset.WhenLean)
	assert.Equal(t, asset.WhenUser, *explicit.When)

	// An explicit empty value is still a present key.
	empty := SetDefaultWhen(asset.Item{Name: "c", When: whenPtr("")}, asset.WhenLean)
	require.NotNil(t, empty.When)
	assert.Equal(t, asset.When(""), *empty.When)
}

func TestSetDefaultWhen_DoesNotMutateArgument(t *testing.T) {
	item := asset.Item{Name: "a"}
	_ = SetDefaultWhen(item, asset.WhenLean)
	assert.Nil(t, item.When)
}

func TestPushConfigured_DefaultsToLean(t *testing.T) {
	// --- Arrange ---
	a, _ := newAdapter()
	stylesheets := []asset.Item{{Name: "site"}, {Name: "editor", When: whenPtr(asset.WhenUser)}}
	scripts := []asset.Item{{Name: "legacy", When: whenPtr(asset.WhenAlways)}, {Name: "slider"}}

	// --- Act ---
	require.NoError(t, a.PushConfigured(stylesheets, scripts))

	// --- Assert ---
	got := a.Assets()
	require.Len(t, got, 4)
	assert.Equal(t, asset.KindStylesheet, got[0].Type)
	assert.Equal(t, asset.WhenLean, got[0].When)
	assert.Equal(t, asset.WhenUser, got[1].When)
	assert.Equal(t, asset.KindScript, got[2].Type)
	assert.Equal(t, asset.WhenAlways, got[2].When)
	assert.Equal(t, asset.WhenLean, got[3].When)

	anon, err := a.Filter(asset.SceneAnon)
	require.NoError(t, err)
	var anonNames []string
	for _, d := range anon {
		anonNames = append(anonNames, d.Name)
	}
	assert.Equal(t, []string{"site", "slider"}, anonNames)
}

func TestFilter_RequiresScene(t *testing.T) {
	a, _ := newAdapter()
	_, err := a.Filter("")
	assert.ErrorIs(t, err, asset.ErrInvalidArgument)
}

func TestBrowserCall_AlwaysRemappedToUser(t *testing.T) {
	a, base := newAdapter()
	require.NoError(t, a.BrowserCall(asset.WhenAlways, "apos.always()"))
	require.NoError(t, a.BrowserCall(asset.WhenLean, "apos.lean()"))

	// Query the base directly: the call must have been recorded as user.
	user, err := base.Registry.BrowserCalls(asset.SceneUser)
	require.NoError(t, err)
	assert.Equal(t, "apos.always();\n", user)

	lean, err := base.Registry.BrowserCalls(asset.SceneLean)
	require.NoError(t, err)
	assert.Equal(t, "apos.lean();\n", lean)
}

func TestBrowserCalls_AnonSuppressedWithoutDelegating(t *testing.T) {
	a, base := newAdapter()
	require.NoError(t, base.Registry.BrowserCall(asset.WhenAlways, "apos.legacy()"))

	js, err := a.BrowserCalls(asset.SceneAnon)
	require.NoError(t, err)
	assert.Empty(t, js)
	assert.Zero(t, base.browserCallsHits)

	js, err = a.BrowserCalls(asset.SceneUser)
	require.NoError(t, err)
	assert.Equal(t, "apos.legacy();\n", js)
	assert.Equal(t, 1, base.browserCallsHits)
}
