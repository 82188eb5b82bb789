package livefeed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/leanfront/internal/player"
	"golang.org/x/net/html"
)

func TestDecodeUpdate(t *testing.T) {
	tests := []struct {
		name    string
		data    []any
		want    Update
		wantErr bool
	}{
		{
			name: "object payload",
			data: []any{map[string]any{"target": "main", "html": "<p>hi</p>"}},
			want: Update{Target: "main", HTML: "<p>hi</p>"},
		},
		{
			name: "json string payload",
			data: []any{`{"target":"main","html":""}`},
			want: Update{Target: "main", HTML: ""},
		},
		{name: "no payload", data: nil, wantErr: true},
		{name: "not an object", data: []any{[]any{1}}, wantErr: true},
		{name: "bad json", data: []any{`{"target":`}, wantErr: true},
		{name: "missing target", data: []any{map[string]any{"html": "x"}}, wantErr: true},
		{name: "missing html", data: []any{map[string]any{"target": "main"}}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeUpdate(tc.data...)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestApply_ReplacesChildren(t *testing.T) {
	doc, err := player.ParseDocument(strings.NewReader(`<div id="main"><p>old</p><p>older</p></div>`))
	require.NoError(t, err)

	el, err := Apply(doc.Root, Update{Target: "main", HTML: "<span>new</span>"})
	require.NoError(t, err)

	require.NotNil(t, el.FirstChild)
	assert.Equal(t, "span", el.FirstChild.Data)
	assert.Nil(t, el.FirstChild.NextSibling)
}

func TestApply_UnknownTarget(t *testing.T) {
	doc, err := player.ParseDocument(strings.NewReader(`<div id="main"></div>`))
	require.NoError(t, err)

	_, err = Apply(doc.Root, Update{Target: "nope", HTML: "<p></p>"})
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestHandler_PlaysInjectedWidgets(t *testing.T) {
	// --- Arrange ---
	doc, err := player.ParseDocument(strings.NewReader(
		`<div data-apos-widget data='{"type":"counter"}'></div><section id="live"></section>`))
	require.NoError(t, err)

	var played []*html.Node
	players := player.NewRegistry()
	players.Register("counter", func(_ context.Context, el *html.Node, _, _ map[string]any) error {
		played = append(played, el)
		return nil
	})
	loop := player.NewLoop()
	d := player.New(doc, players)
	f := New(Config{}, doc, d, loop)

	// --- Act ---
	f.Handler(context.Background())(map[string]any{
		"target": "live",
		"html":   `<div data-apos-widget data='{"type":"counter"}'>fresh</div>`,
	})
	loop.Drain()

	// --- Assert ---
	require.Len(t, played, 1, "only the injected widget is played")
	assert.Equal(t, "fresh", played[0].FirstChild.Data)
}

func TestHandler_IgnoresMalformed(t *testing.T) {
	doc, err := player.ParseDocument(strings.NewReader(`<div id="live"></div>`))
	require.NoError(t, err)
	loop := player.NewLoop()
	f := New(Config{}, doc, player.New(doc, player.NewRegistry()), loop)

	f.Handler(context.Background())("not json")
	f.Handler(context.Background())(map[string]any{"target": "missing", "html": "<p></p>"})

	assert.Equal(t, 1, loop.Drain())
}

func TestConnectError(t *testing.T) {
	cause := errors.New("refused")

	assert.Error(t, connectError())
	assert.Same(t, cause, connectError(cause))
	assert.EqualError(t, connectError("handshake failed"), "handshake failed")
}

func TestHandler_EnhanceAfterStartRunsOnLoop(t *testing.T) {
	doc, err := player.ParseDocument(strings.NewReader(`<section id="live"></section>`))
	require.NoError(t, err)
	played := 0
	players := player.NewRegistry()
	players.Register("counter", func(context.Context, *html.Node, map[string]any, map[string]any) error {
		played++
		return nil
	})
	loop := player.NewLoop()
	d := player.New(doc, players)
	d.Start(context.Background(), loop)
	loop.Drain()
	f := New(Config{}, doc, d, loop)

	f.Handler(context.Background())(map[string]any{
		"target": "live",
		"html":   `<div data-apos-widget="1" data='{"type":"counter"}'></div>`,
	})

	assert.Equal(t, 2, loop.Drain(), "swap and scan are separate loop ticks")
	assert.Equal(t, 1, played)
}

func TestNew_Defaults(t *testing.T) {
	f := New(Config{URL: "http://localhost/socket.io/"}, nil, nil, nil)
	assert.Equal(t, DefaultEvent, f.cfg.Event)
	assert.Equal(t, DefaultConnectTimeout, f.cfg.ConnectTimeout)
}
