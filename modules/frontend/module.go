// Package frontend is the lean front-end module. It pushes the minimal
// client runtime every visitor needs and the players for widgets the site
// enables.
package frontend

import (
	"fmt"

	"github.com/vk/leanfront/internal/asset"
	"github.com/vk/leanfront/internal/config"
	"github.com/vk/leanfront/internal/player"
	"github.com/vk/leanfront/internal/push"
	"github.com/vk/leanfront/internal/request"
)

// VideoWidget is the widget type handled by the video player.
const VideoWidget = "apostrophe-video"

// Module implements push.Module for the lean front end.
type Module struct {
	// Frontend carries the enabled widget types.
	Frontend config.Frontend
	// OEmbedEndpoint is queried by the video player. Defaults to
	// DefaultOEmbedEndpoint.
	OEmbedEndpoint string
}

var _ push.Module = (*Module)(nil)

// Register pushes the "apos" runtime script and, when the video widget is
// enabled, its player script. Both ship to the lean scene.
func (m *Module) Register(p push.Pusher) error {
	lean := asset.WhenLean
	if err := p.PushAsset(asset.KindScript, "apos", asset.Item{When: &lean}); err != nil {
		return fmt.Errorf("frontend: %w", err)
	}
	if m.Frontend.HasWidget(VideoWidget) {
		if err := p.PushAsset(asset.KindScript, "video", asset.Item{When: &lean}); err != nil {
			return fmt.Errorf("frontend: %w", err)
		}
	}
	return nil
}

// RegisterPlayers installs the players of enabled widgets.
func (m *Module) RegisterPlayers(players *player.Registry, client *request.Client) {
	if m.Frontend.HasWidget(VideoWidget) {
		endpoint := m.OEmbedEndpoint
		if endpoint == "" {
			endpoint = DefaultOEmbedEndpoint
		}
		players.Register(VideoWidget, VideoPlayer(client, endpoint))
	}
}
