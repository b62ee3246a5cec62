package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/edgard/wonderfulgo/internal/chat"
	"github.com/edgard/wonderfulgo/internal/favorites"
	"github.com/edgard/wonderfulgo/internal/plan"
	"github.com/edgard/wonderfulgo/internal/profile"
)

// Snapshot is everything persisted for the session. The avatar is reported
// by presence only.
type Snapshot struct {
	Profile   profile.Record       `json:"profile"`
	HasAvatar bool                 `json:"has_avatar"`
	Chat      []chat.Message       `json:"chat"`
	Plans     []plan.Plan          `json:"plans"`
	Favorites []favorites.Favorite `json:"favorites"`
}

// Snapshot reads the current persisted state.
func (a *App) Snapshot(ctx context.Context) Snapshot {
	_, hasAvatar := a.Profiles.LoadAvatar(ctx)
	return Snapshot{
		Profile:   a.Profiles.Load(ctx),
		HasAvatar: hasAvatar,
		Chat:      a.Chats.List(ctx),
		Plans:     a.Plans.List(ctx),
		Favorites: a.Favorites.List(ctx),
	}
}

// Export writes the snapshot as YAML. Keys use the same names as the stored
// JSON so an export reads like the data on disk.
func (a *App) Export(ctx context.Context, w io.Writer) error {
	raw, err := json.Marshal(a.Snapshot(ctx))
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return fmt.Errorf("failed to convert snapshot: %w", err)
	}
	clearStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return enc.Close()
}

// clearStyle drops the flow style inherited from JSON so the output is block YAML.
func clearStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	if n.Kind == yaml.ScalarNode && n.Style&yaml.DoubleQuotedStyle != 0 && n.Tag == "!!str" {
		n.Style &^= yaml.DoubleQuotedStyle
	}
	for _, c := range n.Content {
		clearStyle(c)
	}
}
