package events

import (
	"reflect"
	"testing"

	"github.com/PancyStudios/PancyModGo/internal/audit"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/bwmarrin/discordgo"
)

func TestRegisterAll(t *testing.T) {
	client, err := discord.NewClient("test-token")
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	RegisterAll(client, audit.NewStaticResolver(nil, ""))

	if got := client.EventHandler.Count(); got != 1 {
		t.Errorf("EventHandler.Count() = %v, want 1", got)
	}
	if got := client.EventHandler.Names(); !reflect.DeepEqual(got, []string{"ready:presence"}) {
		t.Errorf("EventHandler.Names() = %v", got)
	}

	client.EventHandler.RemoveAll()
	if got := client.EventHandler.Count(); got != 0 {
		t.Errorf("Count() after RemoveAll = %v, want 0", got)
	}
}

func TestGuildsWithoutAudit(t *testing.T) {
	guilds := []*discordgo.Guild{{ID: "g1"}, {ID: "g2"}, {ID: "g3"}}

	tests := []struct {
		name     string
		resolver audit.Resolver
		want     []string
	}{
		{"no resolver", nil, nil},
		{"partial map", audit.NewStaticResolver(map[string]string{"g2": "c2"}, ""), []string{"g1", "g3"}},
		{"fallback covers all", audit.NewStaticResolver(nil, "c0"), nil},
	}

	for _, tt := range tests {
		if got := guildsWithoutAudit(guilds, tt.resolver); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("guildsWithoutAudit(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
