package discord

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/PancyStudios/PancyModGo/internal/punish"
	"github.com/bwmarrin/discordgo"
)

func restError(status string, code int) error {
	return &discordgo.RESTError{
		Response: &http.Response{Status: status},
		Message:  &discordgo.APIErrorMessage{Code: code, Message: "error"},
	}
}

func TestClassifyRESTError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantGone bool
		wantNil  bool
	}{
		{"nil", nil, false, true},
		{"unknown member", restError("404 Not Found", discordgo.ErrCodeUnknownMember), true, false},
		{"unknown user", restError("404 Not Found", discordgo.ErrCodeUnknownUser), true, false},
		{"wrapped unknown member", fmt.Errorf("request: %w", restError("404 Not Found", discordgo.ErrCodeUnknownMember)), true, false},
		{"missing permissions", restError("403 Forbidden", discordgo.ErrCodeMissingPermissions), false, false},
		{"network", errors.New("connection reset"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyRESTError("ban", tt.err)
			if tt.wantNil {
				if got != nil {
					t.Errorf("classifyRESTError() = %v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("classifyRESTError() = nil, want error")
			}
			if errors.Is(got, punish.ErrSubjectGone) != tt.wantGone {
				t.Errorf("errors.Is(ErrSubjectGone) = %v, want %v", !tt.wantGone, tt.wantGone)
			}
			if !errors.Is(got, tt.err) && !tt.wantGone {
				t.Error("original error should stay in the chain")
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("spam", 10); got != "spam" {
		t.Errorf("truncate() = %v, want spam", got)
	}

	long := strings.Repeat("ñ", 600)
	got := truncate(long, maxAuditReason)
	if n := len([]rune(got)); n != maxAuditReason {
		t.Errorf("truncate() rune length = %v, want %v", n, maxAuditReason)
	}
}

func TestHasPermissions(t *testing.T) {
	tests := []struct {
		name     string
		granted  int64
		required int64
		want     bool
	}{
		{"nothing required", 0, 0, true},
		{"exact", discordgo.PermissionBanMembers, discordgo.PermissionBanMembers, true},
		{"missing", discordgo.PermissionSendMessages, discordgo.PermissionBanMembers, false},
		{"partial", discordgo.PermissionBanMembers, discordgo.PermissionBanMembers | discordgo.PermissionModerateMembers, false},
		{"admin", discordgo.PermissionAdministrator, discordgo.PermissionBanMembers, true},
	}

	for _, tt := range tests {
		if got := hasPermissions(tt.granted, tt.required); got != tt.want {
			t.Errorf("hasPermissions(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDescribePermissions(t *testing.T) {
	got := describePermissions(discordgo.PermissionBanMembers | discordgo.PermissionModerateMembers)
	if got != "Banear miembros, Aislar miembros" {
		t.Errorf("describePermissions() = %v", got)
	}

	if got := describePermissions(discordgo.PermissionViewAuditLogs); got != fmt.Sprintf("0x%x", discordgo.PermissionViewAuditLogs) {
		t.Errorf("describePermissions(unknown) = %v", got)
	}
}
