package wa

import "strings"

// InviteLinkPrefix is the fixed URL prefix of group invite links. Codes
// are stored and passed to the backend bare; links shown to callers are
// always code re-prefixed with this constant, regardless of how the
// backend formats them.
const InviteLinkPrefix = "https://chat.whatsapp.com/"

// NormalizeInviteCode strips the known link prefix from a code or URL.
func NormalizeInviteCode(raw string) string {
	return strings.TrimPrefix(strings.TrimSpace(raw), InviteLinkPrefix)
}

// InviteLink formats a code (bare or already prefixed) as a full link.
func InviteLink(code string) string {
	return InviteLinkPrefix + NormalizeInviteCode(code)
}
