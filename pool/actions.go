/*
actions.go - Follow-up action tokens attached to deliveries

PURPOSE:
  Every delivered account (or pack) carries a small set of opaque action
  refs the UI layer renders as controls and later dispatches back. Refs
  encode the account identifier (or the auxiliary token) so the engine
  can parse them back into release / ban / code-retrieval calls without
  interpreting any UI-level identifiers.

FORMAT:
  <kind>:<arg>
  Pack-wide kinds carry the member identifiers comma-joined.

SEE ALSO:
  - coordinator.go: Produces refs alongside deliveries
  - api/handlers.go: Dispatches parsed refs back into the engine
*/
package pool

import (
	"fmt"
	"strings"
)

// =============================================================================
// ACTION REFS
// =============================================================================

// ActionRef is an opaque follow-up token of the form "kind:arg".
type ActionRef string

// Action kinds.
const (
	ActionRelease     = "release"      // arg: identifier
	ActionBan         = "ban"          // arg: identifier
	ActionOTP         = "otp"          // arg: identifier (mail-code category)
	Action2FA         = "2fa"          // arg: auxiliary token
	ActionPackRelease = "pack_release" // arg: comma-joined identifiers
	ActionPackBan     = "pack_ban"     // arg: comma-joined identifiers
)

// Action is a parsed action ref.
type Action struct {
	Kind string
	Args []string
}

// NewActionRef builds a ref from a kind and its argument.
func NewActionRef(kind, arg string) ActionRef {
	return ActionRef(kind + ":" + arg)
}

// ParseActionRef splits a ref back into its kind and arguments.
func ParseActionRef(ref ActionRef) (Action, error) {
	kind, arg, ok := strings.Cut(string(ref), ":")
	if !ok || strings.TrimSpace(arg) == "" {
		return Action{}, fmt.Errorf("%w: %q", ErrBadActionRef, ref)
	}
	switch kind {
	case ActionRelease, ActionBan, ActionOTP, Action2FA:
		return Action{Kind: kind, Args: []string{strings.TrimSpace(arg)}}, nil
	case ActionPackRelease, ActionPackBan:
		var args []string
		for _, part := range strings.Split(arg, ",") {
			if part = strings.TrimSpace(part); part != "" {
				args = append(args, part)
			}
		}
		if len(args) == 0 {
			return Action{}, fmt.Errorf("%w: %q", ErrBadActionRef, ref)
		}
		return Action{Kind: kind, Args: args}, nil
	}
	return Action{}, fmt.Errorf("%w: unknown kind %q", ErrBadActionRef, kind)
}

// AccountActions returns the follow-up controls for a single delivered
// account: a code-retrieval action where the category supports one, then
// ban reporting and release.
func AccountActions(a Account) []ActionRef {
	var refs []ActionRef
	switch {
	case a.Category == CategoryDiscord && a.Token != "":
		refs = append(refs, NewActionRef(Action2FA, a.Token))
	case a.Category == CategoryFiveM:
		refs = append(refs, NewActionRef(ActionOTP, a.Identifier))
	}
	refs = append(refs,
		NewActionRef(ActionBan, a.Identifier),
		NewActionRef(ActionRelease, a.Identifier),
	)
	return refs
}

// PackActions returns the follow-up controls for a delivered pack.
func PackActions(p Pack) []ActionRef {
	ids := strings.Join(p.Identifiers(), ",")
	var refs []ActionRef
	if fv, ok := p[CategoryFiveM]; ok {
		refs = append(refs, NewActionRef(ActionOTP, fv.Identifier))
	}
	if dc, ok := p[CategoryDiscord]; ok && dc.Token != "" {
		refs = append(refs, NewActionRef(Action2FA, dc.Token))
	}
	refs = append(refs,
		NewActionRef(ActionPackBan, ids),
		NewActionRef(ActionPackRelease, ids),
	)
	return refs
}
