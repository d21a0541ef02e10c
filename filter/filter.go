// Package filter selects API results with expr-lang expressions such as
//
//	WarWins > 100 && hasLabel("Clan Wars")
//
// Expressions compile once and are evaluated against an environment built
// from each item by an EnvFunc (ClanEnv, MemberEnv, WarLogEnv, WarMemberEnv,
// LocationEnv). Large inputs are evaluated concurrently.
package filter

import (
	"context"
)

// Select applies filter to items using the manager's evaluator. A nil
// filter returns items unchanged.
func Select[T any](ctx context.Context, m *Manager, filter CompiledFilter, items []T, env EnvFunc[T]) ([]T, error) {
	if filter == nil {
		return items, nil
	}
	return Apply(ctx, m.Evaluator(), filter, items, env)
}
