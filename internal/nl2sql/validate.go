package nl2sql

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rvenkat/agentdesk/internal/domain"
)

// denylist of keywords that mutate data or schema. The scan is a
// word-boundary match, not a SQL parser, and fails closed.
var denylistRe = regexp.MustCompile(`\b(INSERT|UPDATE|DELETE|DROP|ALTER|TRUNCATE|CREATE|REPLACE|ATTACH|DETACH|PRAGMA|VACUUM|REINDEX|EXEC)\b`)

// Validate enforces the read-only safety policy on a synthesized
// statement: exactly one top-level SELECT, no mutation or schema
// keywords, no statement stacking. Anything it cannot account for is
// rejected.
func Validate(stmt string) error {
	s := strings.TrimSpace(stmt)
	if s == "" {
		return fmt.Errorf("%w: empty statement", domain.ErrUnsafeQuery)
	}

	// A single trailing terminator is tolerated; anything beyond it
	// means stacked statements.
	s = strings.TrimSuffix(s, ";")
	if strings.Contains(s, ";") {
		return fmt.Errorf("%w: multiple statements", domain.ErrUnsafeQuery)
	}

	upper := strings.ToUpper(s)
	if !strings.HasPrefix(upper, "SELECT") {
		return fmt.Errorf("%w: only SELECT statements are allowed", domain.ErrUnsafeQuery)
	}
	if m := denylistRe.FindString(upper); m != "" {
		return fmt.Errorf("%w: statement contains %s", domain.ErrUnsafeQuery, m)
	}
	return nil
}
