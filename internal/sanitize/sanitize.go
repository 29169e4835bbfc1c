// Package sanitize normalises integrand text and parses it.
package sanitize

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/njchilds90/integral/internal/symbolic"
)

var (
	ErrEmpty         = errors.New("empty")
	ErrNotUnderstood = errors.New("not understood")
)

// Rewrite applies the surface rewrites done before parsing. Every "ln("
// becomes "log(", including one that ends a longer identifier.
func Rewrite(text string) string {
	return strings.ReplaceAll(norm.NFC.String(text), "ln(", "log(")
}

// Parse rewrites and parses an integrand. The returned error wraps
// ErrEmpty or ErrNotUnderstood; the parser's own message is kept in the
// chain for logging.
func Parse(text string, table *symbolic.Table) (e symbolic.Expr, err error) {
	src := Rewrite(text)
	if strings.TrimSpace(src) == "" {
		return nil, ErrEmpty
	}
	defer func() {
		if r := recover(); r != nil {
			e, err = nil, fmt.Errorf("%w: parser panic: %v", ErrNotUnderstood, r)
		}
	}()
	e, err = symbolic.Parse(src, table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotUnderstood, err)
	}
	return e, nil
}
