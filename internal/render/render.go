// Package render turns engine expressions into display LaTeX.
package render

import (
	"strings"

	"github.com/njchilds90/integral/internal/symbolic"
)

// Render returns the LaTeX form of e with natural logarithms written \ln.
func Render(e symbolic.Expr) string {
	return strings.ReplaceAll(symbolic.LaTeX(e), `\log`, `\ln`)
}
