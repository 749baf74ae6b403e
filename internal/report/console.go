// Package report prints user-facing progress and summary lines.
package report

import (
	"fmt"
	"io"

	"github.com/idmigrate/keycloak-descope/internal/model"
)

var _ model.Reporter = (*Console)(nil)

// Console writes one line per call. Detailed failure reasons belong in the
// log stream; the console carries only progress and totals.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.w, format+"\n", args...)
}
