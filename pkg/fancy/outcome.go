package fancy

import (
	"io"

	"storj.io/permit-payment/pkg/failure"
)

// Foutcome prints what went wrong with err for the user. Declined requests
// are warnings; everything else is an error. The underlying message is
// printed below the summary unless the summary already contains it.
func Foutcome(w io.Writer, err error) {
	if err == nil {
		return
	}
	outcome := failure.Classify(err)

	level := Error
	if outcome.Kind == failure.UserRejected {
		level = Warn
	}
	Fprintln(w, level, outcome.Summary())
	if outcome.Kind != failure.Unknown {
		Fprintf(w, Info, "  %s\n", outcome.Message)
	}
}
