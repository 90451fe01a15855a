package predict

import "fmt"

// MissingInputError reports a raw field that was required to compute a
// declared feature column but absent from the input record.
type MissingInputError struct {
	Field  string // raw field name that was missing
	Column string // feature column that needed it
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing raw input %q for feature column %q", e.Field, e.Column)
}
