package output

import "context"

type UserInteractionPort interface {
	// WaitForUserAction blocks until the operator confirms or ctx is done.
	WaitForUserAction(ctx context.Context, message string) error
}
