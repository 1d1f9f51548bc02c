package llm

import "context"

type purposeKey struct{}

// PurposeUnspecified is recorded for requests made without WithPurpose.
const PurposeUnspecified = "unspecified"

// WithPurpose labels requests made with ctx, e.g. "course-plan". The label
// groups usage in `llm stats`.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeKey{}, purpose)
}

// PurposeFrom returns the label set by WithPurpose.
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeKey{}).(string); ok && v != "" {
		return v
	}
	return PurposeUnspecified
}
