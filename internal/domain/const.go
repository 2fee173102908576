package domain

import "context"

// Paths are the public URL prefixes the stores map their files to.
const (
	TextPublicPath  = "/text/text.json"
	ImagePublicPath = "/images"
)

type ctxKey string

const (
	RequestIDCtxKey ctxKey = "mb-requestId"
	ClientCtxKey    ctxKey = "mb-client"
)

const (
	RequestIDHeader = "X-Request-Id"
	ClientHeader    = "X-Moodboard-Client"
)

// RequestID returns the id the request middleware stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDCtxKey).(string)
	return id
}
