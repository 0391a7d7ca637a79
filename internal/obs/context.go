package obs

import (
	"context"
	"net/http"
	"strings"
)

// ChannelHeader carries the sell channel of quote requests.
const ChannelHeader = "X-Sales-Channel"

type (
	routePatternKey struct{}
	salesChannelKey struct{}
)

// WithRoutePattern stores the matched router pattern on the context.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, routePatternKey{}, pattern)
}

// RoutePatternFromContext extracts the route pattern from context if present.
func RoutePatternFromContext(ctx context.Context) string {
	return stringValue(ctx, routePatternKey{})
}

// WithSalesChannel stores the sell channel a request was made through.
func WithSalesChannel(ctx context.Context, channel string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, salesChannelKey{}, strings.TrimSpace(channel))
}

// SalesChannelFromContext returns the sell channel, empty when none was named.
func SalesChannelFromContext(ctx context.Context) string {
	return stringValue(ctx, salesChannelKey{})
}

// SalesChannelMiddleware copies the ChannelHeader value into the request
// context so logs, metrics and the quote handler agree on one channel.
func SalesChannelMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if channel := strings.TrimSpace(r.Header.Get(ChannelHeader)); channel != "" {
			r = r.WithContext(WithSalesChannel(r.Context(), channel))
		}
		next.ServeHTTP(w, r)
	})
}

func stringValue(ctx context.Context, key any) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
