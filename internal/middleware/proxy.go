package middleware

import (
	"log/slog"
	"net"

	"github.com/labstack/echo/v4"
)

// TrustedProxies configures Echo to trust X-Forwarded-For from the given
// proxy ranges, so c.RealIP() returns the client address behind a reverse
// proxy. Rate limiting depends on accurate IPs. Invalid CIDRs are logged and
// skipped.
func TrustedProxies(e *echo.Echo, trustedCIDRs []string) {
	opts := []echo.TrustOption{
		// Only the configured ranges are trusted, not echo's defaults.
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, cidr := range trustedCIDRs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			slog.Warn("ignoring invalid trusted proxy range",
				slog.String("cidr", cidr),
				slog.Any("error", err),
			)
			continue
		}
		opts = append(opts, echo.TrustIPRange(network))
	}
	e.IPExtractor = echo.ExtractIPFromXFFHeader(opts...)
}
