package client

import (
	"fmt"
	"strings"
	"time"

	"github.com/altair-hq/igclient/pkg/session"
	"github.com/altair-hq/igclient/pkg/signer"
)

// defaultHeaders builds the fixed header table every request carries. The
// table is recomputed per call: most values are build constants, several are
// read live from session state, and the raw client time is taken from now.
// Empty values are skipped rather than sent as empty headers.
func defaultHeaders(st *session.State, now time.Time) map[string]string {
	claim := st.WWWClaim
	if claim == "" {
		claim = "0"
	}

	headers := map[string]string{
		"User-Agent":                  st.UserAgent,
		"Accept-Language":             strings.ReplaceAll(signer.AppLocale, "_", "-"),
		"Accept-Encoding":             "gzip",
		"Host":                        signer.APIHost,
		"Connection":                  "close",
		"X-Ads-Opt-Out":               "0",
		"X-CM-Bandwidth-KBPS":         "-1.000",
		"X-CM-Latency":                "-1.000",
		"X-IG-App-Locale":             signer.AppLocale,
		"X-IG-Device-Locale":          signer.AppLocale,
		"X-IG-Mapped-Locale":          signer.AppLocale,
		"X-Pigeon-Session-Id":         st.PigeonSessionID,
		"X-Pigeon-Rawclienttime":      rawClientTime(now),
		"X-IG-Connection-Speed":       "3700kbps",
		"X-IG-Bandwidth-Speed-KBPS":   "-1.000",
		"X-IG-Bandwidth-TotalBytes-B": "0",
		"X-IG-Bandwidth-TotalTime-MS": "0",
		"X-IG-Connection-Type":        signer.ConnectionType,
		"X-IG-Capabilities":           signer.Capabilities,
		"X-IG-App-ID":                 signer.AppID,
		"X-IG-Device-ID":              st.DeviceUUID,
		"X-IG-Android-ID":             st.DeviceID,
		"X-IG-WWW-Claim":              claim,
		"X-Bloks-Version-Id":          signer.BloksVersionID,
		"X-Bloks-Is-Layout-RTL":       "false",
		"X-MID":                       st.CookieValue("mid"),
		"Authorization":               st.Authorization,
	}

	for k, v := range headers {
		if v == "" {
			delete(headers, k)
		}
	}
	return headers
}

// rawClientTime renders seconds since epoch with millisecond precision,
// always three decimal places.
func rawClientTime(now time.Time) string {
	return fmt.Sprintf("%.3f", float64(now.UnixMilli())/1000.0)
}

// mergeHeaders overlays per-call overrides on the defaults; overrides win on
// key collision.
func mergeHeaders(defaults, overrides map[string]string) map[string]string {
	if len(overrides) == 0 {
		return defaults
	}
	for k, v := range overrides {
		defaults[k] = v
	}
	return defaults
}
