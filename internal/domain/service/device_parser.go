package service

// DeviceInfo is advisory metadata derived from a User-Agent header.
// It is stored with the session for display purposes and never consulted
// during authorization.
type DeviceInfo struct {
	OS      string
	Browser string
	Class   string
}

// DeviceParser extracts advisory device metadata from a User-Agent string.
type DeviceParser interface {
	Parse(userAgent string) DeviceInfo
}
