package types

// RequestMeta carries the request origin recorded alongside audited actions.
type RequestMeta struct {
	IPAddress string
	UserAgent string
}
