package context

type contextKey int

const (
	ctxKeyDb contextKey = iota
	ctxKeyLogger
	ctxKeyMailer
	ctxKeyUserAccount
	ctxKeyVerificationGate
	ctxKeyIPAddress
)
