package middlewares

const (
	CtxRequestID = "request_id"
	ctxUserIDKey = "auth.userID"
	ctxTokenKey  = "auth.sessionToken"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "mun_session"
