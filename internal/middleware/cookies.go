package middleware

// secureCookies marks every issued cookie Secure. Enabled when the
// server runs over HTTPS.
var secureCookies bool

// SetSecureCookies toggles the Secure attribute on issued cookies.
func SetSecureCookies(on bool) {
	secureCookies = on
}
