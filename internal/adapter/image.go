package adapter

import "strings"

// HostRewrite maps a loopback host alias used by the backend's development
// server to the address the client can actually reach.
type HostRewrite struct {
	From string
	To   string
}

// DefaultRewrite maps localhost to the Android emulator's host alias
var DefaultRewrite = HostRewrite{From: "http://localhost", To: "http://10.0.2.2"}

// RewriteImageURL replaces a leading rule.From host with rule.To. The match must
// end at a host boundary so "http://localhost.example.com" is left alone.
func RewriteImageURL(url string, rule HostRewrite) string {
	if rule.From == "" || !strings.HasPrefix(url, rule.From) {
		return url
	}
	rest := url[len(rule.From):]
	if rest != "" && !strings.ContainsAny(rest[:1], "/:?#") {
		return url
	}
	return rule.To + rest
}
