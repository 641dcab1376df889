package signing

import "net/url"

const upperHex = "0123456789ABCDEF"

// PercentEncode escapes s per RFC 3986: the unreserved characters
// ALPHA, DIGIT, "-", ".", "_" and "~" pass through, every other byte becomes
// %XX with upper-case hex. Spaces become %20, never "+".
func PercentEncode(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}
	t := make([]byte, 0, len(s)+2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			t = append(t, '%', upperHex[c>>4], upperHex[c&15])
		} else {
			t = append(t, c)
		}
	}
	return string(t)
}

// PercentDecode reverses PercentEncode. "+" is left as-is.
func PercentDecode(s string) (string, error) {
	return url.PathUnescape(s)
}

func shouldEscape(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return false
	case c == '-', c == '.', c == '_', c == '~':
		return false
	}
	return true
}
