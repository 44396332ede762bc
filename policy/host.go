package policy

import (
	"strings"
)

const hostVariablePrefix = "${host_"

// UpdatedHostValue inserts "/" + version after every ${host_*} variable in
// value. A value consisting of nothing but the variable is left alone, as is
// any value without a host variable; the boolean reports whether value changed.
//
//	https://${host_target}${request.url.path} -> https://${host_target}/v1${request.url.path}
//	https://${host_target}                    -> https://${host_target}/v1
//	${host_target}                            -> unchanged
func UpdatedHostValue(version, value string) (string, bool) {
	if version == "" || !strings.Contains(value, hostVariablePrefix) {
		return value, false
	}

	var b strings.Builder
	changed := false
	rest := value

	for {
		start := strings.Index(rest, hostVariablePrefix)
		if start < 0 {
			b.WriteString(rest)
			break
		}

		end := strings.Index(rest[start:], "}")
		if end < 0 {
			b.WriteString(rest)
			break
		}
		end += start + 1

		variable := rest[start:end]
		if variable == value {
			return value, false
		}

		b.WriteString(rest[:end])
		if !hasSegment(rest[end:], version) {
			b.WriteString("/" + version)
			changed = true
		}
		rest = rest[end:]
	}

	return b.String(), changed
}

// hasSegment reports whether s already starts with the version segment.
func hasSegment(s, version string) bool {
	segment := "/" + version
	if !strings.HasPrefix(s, segment) {
		return false
	}
	rest := s[len(segment):]
	return rest == "" || strings.ContainsAny(rest[:1], "/?$#")
}
