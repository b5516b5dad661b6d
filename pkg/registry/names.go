package registry

// MaxNameLen is the longest accepted agent name.
const MaxNameLen = 32

// ValidateName reports whether name is 1 to 32 characters of ASCII letters,
// digits, '-' or '_'.
func ValidateName(name string) bool {
	if len(name) == 0 || len(name) > MaxNameLen {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}
	return true
}
