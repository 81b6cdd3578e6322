package csharp

// mask returns a copy of src with comments, string/char literal contents
// and preprocessor lines replaced by spaces. Newlines and byte offsets are
// preserved so positions in the masked text map 1:1 onto src.
func mask(src []byte) []byte {
	out := make([]byte, len(src))
	copy(out, src)

	blank := func(from, to int) {
		for k := from; k < to && k < len(out); k++ {
			if out[k] != '\n' {
				out[k] = ' '
			}
		}
	}

	lineStart := true
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case lineStart && c == '#':
			j := i
			for j < len(src) && src[j] != '\n' {
				j++
			}
			blank(i, j)
			i = j
			continue

		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			j := i
			for j < len(src) && src[j] != '\n' {
				j++
			}
			blank(i, j)
			i = j
			continue

		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			j := i + 2
			for j+1 < len(src) && !(src[j] == '*' && src[j+1] == '/') {
				j++
			}
			j += 2
			if j > len(src) {
				j = len(src)
			}
			blank(i, j)
			i = j
			lineStart = false
			continue

		case c == '"' || c == '\'':
			verbatim := c == '"' && isVerbatimPrefix(src, i)
			j := i + 1
			for j < len(src) {
				if verbatim {
					if src[j] == '"' {
						if j+1 < len(src) && src[j+1] == '"' {
							j += 2
							continue
						}
						break
					}
				} else {
					if src[j] == '\\' {
						j += 2
						continue
					}
					if src[j] == c || src[j] == '\n' {
						break
					}
				}
				j++
			}
			// keep the quotes, blank the contents
			blank(i+1, j)
			i = j + 1
			lineStart = false
			continue
		}

		if c == '\n' {
			lineStart = true
		} else if c != ' ' && c != '\t' && c != '\r' {
			lineStart = false
		}
		i++
	}
	return out
}

// isVerbatimPrefix reports whether the quote at i opens a verbatim string
// (@"..." or $@"..." / @$"...").
func isVerbatimPrefix(src []byte, i int) bool {
	for k := i - 1; k >= 0 && k >= i-2; k-- {
		switch src[k] {
		case '@':
			return true
		case '$':
			continue
		default:
			return false
		}
	}
	return false
}
