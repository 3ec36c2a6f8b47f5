package formval

// At returns the issues recorded for the given field path.
func (iss Issues) At(path string) Issues {
	var out Issues
	for _, it := range iss {
		if it.Path == path {
			out = append(out, it)
		}
	}
	return out
}

// FirstMessage returns the first issue's message for the given path, or "".
func (iss Issues) FirstMessage(path string) string {
	for _, it := range iss {
		if it.Path == path {
			return it.Message
		}
	}
	return ""
}
