package errx

// CreateByCode creates an Error using the provided code, description, and message.
// A nil cause produces an unwrapped Error.
func CreateByCode(code, description, message string, cause error) *Error {
	if cause != nil {
		return Wrap(code, description, message, cause)
	}
	return New(code, description, message)
}

// FromSentinel creates an Error whose category is looked up from sentinel.
// Unknown sentinels fall back to the stack corruption (internal error) category.
func FromSentinel(sentinel error, lookup func(error) (code, description string), message string, cause error) *Error {
	code, desc := lookup(sentinel)
	if code == "" {
		code = CodeStackCorruption
		desc = DescStackCorruption
	}
	return CreateByCode(code, desc, message, cause).WithBase(sentinel)
}

// Format creates an error for a report field that cannot be encoded for the engine.
func Format(message string) *Error {
	return New(CodeFormat, DescFormat, message)
}

// WrapFormat wraps an encoding failure as a format error.
func WrapFormat(message string, cause error) *Error {
	return Wrap(CodeFormat, DescFormat, message, cause)
}

// Usage creates an error for a protocol misuse that the caller can correct,
// such as nesting reports or attaching a field twice.
func Usage(message string) *Error {
	return New(CodeUsage, DescUsage, message)
}

// Config creates a configuration error.
func Config(message string) *Error {
	return New(CodeConfig, DescConfig, message)
}

// WrapConfig wraps a cause with a configuration error.
func WrapConfig(message string, cause error) *Error {
	return Wrap(CodeConfig, DescConfig, message, cause)
}
