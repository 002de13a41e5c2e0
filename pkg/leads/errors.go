package leads

import "fmt"

// NotFoundError is returned when the fixture file does not exist.
type NotFoundError struct {
	Name string
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found at %s", e.Name, e.Path)
}

// ParseError is returned when the fixture is not valid UTF-8 or not valid JSON.
type ParseError struct {
	Name string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Failed to parse %s: %v", e.Name, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SchemaError is returned when the document has no usable leads array.
type SchemaError struct {
	Name string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: missing leads array", e.Name)
}
