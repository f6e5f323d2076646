package xsdgen

import (
	"bytes"
	"fmt"
	"io"
)

type errorList []error

func (l errorList) Error() string {
	var buf bytes.Buffer
	for _, err := range l {
		io.WriteString(&buf, err.Error()+"\n")
	}
	return buf.String()
}

// Unwrap lets errors.As and errors.Is inspect every error in the
// list.
func (l errorList) Unwrap() []error { return l }

// A TypeNotFoundError is returned when a type, element or attribute
// reference cannot be resolved against the schema definition.
type TypeNotFoundError struct {
	Ref string
}

func (err *TypeNotFoundError) Error() string {
	return fmt.Sprintf("type %q not found", err.Ref)
}

// A FileSystemError is returned when an output directory or file
// cannot be created, or a template cannot be read.
type FileSystemError struct {
	Path string
	Err  error
}

func (err *FileSystemError) Error() string {
	return fmt.Sprintf("%s: %v", err.Path, err.Err)
}

func (err *FileSystemError) Unwrap() error { return err.Err }
