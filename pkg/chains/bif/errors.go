package bif

import "fmt"

// UnknownMethodError is returned for methods outside the dispatch table
type UnknownMethodError struct {
	Namespace string
	Method    string
}

func (e *UnknownMethodError) Error() string {
	if e.Namespace == "" {
		return fmt.Sprintf("provider method %s not found", e.Method)
	}
	return fmt.Sprintf("provider method %s.%s not found", e.Namespace, e.Method)
}

// MethodInputError is returned when a method's parameters have the wrong shape
type MethodInputError struct {
	Method string
	Err    error
}

func (e *MethodInputError) Error() string {
	return fmt.Sprintf("provider method %s: invalid input param: %v", e.Method, e.Err)
}

func (e *MethodInputError) Unwrap() error {
	return e.Err
}

// RPCError wraps a failure while serving a namespaced method
type RPCError struct {
	Method string
	Err    error
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error on %s: %v", e.Method, e.Err)
}

func (e *RPCError) Unwrap() error {
	return e.Err
}

// NotExistAccountPrivateKeyError is returned when no local key matches an address
type NotExistAccountPrivateKeyError struct {
	Address string
}

func (e *NotExistAccountPrivateKeyError) Error() string {
	return fmt.Sprintf("bif address: %s private key not found", e.Address)
}

// InvalidPrivateKeyError is returned when a configured key cannot be parsed
type InvalidPrivateKeyError struct {
	Index int
	Err   error
}

func (e *InvalidPrivateKeyError) Error() string {
	return fmt.Sprintf("bif private key #%d invalid: %v", e.Index, e.Err)
}

func (e *InvalidPrivateKeyError) Unwrap() error {
	return e.Err
}

// PopulateError reports which population stage failed
type PopulateError struct {
	Stage string
	Err   error
}

func (e *PopulateError) Error() string {
	return fmt.Sprintf("failed to populate transaction %s: %v", e.Stage, e.Err)
}

func (e *PopulateError) Unwrap() error {
	return e.Err
}
