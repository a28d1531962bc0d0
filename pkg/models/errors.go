package models

import (
	"errors"
	"fmt"
)

var (
	ErrMissingTarget      = errors.New("subscription id, app name and resource group are required")
	ErrInvalidDirectory   = errors.New("invalid directory")
	ErrInvalidSetting     = errors.New("invalid setting, expected <name>=<value>")
	ErrNoValidToken       = errors.New("no valid access token found")
	ErrDeploymentNotFound = errors.New("deployment not found")
)

// ProvisioningError is returned when the template deployment does not reach the Succeeded state.
type ProvisioningError struct {
	State  string
	Output string
	Err    error
}

func (e *ProvisioningError) Error() string {
	if e.State != "" {
		return fmt.Sprintf("create function app fail: provisioning state %q: %s", e.State, e.Output)
	}
	if e.Err != nil {
		return fmt.Sprintf("create function app fail: %v: %s", e.Err, e.Output)
	}
	return fmt.Sprintf("create function app fail: %s", e.Output)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

type SettingError struct {
	Key    string
	Output string
	Err    error
}

func (e *SettingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("app setting %s fail: %v: %s", e.Key, e.Err, e.Output)
	}
	return fmt.Sprintf("app setting %s fail: %s", e.Key, e.Output)
}

func (e *SettingError) Unwrap() error { return e.Err }

// AuthError covers access token lookup and publishing profile validation.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }

// HttpError is a failed or non-2xx request against the management or SCM API.
type HttpError struct {
	Op         string
	Method     string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s fail: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("%s fail: %s %s: status %d: %s", e.Op, e.Method, e.URL, e.StatusCode, e.Body)
}

func (e *HttpError) Unwrap() error { return e.Err }

type TransferError struct {
	File string
	Err  error
}

func (e *TransferError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("upload %s fail: %v", e.File, e.Err)
	}
	return fmt.Sprintf("upload fail: %v", e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }
