package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-ssg/internal/content"
	"github.com/goliatone/go-ssg/internal/generator"
	"github.com/goliatone/go-ssg/internal/render"
	"github.com/goliatone/go-ssg/internal/validation"
)

const (
	codeValidation    = "COMMAND_VALIDATION_FAILED"
	codeInputInvalid  = "COMMAND_INPUT_INVALID"
	codeCanceled      = "COMMAND_CONTEXT_CANCELED"
	codeTimeout       = "COMMAND_CONTEXT_TIMEOUT"
	codeContextError  = "COMMAND_CONTEXT_ERROR"
	codeExecuteFailed = "COMMAND_EXECUTION_FAILED"
)

// inputErrors are failures caused by the site sources rather than the
// generator. They are reported as validation errors so callers can tell a
// broken metadata file from a crashed pandoc.
var inputErrors = []error{
	content.ErrUnknownContentType,
	content.ErrMetadataNotFound,
	content.ErrMetadataInvalid,
	content.ErrProblemNotFound,
	content.ErrBodyNotFound,
	content.ErrPageNotFound,
	generator.ErrIndexInvalid,
	render.ErrTemplateNotFound,
	validation.ErrSchemaValidation,
}

func wrapValidationError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(codeValidation)
}

// wrapContextError matches with errors.Is because generator failures wrap
// the context error with the output that was being built.
func wrapContextError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(codeCanceled)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(codeTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(codeContextError)
	}
}

func wrapExecuteError(err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	if isInputError(err) {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "site sources are invalid").
			WithTextCode(codeInputInvalid)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(codeExecuteFailed)
}

func isInputError(err error) bool {
	for _, target := range inputErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
