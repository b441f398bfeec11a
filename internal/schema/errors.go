package schema

import "errors"

var (
	ErrUnterminatedString  = errors.New("unterminated string literal")
	ErrUnterminatedComment = errors.New("unterminated block comment")
	ErrUnterminatedDollar  = errors.New("unterminated dollar-quoted string")
	ErrUnexpectedEnd       = errors.New("unexpected end of statement")
	ErrUnexpectedToken     = errors.New("unexpected token")
)
