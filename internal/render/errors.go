package render

import "codeberg.org/mutker/dashmon/internal/errors"

const (
	ErrParseTemplate = errors.ErrorCode("render_parse_template_failed")
	ErrExecTemplate  = errors.ErrorCode("render_exec_template_failed")
)
