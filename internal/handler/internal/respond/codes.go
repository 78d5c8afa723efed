package respond

const (
	CODE_INTERNAL_ERROR = iota + 1
	CODE_INVALID_JSON
	CODE_INVALID_USER_ID
	CODE_EMPTY_TEXT
	CODE_TEXT_TOO_LONG
)
