package service

import _ "embed"

// DefaultMessages are the built-in translations in the pkg/i18n format.
//
//go:embed messages.json
var DefaultMessages []byte

const (
	greetingMsgId        = "greeting"
	helpMsgId            = "help"
	menuMsgId            = "menu"
	menuEmptyMsgId       = "menu_empty"
	bookChosenMsgId      = "book_chosen"
	pageFooterMsgId      = "page_footer"
	bookFinishedMsgId    = "book_finished"
	firstPageMsgId       = "warning_first_page"
	nothingOpenMsgId     = "warning_nothing_open"
	pickFirstMsgId       = "warning_pick_first"
	readingHintMsgId     = "warning_reading"
	unknownCommandMsgId  = "warning_unknown_command"
	internalErrorMsgId   = "internal_error"
	somethingWentWrong   = "Something went wrong"
	pageUsageMsgId       = "error_page_usage"
	pageOutOfRangeMsgId  = "error_page_out_of_range"
	bookNotFoundMsgId    = "error_book_not_found"
	bookNotReadableMsgId = "error_book_not_readable"
	bookTooBigMsgId      = "error_book_too_big"
)

const (
	cmdStartDescriptionMsgId = "cmd_start"
	cmdOpenDescriptionMsgId  = "cmd_open"
	cmdNextDescriptionMsgId  = "cmd_next"
	cmdPrevDescriptionMsgId  = "cmd_prev"
	cmdPageDescriptionMsgId  = "cmd_page"
	cmdHelpDescriptionMsgId  = "cmd_help"
)
