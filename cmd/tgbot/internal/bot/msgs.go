package bot

// ids from service.DefaultMessages used by the bot itself
const (
	panicMsgId = "internal_error"
	busyMsgId  = "busy"
)

// telegram rejects longer messages
const messageLengthLimit = 4096

const (
	langCodeEn = "en"
	langCodeRu = "ru"
)
