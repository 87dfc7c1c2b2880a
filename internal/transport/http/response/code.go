package response

// 信封 code：成功 200，任何失败 400（HTTP 状态码单独携带语义）
const (
	CodeOK   = 200
	CodeFail = 400
)

// 统一文案
const (
	MsgListed          = "Successfully retrieved all data."
	MsgAdded           = "Successfully added."
	MsgShown           = "Successfully displayed the item."
	MsgUpdated         = "Successfully updated the item."
	MsgArchived        = "Successfully archived the item."
	MsgListedArchived  = "Successfully retrieved archived data."
	MsgRestored        = "Successfully restored the item."
	MsgDeleted         = "Successfully deleted the item."
	MsgFailed          = "Operation failed."
	MsgValidation      = "Validation Error"
	MsgUnauthorized    = "Unauthorized"
	MsgForbidden       = "Forbidden"
	MsgNotFound        = failPrefix + ": not found"
	MsgLoggedOut       = "The user has been successfully logged out"
	MsgTooManyRequests = "Too Many Requests"
)

const (
	MsgLoggedIn  = "Successfully logged in."
	MsgRefreshed = "Token refreshed successfully."
)

const failPrefix = "Operation failed"

// Failed 带原因的失败文案；无原因时为 MsgFailed
func Failed(detail string) string {
	if detail == "" {
		return MsgFailed
	}
	return failPrefix + ": " + detail
}
