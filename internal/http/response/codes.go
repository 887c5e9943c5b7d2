package response

const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodePaymentRequired = 402
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeTooManyRequests = 429
	CodeInternal        = 500

	// CodeOrderPendingReconciliation 已扣款但订单未落库，等待人工对账
	CodeOrderPendingReconciliation = 1001
)
