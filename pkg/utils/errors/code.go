package errors

// 服务代码 (AA)
const (
	// ServiceCommon 所有服务共享的通用错误。
	ServiceCommon = 0

	// ServiceDocQA 文档问答服务。
	ServiceDocQA = 21
)

// 类别代码 (BB)
const (
	CategorySuccess    = 0
	CategoryRequest    = 1  // 400
	CategoryAuth       = 2  // 401
	CategoryPermission = 3  // 403
	CategoryResource   = 4  // 404
	CategoryConflict   = 5  // 409
	CategoryRateLimit  = 6  // 429
	CategoryInternal   = 7  // 500
	CategoryDatabase   = 8  // 500
	CategoryCache      = 9  // 500
	CategoryNetwork    = 10 // 502/503
	CategoryTimeout    = 11 // 504
	CategoryConfig     = 12 // 500
)

// MakeCode 由服务、类别、序号组合错误码。
func MakeCode(service, category, sequence int) int {
	return service*100000 + category*1000 + sequence
}

// ParseCode 拆分错误码。
func ParseCode(code int) (service, category, sequence int) {
	service = code / 100000
	category = (code % 100000) / 1000
	sequence = code % 1000
	return
}

// GetCategory 返回错误码的类别部分。
func GetCategory(code int) int {
	return (code % 100000) / 1000
}

// IsClientError 判断是否为客户端错误 (4xx)。
func IsClientError(code int) bool {
	category := GetCategory(code)
	return category >= CategoryRequest && category <= CategoryRateLimit
}

// IsServerError 判断是否为服务端错误 (5xx)。
func IsServerError(code int) bool {
	category := GetCategory(code)
	return category >= CategoryInternal && category <= CategoryConfig
}
