package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// 通用错误，所有服务共享。
var (
	ErrBadRequest = Register(New(MakeCode(ServiceCommon, CategoryRequest, 0), http.StatusBadRequest, codes.InvalidArgument, "Bad request", "请求错误"))

	ErrUnauthorized = Register(New(MakeCode(ServiceCommon, CategoryAuth, 0), http.StatusUnauthorized, codes.Unauthenticated, "Unauthorized", "未认证"))

	ErrForbidden = Register(New(MakeCode(ServiceCommon, CategoryPermission, 0), http.StatusForbidden, codes.PermissionDenied, "Forbidden", "禁止访问"))

	ErrRouteNotFound = Register(New(MakeCode(ServiceCommon, CategoryResource, 1), http.StatusNotFound, codes.NotFound, "Route not found", "路由不存在"))

	ErrInternal = Register(New(MakeCode(ServiceCommon, CategoryInternal, 0), http.StatusInternalServerError, codes.Internal, "Internal server error", "服务器内部错误"))

	ErrPanic = Register(New(MakeCode(ServiceCommon, CategoryInternal, 2), http.StatusInternalServerError, codes.Internal, "Service panic", "服务崩溃"))
)
