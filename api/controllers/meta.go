package controllers

import (
	"net/http"

	"github.com/azulretail/pos-backend/api/middleware"
	"github.com/azulretail/pos-backend/pkg/types"
)

func requestMeta(r *http.Request) types.RequestMeta {
	return types.RequestMeta{
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}
