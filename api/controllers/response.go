/*
 * @module api/controllers/response
 * @description 统一API响应结构与服务层错误到HTTP状态的映射
 * @architecture MVC架构 - 控制器层
 * @documentReference dev_docs/api_design.md
 * @stateFlow 服务层error -> 状态码/信封映射 -> JSON输出
 * @rules 校验错误400、记录不存在404、其余500；信封统一 {success,msg,data,errors}
 * @dependencies github.com/go-chi/render
 * @refs service/entity/config.go
 */

package controllers

import (
	"errors"
	"net/http"

	"qc-service/service/entity"

	"github.com/go-chi/render"
)

// APIResponse 统一API响应结构
type APIResponse struct {
	Success bool        `json:"success"`
	Msg     string      `json:"msg,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// SuccessResponse 成功响应
func SuccessResponse(msg string, data interface{}) APIResponse {
	return APIResponse{Success: true, Msg: msg, Data: data}
}

// ErrorResponse 失败响应
func ErrorResponse(msg string) APIResponse {
	return APIResponse{Success: false, Msg: msg}
}

// writeError 输出失败响应
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse(msg))
}

// writeServiceError 将服务层错误映射为HTTP响应
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *entity.ValidationError
	switch {
	case errors.As(err, &vErr):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, APIResponse{
			Success: false,
			Msg:     vErr.Message,
			Errors:  []map[string]string{{"field": vErr.Field, "message": vErr.Message}},
		})
	case errors.Is(err, entity.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, err.Error())
	}
}
