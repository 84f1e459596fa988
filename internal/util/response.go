package util

import "github.com/gin-gonic/gin"

// Error 统一错误返回，响应体固定为 {"error": 消息}。
func Error(c *gin.Context, httpStatus int, msg string) {
	c.JSON(httpStatus, gin.H{"error": msg})
}
