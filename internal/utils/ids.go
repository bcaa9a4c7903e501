package utils

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseID reads a numeric route parameter.
func ParseID(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)

	if raw == "" {
		return 0, errors.New("missing " + name + " parameter")
	}

	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errors.New("invalid " + name + " parameter")
	}

	return uint(id), nil
}
