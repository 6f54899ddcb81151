package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/tintayhojas/internal/interface/http/dto"
	apperrors "github.com/xiebiao/tintayhojas/pkg/errors"
	"github.com/xiebiao/tintayhojas/pkg/response"
)

// bindFailed 参数绑定/校验失败统一返回40900
func bindFailed(c *gin.Context, err error) {
	response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
}

// idParam 解析路径中的ID，失败时已写入响应
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: 无效的"+name)
		return 0, false
	}
	return uint(id), true
}

// pageQuery 绑定分页参数
func pageQuery(c *gin.Context) (dto.PageQuery, bool) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return q, false
	}
	return q, true
}

var errBadUpload = apperrors.New(apperrors.ErrCodeInvalidParams, "读取上传文件失败")

// upload 读取multipart中的可选文件
// 非multipart请求或没有上传时返回nil，调用方负责Close
func upload(c *gin.Context, field string) (io.ReadCloser, error) {
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, nil
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errBadUpload
	}
	f, err := fh.Open()
	if err != nil {
		return nil, errBadUpload
	}
	return f, nil
}

// reader 把可能为nil的ReadCloser转成io.Reader，避免出现带类型的nil接口
func reader(rc io.ReadCloser) io.Reader {
	if rc == nil {
		return nil
	}
	return rc
}

func closeUpload(rc io.ReadCloser) {
	if rc != nil {
		_ = rc.Close()
	}
}
