package workbook

import (
	"errors"
	"fmt"
)

// ErrFileNotFound 输入文件不存在
var ErrFileNotFound = errors.New("workbook file not found")

// ErrUnsupportedFormat 不是可读取的 xlsx 系列文件
var ErrUnsupportedFormat = errors.New("unsupported workbook format")

// ReadError 工作簿无法打开或解析，唯一会中断调用的错误
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("read workbook: %v", e.Err)
	}
	return fmt.Sprintf("read workbook %q: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// IsReadError 判断是否为读取失败
func IsReadError(err error) bool {
	var re *ReadError
	return errors.As(err, &re)
}
