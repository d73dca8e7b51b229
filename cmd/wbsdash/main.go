// Command wbsdash 分析 WBS 进度工作簿：表格检测、本周进度、周进度曲线与 WBS 树
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
