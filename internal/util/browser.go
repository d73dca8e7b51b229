package util

import (
	"errors"
	"os/exec"
	"runtime"
)

// browserCommands 各平台打开 URL 的候选命令，按优先级排列
func browserCommands(goos, url string) [][]string {
	switch goos {
	case "windows":
		// rundll32 在 Windows 7 上比 cmd /c start 稳定
		return [][]string{
			{"rundll32", "url.dll,FileProtocolHandler", url},
			{"explorer", url},
		}
	case "darwin":
		return [][]string{{"open", url}}
	default:
		return [][]string{
			{"xdg-open", url},
			{"sensible-browser", url},
			{"google-chrome", url},
			{"firefox", url},
		}
	}
}

// OpenBrowser 用默认浏览器打开 API 地址，依次尝试候选命令
func OpenBrowser(url string) error {
	err := errors.New("no browser command available")
	for _, argv := range browserCommands(runtime.GOOS, url) {
		if err = exec.Command(argv[0], argv[1:]...).Start(); err == nil {
			return nil
		}
	}
	return err
}
