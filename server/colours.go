package server

import "fmt"

const (
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	Gray    = "\033[90m"

	ResetColor = "\033[0m"
)

var methodColors = map[string]string{
	"GET":    Green,
	"POST":   Blue,
	"PUT":    Cyan,
	"DELETE": Yellow,
	"PATCH":  Magenta,
}

func colouredMethod(method string) string {
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	return color + fmt.Sprintf(" %-7s", method) + ResetColor
}

func colouredRoute(method, path string) string {
	return fmt.Sprintf("[%-19s] %s", colouredMethod(method), path)
}

// colouredStatus is used by the DEV request log.
func colouredStatus(status int) string {
	switch {
	case status >= 500:
		return Red + fmt.Sprint(status) + ResetColor
	case status >= 400:
		return Yellow + fmt.Sprint(status) + ResetColor
	case status >= 300:
		return Cyan + fmt.Sprint(status) + ResetColor
	default:
		return Green + fmt.Sprint(status) + ResetColor
	}
}
