package logme

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var isDebugMode bool = os.Getenv("DEBUG") == "1"

func DebugF(msg string, args ...interface{}) {
	if isDebugMode {
		fmt.Print("[DEBUG] ")
		fmt.Fprintf(os.Stdout, msg, args...)
	}
}

func DebugFln(msg string, args ...interface{}) {
	DebugF(msg+"\n", args...)
}

func Debugln(args ...interface{}) {
	if isDebugMode {
		fmt.Print("[DEBUG] ")
		fmt.Fprintln(os.Stdout, args...)
	}
}

func InfoF(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stdout, msg, args...)
}

func Infoln(arg ...interface{}) {
	fmt.Fprintln(os.Stdout, arg...)
}

// Warnln prints a console warning in yellow. Meant for the user running the
// scan, unlike the debug helpers which are gated behind DEBUG=1.
func Warnln(arg ...interface{}) {
	fmt.Fprintln(os.Stdout, color.YellowString(fmt.Sprint(arg...)))
}

func WarnFln(msg string, args ...interface{}) {
	fmt.Fprintln(os.Stdout, color.YellowString(fmt.Sprintf(msg, args...)))
}

func ErrorF(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, msg, args...)
}

func Errorln(arg ...interface{}) {
	fmt.Fprintln(os.Stderr, arg...)
}

// ErrorRedFln prints a console error in red to stderr.
func ErrorRedFln(msg string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, color.RedString(fmt.Sprintf(msg, args...)))
}
