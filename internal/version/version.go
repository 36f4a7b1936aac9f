package version

import (
	"fmt"
	"os"
	"runtime"
)

const (
	Version = "1.0.0"
)

func HasVersionArg() bool {
	if len(os.Args) > 1 {
		arg := os.Args[1]
		return arg == "--version" || arg == "-version" || arg == "-v" || arg == "--v" || arg == "version"
	}
	return false
}

func ShowVersion() {
	fmt.Printf("sflix-api v%s (%s, %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
