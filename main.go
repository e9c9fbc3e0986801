package main

import (
	"os"

	"github.com/scan-io-git/kubelens/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
