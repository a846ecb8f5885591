package main

import "pybin-tools/go/pybin-installer/cmd"

func main() {
	cmd.Execute()
}
