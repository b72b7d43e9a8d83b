package main

import "github.com/codequality-tools/cppcheck-codequality/cmd"

func main() {
	cmd.Execute()
}
