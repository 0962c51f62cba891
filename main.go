package main

import "github.com/notargets/rbfcloud/cmd"

func main() {
	cmd.Execute()
}
