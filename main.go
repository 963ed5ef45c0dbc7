package main

import "github.com/sitegrade/sitegrade/cmd"

// execCmd is indirected so the entry point stays testable.
var execCmd = cmd.Execute

func main() {
	execCmd()
}
