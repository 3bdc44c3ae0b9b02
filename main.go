package main

import "github.com/hrlink/people-sync/cmd"

func main() {
	cmd.Execute()
}
