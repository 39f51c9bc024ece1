package main

import "github.com/KaramelBytes/metascope/cmd"

func main() {
	cmd.Execute()
}
