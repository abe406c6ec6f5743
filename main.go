package main

import "github.com/nextlevelbuilder/discgate/cmd"

func main() {
	cmd.Execute()
}
